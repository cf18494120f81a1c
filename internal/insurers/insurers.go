// Package insurers loads the canonical insurer-number lists used by the
// known-list correction passes. Lists are static data: a YAML or JSON file
// named by configuration, or the embedded default.
package insurers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/pattern"
)

//go:embed default.yaml
var defaultList []byte

const listSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "standard": {"type": "array", "items": {"type": "string", "pattern": "^[0-9]{6,8}$"}},
    "tolerant": {"type": "array", "items": {"type": "string", "pattern": "^[0-9]{6,8}$"}}
  },
  "required": ["standard"],
  "additionalProperties": false
}`

var compiledSchema = jsonschema.MustCompileString("insurers.schema.json", listSchema)

// File is the on-disk shape of a list file.
type File struct {
	Standard []string `yaml:"standard" json:"standard"`
	Tolerant []string `yaml:"tolerant" json:"tolerant,omitempty"`
}

// Load reads a list file. An empty path returns the embedded default.
func Load(path string, logger *slog.Logger) (*pattern.KnownList, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return Parse(defaultList, logger)
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.ListExtensions[ext]; !ok {
		return nil, common.NewAppError("INVALID_LIST", fmt.Sprintf("unsupported list extension %q", ext), common.ErrInvalidInput)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read insurer list")
	}
	list, err := Parse(b, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded insurer list", "path", path, "standard", len(list.Standard), "tolerant", len(list.Tolerant))
	return list, nil
}

// Default returns the embedded list.
func Default() *pattern.KnownList {
	list, err := Parse(defaultList, slog.Default())
	if err != nil {
		panic(fmt.Sprintf("embedded insurer list: %v", err))
	}
	return list
}

// Parse decodes and validates list data. YAML is a superset of JSON, so one
// decoder serves both file types. A missing tolerant list reuses the
// standard list.
func Parse(data []byte, logger *slog.Logger) (*pattern.KnownList, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, common.NewAppError("INVALID_LIST", "decode insurer list", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	// round trip through JSON so the validator sees plain JSON types
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, common.NewAppError("INVALID_LIST", "decode insurer list", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, common.NewAppError("INVALID_LIST", "decode insurer list", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, common.NewAppError("INVALID_LIST", "insurer list rejected", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, common.NewAppError("INVALID_LIST", "decode insurer list", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	if len(f.Tolerant) == 0 {
		f.Tolerant = f.Standard
	}
	warnCheckDigits(f.Standard, "standard", logger)
	warnCheckDigits(f.Tolerant, "tolerant", logger)
	return &pattern.KnownList{
		Standard: dedupe(f.Standard),
		Tolerant: dedupe(f.Tolerant),
	}, nil
}

// warnCheckDigits flags entries whose check digit does not verify. They are
// kept: some insurers print numbers outside the checked scheme.
func warnCheckDigits(nums []string, list string, logger *slog.Logger) {
	for _, n := range nums {
		if !pattern.ValidInsurerCheckDigit(n) {
			logger.Warn("insurer number fails check digit", "list", list, "number", n)
		}
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
