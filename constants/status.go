package constants

// JobStatus is the canonical status for rows in extraction_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted, waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // fields extracted
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure (decode/store), never "nothing extracted"
)
