// Package server exposes extraction over gRPC. Requests and responses are
// google.protobuf.Struct documents so callers can keep their JSON shapes.
package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName   = "cardocr.v1.CardExtractor"
	ExtractMethod = "/" + ServiceName + "/Extract"
)

// CardExtractorServer is the server API for the CardExtractor service.
type CardExtractorServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func extractHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardExtractorServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ExtractMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CardExtractorServer).Extract(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes the CardExtractor service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CardExtractorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Extract",
			Handler:    extractHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cardocr/v1/extractor.proto",
}

// RegisterCardExtractorServer registers srv with s.
func RegisterCardExtractorServer(s grpc.ServiceRegistrar, srv CardExtractorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Extract calls the CardExtractor service over an established connection.
func Extract(ctx context.Context, cc grpc.ClientConnInterface, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, ExtractMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
