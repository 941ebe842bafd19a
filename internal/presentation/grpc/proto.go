package grpc

// proto.go defines the gRPC server interface derived from acadrisk/prediction/v1/prediction.proto.
// This file serves as a stand-in for buf-generated code. Messages travel as
// JSON through JSONCodec until generated types replace the structs in handler.go.

import (
	"context"
	"encoding/json"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "acadrisk.prediction.v1.PredictionService"

// JSONCodec marshals messages as JSON. Clients select it with the "json"
// content subtype; health and reflection keep the proto codec.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// PredictionServiceServer is the server API for PredictionService.
type PredictionServiceServer interface {
	PredictSingle(context.Context, *PredictSingleRequest) (*PredictSingleResponse, error)
	PredictBatch(context.Context, *PredictBatchRequest) (*PredictBatchResponse, error)
	GetModelStatus(context.Context, *GetModelStatusRequest) (*GetModelStatusResponse, error)
	mustEmbedUnimplementedPredictionServiceServer()
}

// UnimplementedPredictionServiceServer provides forward-compatible default implementations.
type UnimplementedPredictionServiceServer struct{}

func (UnimplementedPredictionServiceServer) PredictSingle(context.Context, *PredictSingleRequest) (*PredictSingleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PredictSingle not implemented")
}
func (UnimplementedPredictionServiceServer) PredictBatch(context.Context, *PredictBatchRequest) (*PredictBatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PredictBatch not implemented")
}
func (UnimplementedPredictionServiceServer) GetModelStatus(context.Context, *GetModelStatusRequest) (*GetModelStatusResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetModelStatus not implemented")
}
func (UnimplementedPredictionServiceServer) mustEmbedUnimplementedPredictionServiceServer() {}

// RegisterPredictionServiceServer registers the PredictionServiceServer with the gRPC server.
func RegisterPredictionServiceServer(s grpclib.ServiceRegistrar, srv PredictionServiceServer) {
	s.RegisterService(&_PredictionService_serviceDesc, srv)
}

var _PredictionService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "PredictSingle", Handler: _PredictionService_PredictSingle_Handler},
		{MethodName: "PredictBatch", Handler: _PredictionService_PredictBatch_Handler},
		{MethodName: "GetModelStatus", Handler: _PredictionService_GetModelStatus_Handler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "acadrisk/prediction/v1/prediction.proto",
}

func _PredictionService_PredictSingle_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(PredictSingleRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServiceServer).PredictSingle(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/PredictSingle"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionServiceServer).PredictSingle(ctx, req.(*PredictSingleRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _PredictionService_PredictBatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(PredictBatchRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServiceServer).PredictBatch(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/PredictBatch"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionServiceServer).PredictBatch(ctx, req.(*PredictBatchRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _PredictionService_GetModelStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetModelStatusRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServiceServer).GetModelStatus(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetModelStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionServiceServer).GetModelStatus(ctx, req.(*GetModelStatusRequest))
	}
	return interceptor(ctx, req, info, handler)
}
