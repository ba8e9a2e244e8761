package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// PipelineServer is the server API for the compute-pipeline gRPC service.
//
// Request and response payloads are JSON documents carried in protobuf
// well-known wrapper types, so this package does not require a
// protoc/codegen toolchain. The JSON shapes are the model package types.
//
// Proto definition: pipeline.proto.
type PipelineServer interface {
	// Run executes one verifiable-compute run. In: model.RunRequest JSON.
	// Out: model.RunResponse JSON.
	Run(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	// SimulateAttack injects a simulated attack by name ("GROVER", "SHOR").
	// Out: model.AttackSimulation JSON.
	SimulateAttack(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	// Status reports backend availability. Out: model.BackendStatus JSON.
	Status(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedPipelineServer can be embedded to have forward compatible implementations.
type UnimplementedPipelineServer struct{}

func (UnimplementedPipelineServer) Run(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Run not implemented")
}
func (UnimplementedPipelineServer) SimulateAttack(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method SimulateAttack not implemented")
}
func (UnimplementedPipelineServer) Status(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}

// RegisterPipelineServer registers the pipeline service on a gRPC server.
func RegisterPipelineServer(s grpc.ServiceRegistrar, srv PipelineServer) {
	s.RegisterService(&Pipeline_ServiceDesc, srv)
}

// PipelineClient is the client API for the pipeline gRPC service.
type PipelineClient interface {
	Run(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	SimulateAttack(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Status(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type pipelineClient struct{ cc grpc.ClientConnInterface }

func NewPipelineClient(cc grpc.ClientConnInterface) PipelineClient { return &pipelineClient{cc: cc} }

func (c *pipelineClient) Run(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/qpo.pipeline.v1.Pipeline/Run", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pipelineClient) SimulateAttack(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/qpo.pipeline.v1.Pipeline/SimulateAttack", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pipelineClient) Status(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/qpo.pipeline.v1.Pipeline/Status", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Pipeline_Run_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PipelineServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/qpo.pipeline.v1.Pipeline/Run"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PipelineServer).Run(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pipeline_SimulateAttack_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PipelineServer).SimulateAttack(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/qpo.pipeline.v1.Pipeline/SimulateAttack"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PipelineServer).SimulateAttack(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Pipeline_Status_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PipelineServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/qpo.pipeline.v1.Pipeline/Status"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PipelineServer).Status(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Pipeline_ServiceDesc is the grpc.ServiceDesc for the Pipeline service.
var Pipeline_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "qpo.pipeline.v1.Pipeline",
	HandlerType: (*PipelineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Run", Handler: _Pipeline_Run_Handler},
		{MethodName: "SimulateAttack", Handler: _Pipeline_SimulateAttack_Handler},
		{MethodName: "Status", Handler: _Pipeline_Status_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pipeline.proto",
}
