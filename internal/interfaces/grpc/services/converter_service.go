// Package services implements the gRPC services. Messages are
// google.protobuf.Struct so the service needs no generated code.
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

const (
	ConverterServiceName = "patent2rag.v1.Converter"
	ConvertFullMethod    = "/" + ConverterServiceName + "/Convert"
)

// Request fields of Convert.
const (
	FieldFileName      = "file_name"
	FieldContent       = "content"
	FieldTargetTokens  = "target_tokens"
	FieldOverlapTokens = "overlap_tokens"
	FieldPublish       = "publish"
)

// Converter runs the conversion pipeline.
type Converter interface {
	Convert(ctx context.Context, data []byte, fileName string, opts ...conversion.Option) (*patent.Document, []patent.Chunk, error)
}

// Publisher forwards a converted document to the configured sinks.
type Publisher interface {
	Publish(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error
}

// ConverterServer is the server side of patent2rag.v1.Converter.
type ConverterServer interface {
	Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ConverterServiceDesc describes patent2rag.v1.Converter for registration.
var ConverterServiceDesc = grpc.ServiceDesc{
	ServiceName: ConverterServiceName,
	HandlerType: (*ConverterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Convert", Handler: convertHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "patent2rag/v1/converter.proto",
}

func convertHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConverterServer).Convert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConvertFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConverterServer).Convert(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ConverterService implements ConverterServer over the conversion service.
type ConverterService struct {
	converter Converter
	publisher Publisher
	logger    logging.Logger
}

// NewConverterService creates the service. publisher may be nil.
func NewConverterService(converter Converter, publisher Publisher, logger logging.Logger) *ConverterService {
	return &ConverterService{converter: converter, publisher: publisher, logger: logging.OrNop(logger)}
}

// Convert decodes {file_name, content (base64), target_tokens,
// overlap_tokens, publish} and answers {document, chunks}.
func (s *ConverterService) Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	fileName := fields[FieldFileName].GetStringValue()
	if fileName == "" {
		return nil, status.Error(codes.InvalidArgument, "file_name is required")
	}
	data, err := base64.StdEncoding.DecodeString(fields[FieldContent].GetStringValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "content must be base64: %v", err)
	}
	if len(data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}

	var opts []conversion.Option
	if v, ok := fields[FieldTargetTokens]; ok {
		opts = append(opts, conversion.WithTargetTokens(int(v.GetNumberValue())))
	}
	if v, ok := fields[FieldOverlapTokens]; ok {
		opts = append(opts, conversion.WithOverlapTokens(int(v.GetNumberValue())))
	}

	doc, chunks, err := s.converter.Convert(ctx, data, fileName, opts...)
	if err != nil {
		return nil, toStatus(err)
	}
	if fields[FieldPublish].GetBoolValue() {
		if s.publisher == nil {
			return nil, status.Error(codes.FailedPrecondition, "no sinks are configured")
		}
		if err := s.publisher.Publish(ctx, doc, chunks); err != nil {
			s.logger.Error("Publish failed", logging.String(logging.FieldDocID, doc.DocID), logging.Err(err))
			return nil, toStatus(err)
		}
	}
	return EncodeResult(&conversion.Result{Document: doc, Chunks: chunks})
}

// EncodeResult converts a result into its Struct form.
func EncodeResult(r *conversion.Result) (*structpb.Struct, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

// DecodeResult converts a Convert response back into a result.
func DecodeResult(s *structpb.Struct) (*conversion.Result, error) {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return nil, err
	}
	var r conversion.Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// NewConvertRequest builds a Convert request. Zero token counts keep the
// server defaults.
func NewConvertRequest(fileName string, data []byte, targetTokens, overlapTokens int) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		FieldFileName: fileName,
		FieldContent:  base64.StdEncoding.EncodeToString(data),
	}
	if targetTokens > 0 {
		fields[FieldTargetTokens] = targetTokens
	}
	if overlapTokens > 0 {
		fields[FieldOverlapTokens] = overlapTokens
	}
	return structpb.NewStruct(fields)
}

// ConverterClient calls patent2rag.v1.Converter.
type ConverterClient struct {
	cc grpc.ClientConnInterface
}

// NewConverterClient wraps a client connection.
func NewConverterClient(cc grpc.ClientConnInterface) *ConverterClient {
	return &ConverterClient{cc: cc}
}

// Convert invokes the Convert method.
func (c *ConverterClient) Convert(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ConvertFullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// toStatus maps application errors to gRPC status codes. Server-side
// failures keep only the default message.
func toStatus(err error) error {
	code := errors.GetCode(err)
	grpcCode := errors.GRPCCodeForCode(code)
	if grpcCode == codes.Internal || errors.IsServerError(code) {
		return status.Error(grpcCode, errors.DefaultMessageForCode(code))
	}
	return status.Error(grpcCode, err.Error())
}

//Personal.AI order the ending
