// Package grpcapi exposes the tokenizer and parsers as a gRPC service.
//
// Requests and responses are google.protobuf.Struct messages, so the service
// needs no generated code: requests carry {"source": "..."} and responses
// mirror the JSON documents of the HTTP API.
package grpcapi

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lemonberrylabs/toyparse/pkg/combinator"
	"github.com/lemonberrylabs/toyparse/pkg/config"
	"github.com/lemonberrylabs/toyparse/pkg/lexer"
	"github.com/lemonberrylabs/toyparse/pkg/parser"
	"github.com/lemonberrylabs/toyparse/pkg/render"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "toyparse.v1.Parser"

// RequestIDKey is the metadata key carrying the request id.
const RequestIDKey = "x-request-id"

// ParserServer is the server API of the toyparse.v1.Parser service.
type ParserServer interface {
	Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ParseDecl(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ParsePrimitive(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// unary adapts a ParserServer method to a grpc.MethodHandler.
func unary(method string, call func(ParserServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ParserServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ParserServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes toyparse.v1.Parser for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Tokenize", Handler: unary("Tokenize", ParserServer.Tokenize)},
		{MethodName: "Parse", Handler: unary("Parse", ParserServer.Parse)},
		{MethodName: "ParseDecl", Handler: unary("ParseDecl", ParserServer.ParseDecl)},
		{MethodName: "ParsePrimitive", Handler: unary("ParsePrimitive", ParserServer.ParsePrimitive)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "toyparse/v1/parser.proto",
}

// Server implements ParserServer.
type Server struct {
	maxInput int
	grpc     *grpc.Server
}

// New creates a new gRPC server. A non-positive maxInput selects the default.
func New(maxInput int) *Server {
	if maxInput <= 0 {
		maxInput = config.DefaultMaxInputLength
	}
	srv := &Server{maxInput: maxInput}
	gs := grpc.NewServer(grpc.UnaryInterceptor(requestID))
	gs.RegisterService(&ServiceDesc, srv)
	srv.grpc = gs
	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// requestID returns the caller's x-request-id, or a fresh one, as a
// response header.
func requestID(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(RequestIDKey); len(vals) > 0 {
			id = vals[0]
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, id)); err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (s *Server) source(req *structpb.Struct) (string, error) {
	v, ok := req.GetFields()["source"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "source is required")
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return "", status.Error(codes.InvalidArgument, "source must be a string")
	}
	src := v.GetStringValue()
	if len(src) > s.maxInput {
		return "", status.Errorf(codes.InvalidArgument, "source exceeds maximum length of %d bytes", s.maxInput)
	}
	return src, nil
}

func (s *Server) Tokenize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	src, err := s.source(req)
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, failure(err)
	}
	docs := make([]interface{}, 0, len(tokens))
	for _, tok := range render.Tokens(tokens) {
		docs = append(docs, tok)
	}
	return respond(map[string]interface{}{
		"tokens": docs,
		"text":   render.TokensText(tokens),
	})
}

func (s *Server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	src, err := s.source(req)
	if err != nil {
		return nil, err
	}
	expr, err := parser.ParseExpression(src)
	if err != nil {
		return nil, failure(err)
	}
	return respond(map[string]interface{}{
		"expr": render.Expr(expr),
		"text": expr.String(),
	})
}

func (s *Server) ParseDecl(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	src, err := s.source(req)
	if err != nil {
		return nil, err
	}
	d, err := parser.ParseDeclaration(src)
	if err != nil {
		return nil, failure(err)
	}
	return respond(map[string]interface{}{
		"decl": render.Decl(d),
		"text": d.String(),
	})
}

func (s *Server) ParsePrimitive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	src, err := s.source(req)
	if err != nil {
		return nil, err
	}
	rest, v, err := combinator.ParsePrimitive(src)
	if err != nil {
		return nil, failure(err)
	}
	return respond(map[string]interface{}{
		"value": render.Primitive(v, rest),
		"text":  v.String(),
	})
}

func respond(doc map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// failure maps a lexer or parser error to InvalidArgument with the
// diagnostic document attached as a status detail.
func failure(err error) error {
	st := status.New(codes.InvalidArgument, err.Error())
	details, convErr := structpb.NewStruct(render.Error(err))
	if convErr != nil {
		return st.Err()
	}
	withDetails, detErr := st.WithDetails(details)
	if detErr != nil {
		return st.Err()
	}
	return withDetails.Err()
}
