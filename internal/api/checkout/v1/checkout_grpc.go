package checkoutv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CheckoutService_ServiceName = "booking.checkout.v1.CheckoutService"

	CheckoutService_CreateCheckoutSession_FullMethodName = "/" + CheckoutService_ServiceName + "/CreateCheckoutSession"
	CheckoutService_QuotePrice_FullMethodName            = "/" + CheckoutService_ServiceName + "/QuotePrice"
	CheckoutService_GetCheckoutSession_FullMethodName    = "/" + CheckoutService_ServiceName + "/GetCheckoutSession"
	CheckoutService_CancelCheckoutSession_FullMethodName = "/" + CheckoutService_ServiceName + "/CancelCheckoutSession"
	CheckoutService_RetryCheckout_FullMethodName         = "/" + CheckoutService_ServiceName + "/RetryCheckout"
	CheckoutService_ExtendCheckoutSession_FullMethodName = "/" + CheckoutService_ServiceName + "/ExtendCheckoutSession"
	CheckoutService_ReportPaymentOutcome_FullMethodName  = "/" + CheckoutService_ServiceName + "/ReportPaymentOutcome"
	CheckoutService_ListCheckoutSessions_FullMethodName  = "/" + CheckoutService_ServiceName + "/ListCheckoutSessions"
)

type CheckoutServiceClient interface {
	CreateCheckoutSession(ctx context.Context, in *CreateCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error)
	QuotePrice(ctx context.Context, in *QuotePriceRequest, opts ...grpc.CallOption) (*QuotePriceResponse, error)
	GetCheckoutSession(ctx context.Context, in *GetCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error)
	CancelCheckoutSession(ctx context.Context, in *CancelCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error)
	RetryCheckout(ctx context.Context, in *RetryCheckoutRequest, opts ...grpc.CallOption) (*CheckoutSession, error)
	ExtendCheckoutSession(ctx context.Context, in *ExtendCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error)
	ReportPaymentOutcome(ctx context.Context, in *ReportPaymentOutcomeRequest, opts ...grpc.CallOption) (*CheckoutSession, error)
	ListCheckoutSessions(ctx context.Context, in *ListCheckoutSessionsRequest, opts ...grpc.CallOption) (*ListCheckoutSessionsResponse, error)
}

type checkoutServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCheckoutServiceClient(cc grpc.ClientConnInterface) CheckoutServiceClient {
	return &checkoutServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *checkoutServiceClient) CreateCheckoutSession(ctx context.Context, in *CreateCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error) {
	return invoke[CheckoutSession](ctx, c.cc, CheckoutService_CreateCheckoutSession_FullMethodName, in, opts)
}

func (c *checkoutServiceClient) QuotePrice(ctx context.Context, in *QuotePriceRequest, opts ...grpc.CallOption) (*QuotePriceResponse, error) {
	return invoke[QuotePriceResponse](ctx, c.cc, CheckoutService_QuotePrice_FullMethodName, in, opts)
}

func (c *checkoutServiceClient) GetCheckoutSession(ctx context.Context, in *GetCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error) {
	return invoke[CheckoutSession](ctx, c.cc, CheckoutService_GetCheckoutSession_FullMethodName, in, opts)
}

func (c *checkoutServiceClient) CancelCheckoutSession(ctx context.Context, in *CancelCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error) {
	return invoke[CheckoutSession](ctx, c.cc, CheckoutService_CancelCheckoutSession_FullMethodName, in, opts)
}

func (c *checkoutServiceClient) RetryCheckout(ctx context.Context, in *RetryCheckoutRequest, opts ...grpc.CallOption) (*CheckoutSession, error) {
	return invoke[CheckoutSession](ctx, c.cc, CheckoutService_RetryCheckout_FullMethodName, in, opts)
}

func (c *checkoutServiceClient) ExtendCheckoutSession(ctx context.Context, in *ExtendCheckoutSessionRequest, opts ...grpc.CallOption) (*CheckoutSession, error) {
	return invoke[CheckoutSession](ctx, c.cc, CheckoutService_ExtendCheckoutSession_FullMethodName, in, opts)
}

func (c *checkoutServiceClient) ReportPaymentOutcome(ctx context.Context, in *ReportPaymentOutcomeRequest, opts ...grpc.CallOption) (*CheckoutSession, error) {
	return invoke[CheckoutSession](ctx, c.cc, CheckoutService_ReportPaymentOutcome_FullMethodName, in, opts)
}

func (c *checkoutServiceClient) ListCheckoutSessions(ctx context.Context, in *ListCheckoutSessionsRequest, opts ...grpc.CallOption) (*ListCheckoutSessionsResponse, error) {
	return invoke[ListCheckoutSessionsResponse](ctx, c.cc, CheckoutService_ListCheckoutSessions_FullMethodName, in, opts)
}

// CheckoutServiceServer is the server API for CheckoutService. Embed
// UnimplementedCheckoutServiceServer for forward compatibility.
type CheckoutServiceServer interface {
	CreateCheckoutSession(context.Context, *CreateCheckoutSessionRequest) (*CheckoutSession, error)
	QuotePrice(context.Context, *QuotePriceRequest) (*QuotePriceResponse, error)
	GetCheckoutSession(context.Context, *GetCheckoutSessionRequest) (*CheckoutSession, error)
	CancelCheckoutSession(context.Context, *CancelCheckoutSessionRequest) (*CheckoutSession, error)
	RetryCheckout(context.Context, *RetryCheckoutRequest) (*CheckoutSession, error)
	ExtendCheckoutSession(context.Context, *ExtendCheckoutSessionRequest) (*CheckoutSession, error)
	ReportPaymentOutcome(context.Context, *ReportPaymentOutcomeRequest) (*CheckoutSession, error)
	ListCheckoutSessions(context.Context, *ListCheckoutSessionsRequest) (*ListCheckoutSessionsResponse, error)
	mustEmbedUnimplementedCheckoutServiceServer()
}

type UnimplementedCheckoutServiceServer struct{}

func (UnimplementedCheckoutServiceServer) CreateCheckoutSession(context.Context, *CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateCheckoutSession not implemented")
}
func (UnimplementedCheckoutServiceServer) QuotePrice(context.Context, *QuotePriceRequest) (*QuotePriceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method QuotePrice not implemented")
}
func (UnimplementedCheckoutServiceServer) GetCheckoutSession(context.Context, *GetCheckoutSessionRequest) (*CheckoutSession, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCheckoutSession not implemented")
}
func (UnimplementedCheckoutServiceServer) CancelCheckoutSession(context.Context, *CancelCheckoutSessionRequest) (*CheckoutSession, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelCheckoutSession not implemented")
}
func (UnimplementedCheckoutServiceServer) RetryCheckout(context.Context, *RetryCheckoutRequest) (*CheckoutSession, error) {
	return nil, status.Error(codes.Unimplemented, "method RetryCheckout not implemented")
}
func (UnimplementedCheckoutServiceServer) ExtendCheckoutSession(context.Context, *ExtendCheckoutSessionRequest) (*CheckoutSession, error) {
	return nil, status.Error(codes.Unimplemented, "method ExtendCheckoutSession not implemented")
}
func (UnimplementedCheckoutServiceServer) ReportPaymentOutcome(context.Context, *ReportPaymentOutcomeRequest) (*CheckoutSession, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportPaymentOutcome not implemented")
}
func (UnimplementedCheckoutServiceServer) ListCheckoutSessions(context.Context, *ListCheckoutSessionsRequest) (*ListCheckoutSessionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCheckoutSessions not implemented")
}
func (UnimplementedCheckoutServiceServer) mustEmbedUnimplementedCheckoutServiceServer() {}

func RegisterCheckoutServiceServer(s grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	s.RegisterService(&CheckoutService_ServiceDesc, srv)
}

func unary[Req any, Resp any](
	method string,
	call func(CheckoutServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CheckoutServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CheckoutServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CheckoutService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CheckoutService_ServiceName,
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateCheckoutSession",
			Handler:    unary(CheckoutService_CreateCheckoutSession_FullMethodName, CheckoutServiceServer.CreateCheckoutSession),
		},
		{
			MethodName: "QuotePrice",
			Handler:    unary(CheckoutService_QuotePrice_FullMethodName, CheckoutServiceServer.QuotePrice),
		},
		{
			MethodName: "GetCheckoutSession",
			Handler:    unary(CheckoutService_GetCheckoutSession_FullMethodName, CheckoutServiceServer.GetCheckoutSession),
		},
		{
			MethodName: "CancelCheckoutSession",
			Handler:    unary(CheckoutService_CancelCheckoutSession_FullMethodName, CheckoutServiceServer.CancelCheckoutSession),
		},
		{
			MethodName: "RetryCheckout",
			Handler:    unary(CheckoutService_RetryCheckout_FullMethodName, CheckoutServiceServer.RetryCheckout),
		},
		{
			MethodName: "ExtendCheckoutSession",
			Handler:    unary(CheckoutService_ExtendCheckoutSession_FullMethodName, CheckoutServiceServer.ExtendCheckoutSession),
		},
		{
			MethodName: "ReportPaymentOutcome",
			Handler:    unary(CheckoutService_ReportPaymentOutcome_FullMethodName, CheckoutServiceServer.ReportPaymentOutcome),
		},
		{
			MethodName: "ListCheckoutSessions",
			Handler:    unary(CheckoutService_ListCheckoutSessions_FullMethodName, CheckoutServiceServer.ListCheckoutSessions),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "booking/checkout/v1/checkout.proto",
}
