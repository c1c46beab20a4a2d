package service

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	checkoutpb "github.com/Leganyst/booking-engine/internal/api/checkout/v1"
	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/checkout/checkouttest"
)

func newClient(t *testing.T) (checkoutpb.CheckoutServiceClient, *checkouttest.Env) {
	t.Helper()
	env := checkouttest.New(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	checkoutpb.RegisterCheckoutServiceServer(srv, NewCheckoutService(env.Orch, env.Logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return checkoutpb.NewCheckoutServiceClient(conn), env
}

func cricketBooking() *checkoutpb.BookingRequest {
	return &checkoutpb.BookingRequest{
		VenueId:   "v1",
		Sport:     "Cricket",
		Date:      "2025-06-02",
		StartTime: "09:00",
		EndTime:   "11:00",
		AccountId: "acc-1",
	}
}

func TestCheckoutService_CreateAndConfirm(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	sess, err := client.CreateCheckoutSession(ctx, &checkoutpb.CreateCheckoutSessionRequest{Booking: cricketBooking()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.GetState() != checkoutpb.SessionState_SESSION_STATE_AWAITING_PAYMENT {
		t.Fatalf("state = %s", sess.GetState())
	}
	if sess.GetPrice().GetTotal() != 2568 || sess.CheckoutUrl == "" || sess.HoldExpiresAt == nil {
		t.Fatalf("session = %+v", sess)
	}
	if sess.StartTime != "09:00" || sess.EndTime != "11:00" {
		t.Fatalf("times = %s-%s", sess.StartTime, sess.EndTime)
	}

	confirmed, err := client.ReportPaymentOutcome(ctx, &checkoutpb.ReportPaymentOutcomeRequest{
		SessionId: sess.GetId(),
		Outcome:   checkoutpb.PaymentOutcome_PAYMENT_OUTCOME_SUCCESS,
	})
	if err != nil {
		t.Fatalf("report outcome: %v", err)
	}
	if confirmed.GetState() != checkoutpb.SessionState_SESSION_STATE_CONFIRMED || confirmed.BookingId == "" {
		t.Fatalf("confirmed = %+v", confirmed)
	}

	list, err := client.ListCheckoutSessions(ctx, &checkoutpb.ListCheckoutSessionsRequest{AccountId: "acc-1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.TotalCount != 1 || len(list.Sessions) != 1 || list.Sessions[0].Id != sess.Id {
		t.Fatalf("list = %+v", list)
	}
}

func TestCheckoutService_Quote(t *testing.T) {
	client, _ := newClient(t)
	b := cricketBooking()
	b.PromoCode = "SAVE10"

	resp, err := client.QuotePrice(context.Background(), &checkoutpb.QuotePriceRequest{Booking: b})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if resp.Price.Total != 2328 || resp.Price.Discount != 240 {
		t.Fatalf("price = %+v", resp.Price)
	}
}

func TestCheckoutService_ErrorMapping(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	invalid := cricketBooking()
	invalid.EndTime = invalid.StartTime
	_, err := client.CreateCheckoutSession(ctx, &checkoutpb.CreateCheckoutSessionRequest{Booking: invalid})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want InvalidArgument", status.Code(err))
	}
	if code, _ := apperr.FromGRPCStatus(err); code != apperr.CodeInvalidInterval {
		t.Fatalf("reason = %s, want INVALID_INTERVAL", code)
	}

	if _, err := client.CreateCheckoutSession(ctx, &checkoutpb.CreateCheckoutSessionRequest{Booking: cricketBooking()}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err = client.CreateCheckoutSession(ctx, &checkoutpb.CreateCheckoutSessionRequest{Booking: cricketBooking()})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("code = %s, want AlreadyExists", status.Code(err))
	}
	code, md := apperr.FromGRPCStatus(err)
	if code != apperr.CodeSlotConflict || md["session_id"] == "" {
		t.Fatalf("conflict = %s %v", code, md)
	}

	_, err = client.GetCheckoutSession(ctx, &checkoutpb.GetCheckoutSessionRequest{SessionId: "missing"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %s, want NotFound", status.Code(err))
	}

	_, err = client.ReportPaymentOutcome(ctx, &checkoutpb.ReportPaymentOutcomeRequest{SessionId: md["session_id"]})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("missing outcome: code = %s", status.Code(err))
	}
}

func TestCheckoutService_GatewayDownThenRetry(t *testing.T) {
	client, env := newClient(t)
	ctx := context.Background()
	env.Gateway.SetErr(context.DeadlineExceeded)

	_, err := client.CreateCheckoutSession(ctx, &checkoutpb.CreateCheckoutSessionRequest{Booking: cricketBooking()})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("code = %s, want Unavailable", status.Code(err))
	}
	_, md := apperr.FromGRPCStatus(err)

	env.Gateway.SetErr(nil)
	sess, err := client.RetryCheckout(ctx, &checkoutpb.RetryCheckoutRequest{SessionId: md["session_id"]})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if sess.GetState() != checkoutpb.SessionState_SESSION_STATE_AWAITING_PAYMENT {
		t.Fatalf("state = %s", sess.GetState())
	}

	extended, err := client.ExtendCheckoutSession(ctx, &checkoutpb.ExtendCheckoutSessionRequest{SessionId: sess.Id, TtlSeconds: 300})
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if !extended.HoldExpiresAt.AsTime().Equal(env.Clock.Now().Add(300 * time.Second)) {
		t.Fatalf("hold expires at %v", extended.HoldExpiresAt.AsTime())
	}

	cancelled, err := client.CancelCheckoutSession(ctx, &checkoutpb.CancelCheckoutSessionRequest{SessionId: sess.Id})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.GetState() != checkoutpb.SessionState_SESSION_STATE_CANCELLED {
		t.Fatalf("state = %s", cancelled.GetState())
	}
}
