package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	checkoutpb "github.com/Leganyst/booking-engine/internal/api/checkout/v1"
	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/checkout"
	"github.com/Leganyst/booking-engine/internal/gateway"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/pricing"
)

// CheckoutService отдаёт оркестратор чекаута по gRPC.
type CheckoutService struct {
	checkoutpb.UnimplementedCheckoutServiceServer

	orch *checkout.Orchestrator
	log  logrus.FieldLogger
}

func NewCheckoutService(orch *checkout.Orchestrator, log logrus.FieldLogger) *CheckoutService {
	return &CheckoutService{orch: orch, log: log}
}

// CreateCheckoutSession открывает сессию, холдит слот и выдаёт ссылку на оплату.
func (s *CheckoutService) CreateCheckoutSession(
	ctx context.Context,
	req *checkoutpb.CreateCheckoutSessionRequest,
) (*checkoutpb.CheckoutSession, error) {
	if req.GetBooking() == nil {
		return nil, status.Error(codes.InvalidArgument, "booking is required")
	}
	sess, err := s.orch.Create(ctx, toBookingRequest(req.GetBooking()))
	if err != nil {
		return nil, s.grpcError(err, "create checkout session")
	}
	return mapSession(sess), nil
}

// QuotePrice считает стоимость без холда.
func (s *CheckoutService) QuotePrice(ctx context.Context, req *checkoutpb.QuotePriceRequest) (*checkoutpb.QuotePriceResponse, error) {
	if req.GetBooking() == nil {
		return nil, status.Error(codes.InvalidArgument, "booking is required")
	}
	b, err := s.orch.Quote(ctx, toBookingRequest(req.GetBooking()))
	if err != nil {
		return nil, s.grpcError(err, "quote price")
	}
	return &checkoutpb.QuotePriceResponse{Price: mapBreakdown(b)}, nil
}

func (s *CheckoutService) GetCheckoutSession(ctx context.Context, req *checkoutpb.GetCheckoutSessionRequest) (*checkoutpb.CheckoutSession, error) {
	if req.GetSessionId() == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	sess, err := s.orch.Get(ctx, req.GetSessionId())
	if err != nil {
		return nil, s.grpcError(err, "get checkout session")
	}
	return mapSession(sess), nil
}

func (s *CheckoutService) CancelCheckoutSession(ctx context.Context, req *checkoutpb.CancelCheckoutSessionRequest) (*checkoutpb.CheckoutSession, error) {
	if req.GetSessionId() == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	sess, err := s.orch.Cancel(ctx, req.GetSessionId())
	if err != nil {
		return nil, s.grpcError(err, "cancel checkout session")
	}
	return mapSession(sess), nil
}

// RetryCheckout повторяет запрос к шлюзу для сессии, оставшейся в HELD.
func (s *CheckoutService) RetryCheckout(ctx context.Context, req *checkoutpb.RetryCheckoutRequest) (*checkoutpb.CheckoutSession, error) {
	if req.GetSessionId() == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	sess, err := s.orch.RetryCheckout(ctx, req.GetSessionId())
	if err != nil {
		return nil, s.grpcError(err, "retry checkout")
	}
	return mapSession(sess), nil
}

func (s *CheckoutService) ExtendCheckoutSession(ctx context.Context, req *checkoutpb.ExtendCheckoutSessionRequest) (*checkoutpb.CheckoutSession, error) {
	if req.GetSessionId() == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	if req.GetTtlSeconds() < 0 {
		return nil, status.Error(codes.InvalidArgument, "ttl_seconds must not be negative")
	}
	sess, err := s.orch.Extend(ctx, req.GetSessionId(), time.Duration(req.GetTtlSeconds())*time.Second)
	if err != nil {
		return nil, s.grpcError(err, "extend checkout session")
	}
	return mapSession(sess), nil
}

// ReportPaymentOutcome принимает исход оплаты от доверенного вызывающего (платёжный сервис).
func (s *CheckoutService) ReportPaymentOutcome(ctx context.Context, req *checkoutpb.ReportPaymentOutcomeRequest) (*checkoutpb.CheckoutSession, error) {
	if req.GetSessionId() == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	outcome, ok := outcomeFromPB(req.GetOutcome())
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "outcome is required")
	}
	sess, err := s.orch.HandlePaymentOutcome(ctx, checkout.PaymentOutcome{
		SessionID:        req.GetSessionId(),
		Outcome:          outcome,
		GatewayReference: req.GatewayReference,
		Reason:           req.Reason,
	})
	if err != nil {
		return nil, s.grpcError(err, "report payment outcome")
	}
	return mapSession(sess), nil
}

func (s *CheckoutService) ListCheckoutSessions(
	ctx context.Context,
	req *checkoutpb.ListCheckoutSessionsRequest,
) (*checkoutpb.ListCheckoutSessionsResponse, error) {
	if req.GetAccountId() == "" {
		return nil, status.Error(codes.InvalidArgument, "account_id is required")
	}
	page, err := s.orch.List(ctx, req.GetAccountId(), int(req.GetPage()), int(req.GetPageSize()))
	if err != nil {
		return nil, s.grpcError(err, "list checkout sessions")
	}
	return mapPage(page), nil
}

// grpcError переводит доменную ошибку в статус; всё остальное логируется как Internal.
func (s *CheckoutService) grpcError(err error, op string) error {
	if apperr.CodeOf(err) == apperr.CodeUnknown {
		s.log.WithError(err).WithField("op", op).Error("internal error")
		return status.Errorf(codes.Internal, "%s: internal error", op)
	}
	return apperr.ToGRPCStatus(err)
}

func toBookingRequest(r *checkoutpb.BookingRequest) checkout.BookingRequest {
	return checkout.BookingRequest{
		VenueID:       r.VenueId,
		CoachID:       r.CoachId,
		Sport:         r.Sport,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		AccountID:     r.AccountId,
		DependentID:   r.DependentId,
		PromoCode:     r.PromoCode,
		ExpectedTotal: r.ExpectedTotal,
	}
}

func outcomeFromPB(o checkoutpb.PaymentOutcome) (gateway.Outcome, bool) {
	switch o {
	case checkoutpb.PaymentOutcome_PAYMENT_OUTCOME_SUCCESS:
		return gateway.OutcomeSuccess, true
	case checkoutpb.PaymentOutcome_PAYMENT_OUTCOME_FAILURE:
		return gateway.OutcomeFailure, true
	default:
		return "", false
	}
}

func mapSession(s *model.CheckoutSession) *checkoutpb.CheckoutSession {
	if s == nil {
		return nil
	}
	out := &checkoutpb.CheckoutSession{
		Id:               s.ID,
		State:            mapState(s.State),
		VenueId:          deref(s.VenueID),
		CoachId:          deref(s.CoachID),
		Sport:            s.Sport,
		Date:             s.SlotDate,
		StartTime:        calendar.TimeOfDay(s.StartMinute).String(),
		EndTime:          calendar.TimeOfDay(s.EndMinute).String(),
		AccountId:        s.AttendeeRef,
		DependentId:      deref(s.DependentID),
		PromoCode:        s.PromoCode,
		CheckoutUrl:      s.CheckoutURL,
		GatewayReference: s.GatewayReference,
		BookingId:        deref(s.BookingID),
		FailureReason:    s.FailureReason,
		CreatedAt:        timestamppb.New(s.CreatedAt),
		UpdatedAt:        timestamppb.New(s.UpdatedAt),
	}
	if s.State != model.SessionCollecting {
		out.Price = mapBreakdown(s.Price.Data())
	}
	if s.HoldExpiresAt != nil {
		out.HoldExpiresAt = timestamppb.New(*s.HoldExpiresAt)
	}
	return out
}

func mapBreakdown(b pricing.Breakdown) *checkoutpb.PriceBreakdown {
	out := &checkoutpb.PriceBreakdown{
		DurationMinutes: int32(b.DurationMinutes),
		VenueRate:       b.VenueRate,
		CoachRate:       b.CoachRate,
		Subtotal:        b.Subtotal,
		ServiceFee:      b.ServiceFee,
		Tax:             b.Tax,
		Discount:        b.Discount,
		Total:           b.Total,
		PromoCode:       b.PromoCode,
		PromoMessage:    b.PromoMessage,
	}
	if b.Split != nil {
		out.Split = &checkoutpb.PaymentSplit{VenueShare: b.Split.VenueShare, CoachShare: b.Split.CoachShare}
	}
	return out
}

func mapState(s model.SessionState) checkoutpb.SessionState {
	switch s {
	case model.SessionCollecting:
		return checkoutpb.SessionState_SESSION_STATE_COLLECTING
	case model.SessionHeld:
		return checkoutpb.SessionState_SESSION_STATE_HELD
	case model.SessionAwaitingPayment:
		return checkoutpb.SessionState_SESSION_STATE_AWAITING_PAYMENT
	case model.SessionConfirmed:
		return checkoutpb.SessionState_SESSION_STATE_CONFIRMED
	case model.SessionExpired:
		return checkoutpb.SessionState_SESSION_STATE_EXPIRED
	case model.SessionCancelled:
		return checkoutpb.SessionState_SESSION_STATE_CANCELLED
	case model.SessionFailed:
		return checkoutpb.SessionState_SESSION_STATE_FAILED
	default:
		return checkoutpb.SessionState_SESSION_STATE_UNSPECIFIED
	}
}

func mapPage(p calendar.Page[model.CheckoutSession]) *checkoutpb.ListCheckoutSessionsResponse {
	resp := &checkoutpb.ListCheckoutSessionsResponse{
		Sessions:   make([]*checkoutpb.CheckoutSession, 0, len(p.Items)),
		Page:       int32(p.Page),
		PageSize:   int32(p.PageSize),
		TotalCount: int32(p.Total),
		HasNext:    p.HasNext,
	}
	for i := range p.Items {
		resp.Sessions = append(resp.Sessions, mapSession(&p.Items[i]))
	}
	return resp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
