// Package checkoutv1 is the gRPC contract of the checkout service. Messages
// are plain Go structs carried by the JSON codec registered in this package.
package checkoutv1

import (
	"fmt"

	"google.golang.org/protobuf/types/known/timestamppb"
)

type SessionState int32

const (
	SessionState_SESSION_STATE_UNSPECIFIED      SessionState = 0
	SessionState_SESSION_STATE_COLLECTING       SessionState = 1
	SessionState_SESSION_STATE_HELD             SessionState = 2
	SessionState_SESSION_STATE_AWAITING_PAYMENT SessionState = 3
	SessionState_SESSION_STATE_CONFIRMED        SessionState = 4
	SessionState_SESSION_STATE_EXPIRED          SessionState = 5
	SessionState_SESSION_STATE_CANCELLED        SessionState = 6
	SessionState_SESSION_STATE_FAILED           SessionState = 7
)

var SessionState_name = map[SessionState]string{
	0: "SESSION_STATE_UNSPECIFIED",
	1: "SESSION_STATE_COLLECTING",
	2: "SESSION_STATE_HELD",
	3: "SESSION_STATE_AWAITING_PAYMENT",
	4: "SESSION_STATE_CONFIRMED",
	5: "SESSION_STATE_EXPIRED",
	6: "SESSION_STATE_CANCELLED",
	7: "SESSION_STATE_FAILED",
}

func (s SessionState) String() string {
	if name, ok := SessionState_name[s]; ok {
		return name
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

func (s SessionState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SessionState) UnmarshalText(b []byte) error {
	for v, name := range SessionState_name {
		if name == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", b)
}

type PaymentOutcome int32

const (
	PaymentOutcome_PAYMENT_OUTCOME_UNSPECIFIED PaymentOutcome = 0
	PaymentOutcome_PAYMENT_OUTCOME_SUCCESS     PaymentOutcome = 1
	PaymentOutcome_PAYMENT_OUTCOME_FAILURE     PaymentOutcome = 2
)

var PaymentOutcome_name = map[PaymentOutcome]string{
	0: "PAYMENT_OUTCOME_UNSPECIFIED",
	1: "PAYMENT_OUTCOME_SUCCESS",
	2: "PAYMENT_OUTCOME_FAILURE",
}

func (o PaymentOutcome) String() string {
	if name, ok := PaymentOutcome_name[o]; ok {
		return name
	}
	return fmt.Sprintf("PaymentOutcome(%d)", int32(o))
}

func (o PaymentOutcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *PaymentOutcome) UnmarshalText(b []byte) error {
	for v, name := range PaymentOutcome_name {
		if name == string(b) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown payment outcome %q", b)
}

type BookingRequest struct {
	VenueId       string   `json:"venue_id,omitempty"`
	CoachId       string   `json:"coach_id,omitempty"`
	Sport         string   `json:"sport,omitempty"`
	Date          string   `json:"date,omitempty"`
	StartTime     string   `json:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty"`
	AccountId     string   `json:"account_id,omitempty"`
	DependentId   string   `json:"dependent_id,omitempty"`
	PromoCode     string   `json:"promo_code,omitempty"`
	ExpectedTotal *float64 `json:"expected_total,omitempty"`
}

func (x *BookingRequest) GetVenueId() string {
	if x != nil {
		return x.VenueId
	}
	return ""
}

func (x *BookingRequest) GetCoachId() string {
	if x != nil {
		return x.CoachId
	}
	return ""
}

func (x *BookingRequest) GetAccountId() string {
	if x != nil {
		return x.AccountId
	}
	return ""
}

type PaymentSplit struct {
	VenueShare float64 `json:"venue_share"`
	CoachShare float64 `json:"coach_share"`
}

type PriceBreakdown struct {
	DurationMinutes int32         `json:"duration_minutes"`
	VenueRate       float64       `json:"venue_rate"`
	CoachRate       float64       `json:"coach_rate"`
	Subtotal        float64       `json:"subtotal"`
	ServiceFee      float64       `json:"service_fee"`
	Tax             float64       `json:"tax"`
	Discount        float64       `json:"discount"`
	Total           float64       `json:"total"`
	Split           *PaymentSplit `json:"split,omitempty"`
	PromoCode       string        `json:"promo_code,omitempty"`
	PromoMessage    string        `json:"promo_message,omitempty"`
}

func (x *PriceBreakdown) GetTotal() float64 {
	if x != nil {
		return x.Total
	}
	return 0
}

type CheckoutSession struct {
	Id               string                 `json:"id"`
	State            SessionState           `json:"state"`
	VenueId          string                 `json:"venue_id,omitempty"`
	CoachId          string                 `json:"coach_id,omitempty"`
	Sport            string                 `json:"sport"`
	Date             string                 `json:"date"`
	StartTime        string                 `json:"start_time"`
	EndTime          string                 `json:"end_time"`
	AccountId        string                 `json:"account_id"`
	DependentId      string                 `json:"dependent_id,omitempty"`
	PromoCode        string                 `json:"promo_code,omitempty"`
	Price            *PriceBreakdown        `json:"price,omitempty"`
	HoldExpiresAt    *timestamppb.Timestamp `json:"hold_expires_at,omitempty"`
	CheckoutUrl      string                 `json:"checkout_url,omitempty"`
	GatewayReference string                 `json:"gateway_reference,omitempty"`
	BookingId        string                 `json:"booking_id,omitempty"`
	FailureReason    string                 `json:"failure_reason,omitempty"`
	CreatedAt        *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt        *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

func (x *CheckoutSession) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *CheckoutSession) GetState() SessionState {
	if x != nil {
		return x.State
	}
	return SessionState_SESSION_STATE_UNSPECIFIED
}

func (x *CheckoutSession) GetPrice() *PriceBreakdown {
	if x != nil {
		return x.Price
	}
	return nil
}

type CreateCheckoutSessionRequest struct {
	Booking *BookingRequest `json:"booking"`
}

func (x *CreateCheckoutSessionRequest) GetBooking() *BookingRequest {
	if x != nil {
		return x.Booking
	}
	return nil
}

type QuotePriceRequest struct {
	Booking *BookingRequest `json:"booking"`
}

func (x *QuotePriceRequest) GetBooking() *BookingRequest {
	if x != nil {
		return x.Booking
	}
	return nil
}

type QuotePriceResponse struct {
	Price *PriceBreakdown `json:"price"`
}

type GetCheckoutSessionRequest struct {
	SessionId string `json:"session_id"`
}

func (x *GetCheckoutSessionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type CancelCheckoutSessionRequest struct {
	SessionId string `json:"session_id"`
}

func (x *CancelCheckoutSessionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type RetryCheckoutRequest struct {
	SessionId string `json:"session_id"`
}

func (x *RetryCheckoutRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

type ExtendCheckoutSessionRequest struct {
	SessionId string `json:"session_id"`
	// TtlSeconds of zero means the server default.
	TtlSeconds int64 `json:"ttl_seconds,omitempty"`
}

func (x *ExtendCheckoutSessionRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *ExtendCheckoutSessionRequest) GetTtlSeconds() int64 {
	if x != nil {
		return x.TtlSeconds
	}
	return 0
}

type ReportPaymentOutcomeRequest struct {
	SessionId        string         `json:"session_id"`
	Outcome          PaymentOutcome `json:"outcome"`
	GatewayReference string         `json:"gateway_reference,omitempty"`
	Reason           string         `json:"reason,omitempty"`
}

func (x *ReportPaymentOutcomeRequest) GetSessionId() string {
	if x != nil {
		return x.SessionId
	}
	return ""
}

func (x *ReportPaymentOutcomeRequest) GetOutcome() PaymentOutcome {
	if x != nil {
		return x.Outcome
	}
	return PaymentOutcome_PAYMENT_OUTCOME_UNSPECIFIED
}

type ListCheckoutSessionsRequest struct {
	AccountId string `json:"account_id"`
	Page      int32  `json:"page,omitempty"`
	PageSize  int32  `json:"page_size,omitempty"`
}

func (x *ListCheckoutSessionsRequest) GetAccountId() string {
	if x != nil {
		return x.AccountId
	}
	return ""
}

func (x *ListCheckoutSessionsRequest) GetPage() int32 {
	if x != nil {
		return x.Page
	}
	return 0
}

func (x *ListCheckoutSessionsRequest) GetPageSize() int32 {
	if x != nil {
		return x.PageSize
	}
	return 0
}

type ListCheckoutSessionsResponse struct {
	Sessions   []*CheckoutSession `json:"sessions"`
	Page       int32              `json:"page"`
	PageSize   int32              `json:"page_size"`
	TotalCount int32              `json:"total_count"`
	HasNext    bool               `json:"has_next"`
}
