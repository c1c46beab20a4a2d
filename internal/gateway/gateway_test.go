package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"github.com/Leganyst/booking-engine/internal/pricing"
)

type fakeOmise struct {
	source  *operations.CreateSource
	charge  *operations.CreateCharge
	err     error
	authURI string
}

func (f *fakeOmise) CreateSource(op *operations.CreateSource) (*omise.Source, error) {
	f.source = op
	if f.err != nil {
		return nil, f.err
	}
	return &omise.Source{Base: omise.Base{ID: "src_test_1"}}, nil
}

func (f *fakeOmise) CreateCharge(op *operations.CreateCharge) (*omise.Charge, error) {
	f.charge = op
	return &omise.Charge{Base: omise.Base{ID: "chrg_test_1"}, AuthorizeURI: f.authURI}, nil
}

func (f *fakeOmise) RetrieveEvent(string) (*omise.Event, error) {
	return nil, errors.New("not used")
}

func TestOmise_CreateCheckout(t *testing.T) {
	api := &fakeOmise{authURI: "https://pay.omise.co/offsites/chrg_test_1/pay"}
	link, err := NewOmise(api, "promptpay").CreateCheckout(context.Background(), PaymentRequest{
		SessionID: "s-1",
		Amount:    1605,
		Currency:  "INR",
		Split:     &pricing.Split{VenueShare: 1000, CoachShare: 500},
		ReturnURL: "https://app.test/return",
	})
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if link.URL != api.authURI || link.Reference != "chrg_test_1" {
		t.Fatalf("unexpected link: %+v", link)
	}
	if api.source.Amount != 160500 || api.source.Currency != "inr" || api.source.Type != "promptpay" {
		t.Fatalf("unexpected source request: %+v", api.source)
	}
	if api.charge.Source != "src_test_1" || api.charge.ReturnURI != "https://app.test/return" {
		t.Fatalf("unexpected charge request: %+v", api.charge)
	}
	if api.charge.Metadata[MetaSessionID] != "s-1" || api.charge.Metadata[MetaVenueShare] != "1000" || api.charge.Metadata[MetaCoachShare] != "500" {
		t.Fatalf("unexpected metadata: %v", api.charge.Metadata)
	}
}

func TestOmise_CreateCheckoutErrors(t *testing.T) {
	api := &fakeOmise{err: errors.New("connection refused")}
	_, err := NewOmise(api, "promptpay").CreateCheckout(context.Background(), PaymentRequest{SessionID: "s-1", Amount: 10, Currency: "INR"})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected source error, got %v", err)
	}

	api = &fakeOmise{}
	_, err = NewOmise(api, "promptpay").CreateCheckout(context.Background(), PaymentRequest{SessionID: "s-1", Amount: 10, Currency: "INR"})
	if !errors.Is(err, ErrEmptyCheckoutURL) {
		t.Fatalf("expected empty url error, got %v", err)
	}
}

func TestSandbox_CreateCheckout(t *testing.T) {
	link, err := NewSandbox("http://localhost:8080/sandbox/").CreateCheckout(context.Background(), PaymentRequest{
		SessionID: "s-1",
		Amount:    2568,
		Currency:  "INR",
	})
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if link.URL != "http://localhost:8080/sandbox/s-1?amount=2568.00&currency=INR" {
		t.Fatalf("url = %q", link.URL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSandbox("http://x").CreateCheckout(ctx, PaymentRequest{SessionID: "s"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits(10.5); got != 1050 {
		t.Fatalf("MinorUnits = %d", got)
	}
	if got := MinorUnits(1605); got != 160500 {
		t.Fatalf("MinorUnits = %d", got)
	}
}
