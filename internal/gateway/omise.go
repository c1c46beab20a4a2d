package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// Charge metadata keys.
const (
	MetaSessionID  = "session_id"
	MetaVenueShare = "venue_share"
	MetaCoachShare = "coach_share"
)

// OmiseAPI is the part of the Omise API the engine uses.
type OmiseAPI interface {
	CreateSource(op *operations.CreateSource) (*omise.Source, error)
	CreateCharge(op *operations.CreateCharge) (*omise.Charge, error)
	RetrieveEvent(eventID string) (*omise.Event, error)
}

type omiseAPI struct {
	client *omise.Client
}

func NewOmiseAPI(publicKey, secretKey string) (OmiseAPI, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	return &omiseAPI{client: c}, nil
}

func (a *omiseAPI) CreateSource(op *operations.CreateSource) (*omise.Source, error) {
	src := &omise.Source{}
	if err := a.client.Do(src, op); err != nil {
		return nil, err
	}
	return src, nil
}

func (a *omiseAPI) CreateCharge(op *operations.CreateCharge) (*omise.Charge, error) {
	ch := &omise.Charge{}
	if err := a.client.Do(ch, op); err != nil {
		return nil, err
	}
	return ch, nil
}

func (a *omiseAPI) RetrieveEvent(eventID string) (*omise.Event, error) {
	ev := &omise.Event{}
	if err := a.client.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, err
	}
	return ev, nil
}

// Omise creates an offsite source and a charge against it; the customer is
// sent to the charge's authorize URI. The final status arrives through the
// charge.complete webhook.
type Omise struct {
	api        OmiseAPI
	sourceType string
}

func NewOmise(api OmiseAPI, sourceType string) *Omise {
	return &Omise{api: api, sourceType: sourceType}
}

func (o *Omise) CreateCheckout(ctx context.Context, req PaymentRequest) (CheckoutLink, error) {
	if err := ctx.Err(); err != nil {
		return CheckoutLink{}, err
	}
	amount := MinorUnits(req.Amount)
	currency := strings.ToLower(req.Currency)

	src, err := o.api.CreateSource(&operations.CreateSource{
		Type:     o.sourceType,
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		return CheckoutLink{}, fmt.Errorf("omise create source: %w", err)
	}

	metadata := map[string]any{MetaSessionID: req.SessionID}
	if req.Split != nil {
		metadata[MetaVenueShare] = strconv.FormatFloat(req.Split.VenueShare, 'f', -1, 64)
		metadata[MetaCoachShare] = strconv.FormatFloat(req.Split.CoachShare, 'f', -1, 64)
	}

	// ctx may have been cancelled while the source was created
	if err := ctx.Err(); err != nil {
		return CheckoutLink{}, err
	}
	ch, err := o.api.CreateCharge(&operations.CreateCharge{
		Amount:      amount,
		Currency:    currency,
		Source:      src.ID,
		Description: req.Description,
		ReturnURI:   req.ReturnURL,
		Metadata:    metadata,
	})
	if err != nil {
		return CheckoutLink{}, fmt.Errorf("omise create charge: %w", err)
	}
	if ch.AuthorizeURI == "" {
		return CheckoutLink{}, fmt.Errorf("omise charge %s: %w", ch.ID, ErrEmptyCheckoutURL)
	}
	return CheckoutLink{URL: ch.AuthorizeURI, Reference: ch.ID}, nil
}
