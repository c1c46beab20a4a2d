package gateway

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Sandbox issues local checkout URLs and never calls out. Outcomes are
// reported through the callback endpoint by hand.
type Sandbox struct {
	baseURL string
}

func NewSandbox(baseURL string) *Sandbox {
	return &Sandbox{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Sandbox) CreateCheckout(ctx context.Context, req PaymentRequest) (CheckoutLink, error) {
	if err := ctx.Err(); err != nil {
		return CheckoutLink{}, err
	}
	q := url.Values{}
	q.Set("amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	q.Set("currency", req.Currency)
	if req.ReturnURL != "" {
		q.Set("return_url", req.ReturnURL)
	}
	return CheckoutLink{
		URL:       s.baseURL + "/" + url.PathEscape(req.SessionID) + "?" + q.Encode(),
		Reference: "sandbox_" + req.SessionID,
	}, nil
}
