// Package gatewaytest provides a scriptable payment gateway for tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/Leganyst/booking-engine/internal/gateway"
)

// Fake records every request. Err, when set, is returned instead of a link.
// Block, when set, is waited on before answering.
type Fake struct {
	mu       sync.Mutex
	requests []gateway.PaymentRequest
	err      error

	Block chan struct{}
}

func (f *Fake) SetErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *Fake) Requests() []gateway.PaymentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.PaymentRequest(nil), f.requests...)
}

func (f *Fake) CreateCheckout(ctx context.Context, req gateway.PaymentRequest) (gateway.CheckoutLink, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	err := f.err
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return gateway.CheckoutLink{}, ctx.Err()
		}
	}
	if err != nil {
		return gateway.CheckoutLink{}, err
	}
	return gateway.CheckoutLink{
		URL:       "https://pay.test/checkout/" + req.SessionID,
		Reference: "ref_" + req.SessionID,
	}, nil
}
