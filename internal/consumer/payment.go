// Package consumer feeds payment outcomes from the broker into the checkout
// orchestrator.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/checkout"
	"github.com/Leganyst/booking-engine/internal/gateway"
	"github.com/Leganyst/booking-engine/internal/model"
)

const (
	RKPaymentPaid   = "payment.paid"
	RKPaymentFailed = "payment.failed"
)

// Keys are the routing keys the payment queue binds to.
var Keys = []string{RKPaymentPaid, RKPaymentFailed}

type PaymentPaid struct {
	SessionID string `json:"session_id"`
	ChargeID  string `json:"charge_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type PaymentFailed struct {
	SessionID      string `json:"session_id"`
	ChargeID       string `json:"charge_id"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

// OutcomeHandler is the part of the orchestrator the consumer drives.
type OutcomeHandler interface {
	HandlePaymentOutcome(ctx context.Context, in checkout.PaymentOutcome) (*model.CheckoutSession, error)
}

// errPoison marks a message that will never succeed; it is dropped, not
// requeued.
var errPoison = errors.New("poison message")

type Payments struct {
	handler OutcomeHandler
	log     logrus.FieldLogger
}

func NewPayments(handler OutcomeHandler, log logrus.FieldLogger) *Payments {
	return &Payments{handler: handler, log: log}
}

// Run acks handled deliveries, rejects poison ones and requeues the rest
// until ctx ends or the channel closes.
func (p *Payments) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			p.deliver(ctx, d)
		}
	}
}

func (p *Payments) deliver(ctx context.Context, d amqp.Delivery) {
	log := p.log.WithFields(logrus.Fields{"routing_key": d.RoutingKey, "message_id": d.MessageId})
	err := p.Handle(ctx, d.RoutingKey, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errPoison):
		log.WithError(err).Error("dropping payment message")
		_ = d.Reject(false)
	default:
		log.WithError(err).Warn("payment message failed, requeueing")
		_ = d.Nack(false, true)
	}
}

// Handle applies one message. Domain rejections such as an unknown session
// or an out-of-order outcome are final and reported as poison.
func (p *Payments) Handle(ctx context.Context, key string, body []byte) error {
	var in checkout.PaymentOutcome
	switch key {
	case RKPaymentPaid:
		ev, err := decode[PaymentPaid](body)
		if err != nil {
			return err
		}
		in = checkout.PaymentOutcome{SessionID: ev.SessionID, Outcome: gateway.OutcomeSuccess, GatewayReference: ev.ChargeID}
	case RKPaymentFailed:
		ev, err := decode[PaymentFailed](body)
		if err != nil {
			return err
		}
		reason := strings.TrimSpace(ev.FailureCode + " " + ev.FailureMessage)
		in = checkout.PaymentOutcome{SessionID: ev.SessionID, Outcome: gateway.OutcomeFailure, GatewayReference: ev.ChargeID, Reason: reason}
	default:
		p.log.WithField("routing_key", key).Debug("skip unknown key")
		return nil
	}
	if in.SessionID == "" {
		return fmt.Errorf("%w: session_id is empty", errPoison)
	}

	s, err := p.handler.HandlePaymentOutcome(ctx, in)
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeUnknown {
			return fmt.Errorf("%w: %w", errPoison, err)
		}
		return err
	}
	p.log.WithFields(logrus.Fields{"session_id": s.ID, "state": s.State}).Info("payment outcome applied")
	return nil
}

func decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decode payload: %w", errPoison, err)
	}
	return t, nil
}
