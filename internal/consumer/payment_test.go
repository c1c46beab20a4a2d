package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Leganyst/booking-engine/internal/checkout"
	"github.com/Leganyst/booking-engine/internal/checkout/checkouttest"
	"github.com/Leganyst/booking-engine/internal/model"
)

type ackRecorder struct {
	acked, rejected, requeued int
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	if requeue {
		a.requeued++
	} else {
		a.rejected++
	}
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { a.rejected++; return nil }

type failingHandler struct{}

func (failingHandler) HandlePaymentOutcome(context.Context, checkout.PaymentOutcome) (*model.CheckoutSession, error) {
	return nil, errors.New("database is locked")
}

func TestPayments_PaidConfirmsSession(t *testing.T) {
	env := checkouttest.New(t)
	s := env.AwaitingPayment(t)
	p := NewPayments(env.Orch, env.Logger)

	body := []byte(`{"session_id":"` + s.ID + `","charge_id":"chrg_1","amount":256800,"currency":"inr"}`)
	if err := p.Handle(context.Background(), RKPaymentPaid, body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := env.State(t, s.ID); got != model.SessionConfirmed {
		t.Fatalf("state = %s, want CONFIRMED", got)
	}

	// redelivery is harmless
	if err := p.Handle(context.Background(), RKPaymentPaid, body); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
}

func TestPayments_FailedFailsSession(t *testing.T) {
	env := checkouttest.New(t)
	s := env.AwaitingPayment(t)
	p := NewPayments(env.Orch, env.Logger)

	body := []byte(`{"session_id":"` + s.ID + `","charge_id":"chrg_2","failure_code":"insufficient_fund","failure_message":"no money"}`)
	if err := p.Handle(context.Background(), RKPaymentFailed, body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	var got model.CheckoutSession
	if err := env.DB.First(&got, "id = ?", s.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.State != model.SessionFailed || got.FailureReason != "insufficient_fund no money" {
		t.Fatalf("session = %s %q", got.State, got.FailureReason)
	}
}

func TestPayments_Run(t *testing.T) {
	env := checkouttest.New(t)
	s := env.AwaitingPayment(t)

	cases := []struct {
		name      string
		handler   OutcomeHandler
		key, body string
		want      ackRecorder
	}{
		{"ok", env.Orch, RKPaymentPaid, `{"session_id":"` + s.ID + `"}`, ackRecorder{acked: 1}},
		{"bad json", env.Orch, RKPaymentPaid, `{`, ackRecorder{rejected: 1}},
		{"no session id", env.Orch, RKPaymentFailed, `{}`, ackRecorder{rejected: 1}},
		{"unknown session", env.Orch, RKPaymentPaid, `{"session_id":"nope"}`, ackRecorder{rejected: 1}},
		{"unknown key", env.Orch, "payment.refunded", `{}`, ackRecorder{acked: 1}},
		{"transient", failingHandler{}, RKPaymentPaid, `{"session_id":"x"}`, ackRecorder{requeued: 1}},
	}
	for _, tc := range cases {
		ack := &ackRecorder{}
		msgs := make(chan amqp.Delivery, 1)
		msgs <- amqp.Delivery{Acknowledger: ack, RoutingKey: tc.key, Body: []byte(tc.body)}
		close(msgs)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := NewPayments(tc.handler, env.Logger).Run(ctx, msgs)
		cancel()
		if err != nil {
			t.Fatalf("%s: run: %v", tc.name, err)
		}
		if *ack != tc.want {
			t.Fatalf("%s: acks = %+v, want %+v", tc.name, *ack, tc.want)
		}
	}
}
