package mq

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestJSONPublishing(t *testing.T) {
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	msg, err := jsonPublishing(map[string]string{"session_id": "s1"}, at)
	if err != nil {
		t.Fatalf("jsonPublishing: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("headers = %q %d", msg.ContentType, msg.DeliveryMode)
	}
	if msg.MessageId == "" || !msg.Timestamp.Equal(at) {
		t.Fatalf("id=%q ts=%v", msg.MessageId, msg.Timestamp)
	}
	var body map[string]string
	if err := json.Unmarshal(msg.Body, &body); err != nil || body["session_id"] != "s1" {
		t.Fatalf("body = %s, %v", msg.Body, err)
	}

	other, _ := jsonPublishing("x", at)
	if other.MessageId == msg.MessageId {
		t.Fatalf("message ids must be unique")
	}

	if _, err := jsonPublishing(math.Inf(1), at); err == nil {
		t.Fatalf("expected encode error for +Inf")
	}
}
