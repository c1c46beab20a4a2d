package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.WithField("session_id", "s1").Debug("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if entry["msg"] != "hello" || entry["session_id"] != "s1" || entry["level"] != "debug" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNew_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level = %s", log.GetLevel())
	}
	log.Info("dropped")
	log.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected error for bad format")
	}
}
