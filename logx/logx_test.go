package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

// newTestLogger returns a Logger that writes JSON into buf.
func newTestLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewWithHandler(h)
}

func TestLogger_Match(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	id := domain.ID{1, 2, 3}
	child := l.Match(id)

	child.Info("opened")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["match"] != id.String() {
		t.Fatalf("match = %v, want %q", entry["match"], id.String())
	}
	if entry["msg"] != "opened" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "opened")
	}
}

func TestLogger_PlayerOwner(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	child := l.Player(nil)

	child.Info("dispatched")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["player"] != "owner" {
		t.Fatalf("player = %v, want %q", entry["player"], "owner")
	}
}

func TestLogger_DiffSuccess(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)

	l.Diff(cryptoadapter.Address{0xAB}, cryptoadapter.Hash{0xCD}, 3, nil)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["level"] != "INFO" {
		t.Fatalf("level = %v, want INFO", entry["level"])
	}
	if entry["actions"] != float64(3) {
		t.Fatalf("actions = %v, want 3", entry["actions"])
	}
}

func TestLogger_DiffRejected(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)

	l.Diff(cryptoadapter.Address{0xAB}, cryptoadapter.Hash{0xCD}, 1, errors.New("bad signature"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	if entry["level"] != "ERROR" {
		t.Fatalf("level = %v, want ERROR", entry["level"])
	}
	if entry["error"] != "bad signature" {
		t.Fatalf("error = %v, want %q", entry["error"], "bad signature")
	}
}
