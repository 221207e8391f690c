package jwtstrategy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_Fields(t *testing.T) {
	testCases := []struct {
		name   string
		args   []any
		expect map[string]any
	}{
		{
			name:   "empty",
			args:   nil,
			expect: map[string]any{},
		},
		{
			name:   "pairs",
			args:   []any{"token", "abc", "attempts", 3},
			expect: map[string]any{"token": "abc", "attempts": 3},
		},
		{
			name:   "trailing key",
			args:   []any{"token", "abc", "orphan"},
			expect: map[string]any{"token": "abc", "orphan": nil},
		},
		{
			name:   "non-string key",
			args:   []any{42, "answer"},
			expect: map[string]any{"42": "answer"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := fields(testCase.args)
			if diff := cmp.Diff(testCase.expect, got); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_LogrusAdapter(t *testing.T) {
	base, hook := logrustest.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)

	logger := NewLogrusLogger(base)
	logger.Warn("token rejected", "reason", "expired")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %v", entry.Level)
	}
	if entry.Message != "token rejected" {
		t.Fatalf("unexpected message: %q", entry.Message)
	}
	if entry.Data["reason"] != "expired" {
		t.Fatalf("unexpected fields: %v", entry.Data)
	}
}

func Test_ZapAdapter(t *testing.T) {
	core, observed := observer.New(zap.DebugLevel)

	logger := NewZapLogger(zap.New(core).Sugar())
	logger.Error("key provider failed", "timeout", "2s")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Message != "key provider failed" {
		t.Fatalf("unexpected message: %q", entries[0].Message)
	}
	if got := entries[0].ContextMap()["timeout"]; got != "2s" {
		t.Fatalf("unexpected fields: %v", entries[0].ContextMap())
	}
}

func Test_ZerologAdapter(t *testing.T) {
	var buf bytes.Buffer

	logger := NewZerologLogger(zerolog.New(&buf))
	logger.Info("authenticated", "user", "jane")

	line := buf.String()
	for _, want := range []string{`"message":"authenticated"`, `"user":"jane"`, `"level":"info"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected log line to contain %s, got %s", want, line)
		}
	}
}
