package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  role  ", Value: "  Data Analyst  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "role" || fields[0].String != "Data Analyst" {
		t.Fatalf("unexpected role field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithFields(logger, zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if ctx := entries[0].ContextMap(); ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	fallback := WithFields(nil, zap.String("baz", "qux"))
	if fallback == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	fallback.Info("another log")
}

func TestSessionFields(t *testing.T) {
	t.Parallel()

	fields := SessionFields("Software Developer", "abc")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldRole || fields[1].Key != FieldSession {
		t.Fatalf("unexpected keys: %q %q", fields[0].Key, fields[1].Key)
	}

	if partial := SessionFields("", "abc"); len(partial) != 1 || partial[0].Key != FieldSession {
		t.Fatalf("expected only the session field, got %+v", partial)
	}
}

func TestForSessionAndForAI(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ForAI(ForSession(logger, "Data Analyst", "s-1"), "gemini", "model-x").Debug("enriched")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	for key, want := range map[string]string{
		FieldRole:     "Data Analyst",
		FieldSession:  "s-1",
		FieldProvider: "gemini",
		FieldModel:    "model-x",
	} {
		if ctx[key] != want {
			t.Fatalf("expected %s=%q, got %q", key, want, ctx[key])
		}
	}

	if ForAI(nil, "gemini", "model-x") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}
