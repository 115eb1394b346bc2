package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newCaptureLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestNew_ComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := newCaptureLogger(&buf, ComponentServices)

	logger.Info("hello")

	if !strings.Contains(buf.String(), "component=services") {
		t.Errorf("output missing component attribute: %s", buf.String())
	}
}

func TestNew_DefaultsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newCaptureLogger(&buf, "")

	logger.Info("hello")

	if !strings.Contains(buf.String(), "component="+ComponentApp) {
		t.Errorf("empty component should fall back to app: %s", buf.String())
	}
}

func TestMiddleware_InjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newCaptureLogger(&buf, ComponentHTTP)

	var got *Logger
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/balances", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != logger {
		t.Error("FromContext should return the injected logger")
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Logger == nil {
		t.Fatal("FromContext must never return nil")
	}
}

func TestStructuredLogger_HTTPLifecycle(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newCaptureLogger(&buf, ComponentHTTP))

	req := httptest.NewRequest(http.MethodPost, "/api/transfers?dry=1", nil)
	sl.LogHTTPStart(context.Background(), req, "10.0.0.1", "req_abc")
	sl.LogHTTPEnd(context.Background(), req, http.StatusCreated, 12, "10.0.0.1", "req_abc")

	out := buf.String()
	for _, want := range []string{
		"HTTP request started",
		"HTTP request completed",
		FieldMethod + "=POST",
		FieldPath + "=/api/transfers",
		FieldRequestID + "=req_abc",
		FieldStatusCode + "=201",
		FieldSuccess + "=true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestStructuredLogger_ErrorStatusLogsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newCaptureLogger(&buf, ComponentHTTP))

	req := httptest.NewRequest(http.MethodGet, "/api/balances", nil)
	sl.LogHTTPEnd(context.Background(), req, http.StatusInternalServerError, 3, "10.0.0.1", "req_err")

	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("5xx completion should log at error level: %s", buf.String())
	}
}

func TestStructuredLogger_MovementRecorded(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newCaptureLogger(&buf, ComponentServices))

	sl.LogMovementRecorded(context.Background(), OpCreate, "checking", "groceries", "12.5", "EUR")

	out := buf.String()
	for _, want := range []string{
		"Movement recorded",
		FieldOperation + "=" + OpCreate,
		FieldAccountID + "=checking",
		FieldCategoryID + "=groceries",
		FieldAmount + "=12.5",
		FieldCurrency + "=EUR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
