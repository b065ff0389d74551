package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"equipment_id": "cam-1"}).
		WithEventType("equipment_booking.created").
		WithSource("equipment").
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if msg.GetEventID() == "" {
		t.Error("Build() should assign an event id")
	}
	if _, ok := msg.GetHeader(HeaderTimestamp); !ok {
		t.Error("Build() should stamp a timestamp header")
	}
	if msg.GetEventType() != "equipment_booking.created" {
		t.Errorf("GetEventType() = %q", msg.GetEventType())
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error: %v", err)
	}
	if decoded["equipment_id"] != "cam-1" {
		t.Errorf("decoded value = %v", decoded)
	}
}

func TestMessageBuilderRejectsUnencodableValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Fatal("Build() expected error for unencodable value")
	}
	if ClassifyError(err) != ErrorTypePermanent {
		t.Errorf("encoding failure should be permanent")
	}
}

func TestRetryCount(t *testing.T) {
	var msg Message
	if got := msg.GetRetryCount(); got != 0 {
		t.Fatalf("GetRetryCount() on empty message = %d", got)
	}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("db down", nil), ErrorTypeTransient},
		{"wrapped tagged permanent", fmt.Errorf("handler: %w", NewPermanentError("bad json", nil)), ErrorTypePermanent},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"plain error", errors.New("invalid payload"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("timeout", nil)
	if !ShouldRetry(transient, 0, 3) {
		t.Error("transient error under the limit should retry")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("retry limit reached should not retry")
	}
	if ShouldRetry(errors.New("bad"), 0, 3) {
		t.Error("permanent error should not retry")
	}
}
