package models

import (
	"testing"
	"time"
)

func TestSeedThread(t *testing.T) {
	order := &Order{}
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if err := order.SeedThread("Cake: Honey\nDesign Type: Standard", at); err != nil {
		t.Fatalf("SeedThread failed: %v", err)
	}

	msgs, err := order.Thread()
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("thread length = %d, want 1", len(msgs))
	}
	if msgs[0].From != "customer" {
		t.Errorf("From = %q, want customer", msgs[0].From)
	}
	if !msgs[0].SentAt.Equal(at) {
		t.Errorf("SentAt = %v, want %v", msgs[0].SentAt, at)
	}
}

func TestSeedThreadEmptyMessage(t *testing.T) {
	order := &Order{}
	if err := order.SeedThread("", time.Now()); err != nil {
		t.Fatalf("SeedThread failed: %v", err)
	}

	msgs, err := order.Thread()
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("empty message should leave the thread empty, got %d entries", len(msgs))
	}
}

func TestSetThreadRoundTrip(t *testing.T) {
	order := &Order{}
	_ = order.SeedThread("first", time.Now())

	msgs, _ := order.Thread()
	msgs = append(msgs, OrderMessage{From: "staff", Body: "second", SentAt: time.Now()})
	if err := order.SetThread(msgs); err != nil {
		t.Fatalf("SetThread failed: %v", err)
	}

	got, err := order.Thread()
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("thread length = %d, want 2", len(got))
	}
	if got[1].From != "staff" || got[1].Body != "second" {
		t.Errorf("second entry = %+v", got[1])
	}
}
