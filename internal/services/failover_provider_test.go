package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeProvider is a scriptable provider for failover tests
type fakeProvider struct {
	name  string
	err   error
	calls int
}

func (f *fakeProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	f.calls++
	if f.err != nil {
		return &SendResult{ProviderName: f.name, Success: false, Error: f.err}, f.err
	}
	return &SendResult{ProviderName: f.name, Success: true}, nil
}

func (f *fakeProvider) GetName() string {
	return f.name
}

func noRetryConfig(enableFailover bool) *FailoverConfig {
	return &FailoverConfig{
		EnableFailover: enableFailover,
		MaxRetries:     0,
		RetryDelay:     0,
	}
}

func TestFailoverPrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: "Primary"}
	secondary := &fakeProvider{name: "Secondary"}

	f := NewFailoverEmailProvider([]Provider{primary, secondary}, noRetryConfig(true))

	result, err := f.Send(context.Background(), &Message{To: "a@b.com", Subject: "hi"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !result.Success {
		t.Error("expected success result")
	}
	if result.ProviderName != "Primary" {
		t.Errorf("sent via %s, want Primary", result.ProviderName)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, should not have been tried", secondary.calls)
	}
}

func TestFailoverFallsThroughToSecondary(t *testing.T) {
	primary := &fakeProvider{name: "Primary", err: errors.New("smtp timeout")}
	secondary := &fakeProvider{name: "Secondary"}

	f := NewFailoverEmailProvider([]Provider{primary, secondary}, noRetryConfig(true))

	result, err := f.Send(context.Background(), &Message{To: "a@b.com", Subject: "hi"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if result.ProviderName != "Secondary" {
		t.Errorf("sent via %s, want Secondary", result.ProviderName)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
}

func TestFailoverAllProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "Primary", err: errors.New("smtp timeout")}
	secondary := &fakeProvider{name: "Secondary", err: errors.New("api key rejected")}

	f := NewFailoverEmailProvider([]Provider{primary, secondary}, noRetryConfig(true))

	result, err := f.Send(context.Background(), &Message{To: "a@b.com", Subject: "hi"})
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}
	if result.Success {
		t.Error("result should not be marked success")
	}
	if !strings.Contains(err.Error(), "smtp timeout") || !strings.Contains(err.Error(), "api key rejected") {
		t.Errorf("aggregated error should mention both failures, got: %v", err)
	}
}

func TestFailoverDisabledStopsAtPrimary(t *testing.T) {
	primary := &fakeProvider{name: "Primary", err: errors.New("down")}
	secondary := &fakeProvider{name: "Secondary"}

	f := NewFailoverEmailProvider([]Provider{primary, secondary}, noRetryConfig(false))

	_, err := f.Send(context.Background(), &Message{To: "a@b.com", Subject: "hi"})
	if err == nil {
		t.Fatal("expected error with failover disabled and primary down")
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, failover was disabled", secondary.calls)
	}
}

func TestFailoverRetriesBeforeMovingOn(t *testing.T) {
	primary := &fakeProvider{name: "Primary", err: errors.New("flaky")}
	secondary := &fakeProvider{name: "Secondary"}

	f := NewFailoverEmailProvider([]Provider{primary, secondary}, &FailoverConfig{
		EnableFailover: true,
		MaxRetries:     2,
		RetryDelay:     0,
	})

	if _, err := f.Send(context.Background(), &Message{To: "a@b.com"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if primary.calls != 3 {
		t.Errorf("primary called %d times, want 3 (initial + 2 retries)", primary.calls)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary called %d times, want 1", secondary.calls)
	}
}

func TestFailoverNoProviders(t *testing.T) {
	f := NewFailoverEmailProvider(nil, noRetryConfig(true))

	if _, err := f.Send(context.Background(), &Message{To: "a@b.com"}); err == nil {
		t.Fatal("expected error with no providers configured")
	}
	if got := f.GetName(); got != "Failover(none)" {
		t.Errorf("GetName() = %q, want Failover(none)", got)
	}
}

func TestFailoverGetName(t *testing.T) {
	f := NewFailoverEmailProvider([]Provider{
		&fakeProvider{name: "AWS-SES"},
		&fakeProvider{name: "SendGrid"},
	}, nil)

	if got := f.GetName(); got != "Failover(AWS-SES->SendGrid)" {
		t.Errorf("GetName() = %q", got)
	}
}
