package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// FailoverEmailProvider implements email sending with automatic failover.
// Providers are tried in order: the first is primary, the rest are fallbacks.
type FailoverEmailProvider struct {
	providers      []Provider
	enableFailover bool
	maxRetries     int
	retryDelay     time.Duration
}

// FailoverConfig configures the failover behavior
type FailoverConfig struct {
	EnableFailover bool
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewFailoverEmailProvider creates a new failover email provider
func NewFailoverEmailProvider(providers []Provider, config *FailoverConfig) *FailoverEmailProvider {
	if config == nil {
		config = &FailoverConfig{
			EnableFailover: true,
			MaxRetries:     1,
			RetryDelay:     2 * time.Second,
		}
	}

	validProviders := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			validProviders = append(validProviders, p)
		}
	}

	return &FailoverEmailProvider{
		providers:      validProviders,
		enableFailover: config.EnableFailover,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}
}

// Send sends an email with automatic failover
func (f *FailoverEmailProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	if len(f.providers) == 0 {
		err := fmt.Errorf("no email providers configured")
		return &SendResult{ProviderName: "Failover", Success: false, Error: err}, err
	}

	startTime := time.Now()
	var lastError error
	var allErrors []string

	for i, provider := range f.providers {
		providerName := provider.GetName()

		if ctx.Err() != nil {
			return &SendResult{ProviderName: "Failover", Success: false, Error: ctx.Err()}, ctx.Err()
		}

		for attempt := 0; attempt <= f.maxRetries; attempt++ {
			if attempt > 0 {
				log.Printf("[FAILOVER] Retry %d/%d for %s", attempt, f.maxRetries, providerName)
				time.Sleep(f.retryDelay)
			}

			result, err := provider.Send(ctx, message)
			if err == nil && result.Success {
				log.Printf("[FAILOVER] Sent via %s (took %v)", providerName, time.Since(startTime))
				if result.ProviderData == nil {
					result.ProviderData = make(map[string]interface{})
				}
				result.ProviderData["failover_attempts"] = i + 1
				return result, nil
			}

			if err != nil {
				lastError = err
				allErrors = append(allErrors, fmt.Sprintf("%s: %v", providerName, err))
				log.Printf("[FAILOVER] %s failed (attempt %d): %v", providerName, attempt+1, err)
			} else if result != nil && !result.Success {
				lastError = result.Error
				if result.Error != nil {
					allErrors = append(allErrors, fmt.Sprintf("%s: %v", providerName, result.Error))
				} else {
					allErrors = append(allErrors, fmt.Sprintf("%s: send failed without error", providerName))
				}
			}
		}

		if !f.enableFailover {
			log.Printf("[FAILOVER] Failover disabled, not trying next provider")
			break
		}
	}

	errorSummary := strings.Join(allErrors, "; ")
	finalError := fmt.Errorf("all email providers failed: %s", errorSummary)
	log.Printf("[FAILOVER] All providers failed after %v: %s", time.Since(startTime), errorSummary)

	return &SendResult{
		ProviderName: "Failover",
		Success:      false,
		Error:        lastError,
		ProviderData: map[string]interface{}{
			"all_errors":     allErrors,
			"total_attempts": len(f.providers),
		},
	}, finalError
}

// GetName returns the provider name
func (f *FailoverEmailProvider) GetName() string {
	if len(f.providers) == 0 {
		return "Failover(none)"
	}

	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.GetName()
	}
	return fmt.Sprintf("Failover(%s)", strings.Join(names, "->"))
}

// GetProviders returns the list of configured providers
func (f *FailoverEmailProvider) GetProviders() []Provider {
	return f.providers
}
