// Package config holds the business defaults of the trust control plane:
// attempt policies for the guarded flows and the tier-to-quota table.
// Process-level settings (addresses, DSNs) live in internal/platform/config.
package config

import (
	"time"

	"trustplane/internal/trust/models"
)

// AttemptPolicy bounds a sensitive flow: at most MaxAttempts per Window.
type AttemptPolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// TierQuota is the posting capacity of a subscription tier within one
// billing period.
type TierQuota struct {
	MaxPosts int
}

// Config carries every tunable the trust services read.
type Config struct {
	// Attempt policies per guarded flow. Each call site owns its policy;
	// the limiter itself is parameter-free.
	Login         AttemptPolicy
	Registration  AttemptPolicy
	PasswordReset AttemptPolicy
	FacialUpload  AttemptPolicy

	// TierQuotas maps each subscription tier to its per-period post quota.
	TierQuotas map[models.SubscriptionTier]TierQuota

	// BillingPeriodMonths is the length of the implicit billing period
	// measured from the last successful payment.
	BillingPeriodMonths int
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Login:         AttemptPolicy{MaxAttempts: 5, Window: 15 * time.Minute},
		Registration:  AttemptPolicy{MaxAttempts: 3, Window: time.Hour},
		PasswordReset: AttemptPolicy{MaxAttempts: 3, Window: 15 * time.Minute},
		FacialUpload:  AttemptPolicy{MaxAttempts: 3, Window: 15 * time.Minute},
		TierQuotas: map[models.SubscriptionTier]TierQuota{
			models.TierFree:     {MaxPosts: 3},
			models.TierStandard: {MaxPosts: 10},
			models.TierPremium:  {MaxPosts: 50},
		},
		BillingPeriodMonths: 1,
	}
}

// MaxPosts returns the quota for a tier, falling back to the free tier for
// unknown values so a corrupted record can never grant unlimited posts.
func (c *Config) MaxPosts(tier models.SubscriptionTier) int {
	if q, ok := c.TierQuotas[tier]; ok {
		return q.MaxPosts
	}
	return c.TierQuotas[models.TierFree].MaxPosts
}
