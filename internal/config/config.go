package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Policy holds the credit policy constants. It is loaded once at startup
// and injected into the engine, the core never reads the environment.
type Policy struct {
	// Credits minted per verified volunteer hour
	CreditRatePerHour decimal.Decimal

	// How long after granting a credit can be allocated
	CreditExpiry time.Duration

	// Attendances with a measured duration below this are credited with
	// the activity's scheduled duration instead. Check-in/check-out pairs
	// only seconds apart are clock artifacts, not real volunteer work.
	MinWorkedDuration time.Duration

	// Tolerance when comparing decimal sums, covers the cent lost to
	// rounding when an odd amount is split
	Epsilon decimal.Decimal

	// How often a conflicting transaction is retried before the error
	// is returned to the caller
	RetryAttempts int

	// Base delay between retries, doubled on every attempt
	RetryBackoff time.Duration
}

// Load reads the policy from the environment, falling back to the
// defaults for anything unset.
func Load() Policy {
	return Policy{
		CreditRatePerHour: getDecimal("CREDIT_RATE_PER_HOUR", "10.0"),
		CreditExpiry:      getDuration("CREDIT_EXPIRY", 365*24*time.Hour),
		MinWorkedDuration: getDuration("MIN_WORKED_DURATION", 6*time.Minute),
		Epsilon:           getDecimal("CREDIT_EPSILON", "0.01"),
		RetryAttempts:     getInt("TX_RETRY_ATTEMPTS", 3),
		RetryBackoff:      getDuration("TX_RETRY_BACKOFF", 25*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDecimal(key, defaultValue string) decimal.Decimal {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		d, _ = decimal.NewFromString(defaultValue)
	}
	return d
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return i
}
