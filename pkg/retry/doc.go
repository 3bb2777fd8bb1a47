// Package retry runs provider calls under a bounded exponential-backoff policy
// and decides which failures are worth another attempt.
package retry
