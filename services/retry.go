package services

import (
	"time"

	"github.com/Anand-732/MartLedger/utils"
)

// WithRetry reruns fn on concurrency conflicts, up to attempts tries with
// a small linear backoff. A conflict that survives every attempt comes
// back as a transient failure the caller can surface as retry-later.
// Other errors pass through untouched.
func WithRetry(attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !utils.IsCode(err, utils.CodeConcurrencyConflict) {
			return err
		}
		if i < attempts-1 {
			time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
		}
	}

	utils.LogError("Operation still conflicting after %d attempts: %v", attempts, err)
	return utils.TransientFailureError("operation conflicted with concurrent updates, retry later", err)
}
