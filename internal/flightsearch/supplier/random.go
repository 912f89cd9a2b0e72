package supplier

import (
	"crypto/rand"
	"math/big"
	"time"
)

// jitter returns a random duration in [0, d], drawn from crypto/rand so it is
// safe to call from concurrent retries.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	value, err := rand.Int(rand.Reader, big.NewInt(int64(d)+1))
	if err != nil {
		return 0
	}
	return time.Duration(value.Int64())
}
