// poll.go - Periodische Health-Checks
package viewer

import (
	"context"
	"time"
)

// Poll probes the backend immediately and then every interval until ctx is
// done.
func (s *Session) Poll(ctx context.Context, interval time.Duration) error {
	s.CheckHealth(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.CheckHealth(ctx)
		}
	}
}
