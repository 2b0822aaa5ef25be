package application

import (
	"context"
	"time"

	"github.com/ericfisherdev/catsfarm/internal/domain/model"
)

// wait blocks until d has elapsed on the monotonic clock, redrawing the
// countdown every tick. It returns ctx.Err() if ctx is canceled first.
func (s *FarmService) wait(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)
	s.updateStatus(func(st *model.FarmStatus) {
		st.Phase = model.FarmPhaseWaiting
		st.NextPassAt = deadline
	})

	ticker := time.NewTicker(s.settings.CountdownTick)
	defer ticker.Stop()
	defer s.reporter.CountdownDone()

	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		s.reporter.Countdown(remaining)
		if remaining == 0 {
			return nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-ticker.C:
			timer.Stop()
		}
	}
}
