package auth

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// simulateHumanBehavior moves the mouse around the viewport between login checks.
func (s *ServiceImpl) simulateHumanBehavior(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "simulateHumanBehavior panic recovered: %v", r)
		}
	}()

	eval, err := s.page.Eval(`() => ({width: window.innerWidth, height: window.innerHeight})`)
	if err != nil {
		return
	}

	dims := eval.Value.Map()
	maxX := int(dims["width"].Num())
	maxY := int(dims["height"].Num())

	if maxX <= 0 || maxY <= 0 {
		return
	}

	for range mouseMovementsPerCheck {
		//nolint:gosec // Weak random is fine for simulating human behavior.
		x, y := rand.IntN(maxX), rand.IntN(maxY)

		s.page.Mouse.MustMoveTo(float64(x), float64(y))

		time.Sleep(randomDuration(mouseMovementMinDelay, mouseMovementMaxDelay))
	}
}

// randomHumanDelay sleeps for a random duration to simulate human timing.
func randomHumanDelay() {
	time.Sleep(randomDuration(humanBehaviorMinDelay, humanBehaviorMaxDelay))
}

// randomDuration returns a duration in [minDelay, maxDelay).
func randomDuration(minDelay, maxDelay time.Duration) time.Duration {
	if maxDelay <= minDelay {
		return minDelay
	}

	//nolint:gosec // Weak random is fine for simulating human behavior.
	return time.Duration(rand.Int64N(int64(maxDelay-minDelay))) + minDelay
}
