// Package thinking plays the scripted "thinking" sequence shown while a query
// is pending. The script carries no information from the real search call.
package thinking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/liliang-cn/qualia/internal/domain"
)

// Step is one scripted entry: the label to show and how long to hold it
// before the next step.
type Step struct {
	Content string
	Type    domain.StepType
	Delay   time.Duration
}

// Sequencer emits scripted steps in order, sleeping between them.
type Sequencer struct {
	speed float64
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	newID func() string
}

// Option configures a Sequencer
type Option func(*Sequencer)

// WithSpeed scales every delay. 0 plays the script without waiting.
func WithSpeed(speed float64) Option {
	return func(s *Sequencer) {
		if speed >= 0 {
			s.speed = speed
		}
	}
}

// WithSleep replaces the delay function, mostly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Sequencer) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSequencer creates a sequencer with real-time delays.
func NewSequencer(opts ...Option) *Sequencer {
	s := &Sequencer{
		speed: 1,
		sleep: sleepContext,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Play emits every step through emit, in order, holding each for its delay.
// It stops early only if ctx is done and returns the steps emitted so far.
func (s *Sequencer) Play(ctx context.Context, steps []Step, emit func(domain.ThinkingStep)) ([]domain.ThinkingStep, error) {
	played := make([]domain.ThinkingStep, 0, len(steps))
	for _, step := range steps {
		ts := domain.ThinkingStep{
			ID:        s.newID(),
			Content:   step.Content,
			Type:      step.Type,
			Timestamp: s.now().UTC(),
		}
		played = append(played, ts)
		if emit != nil {
			emit(ts)
		}

		d := time.Duration(float64(step.Delay) * s.speed)
		if d <= 0 {
			continue
		}
		if err := s.sleep(ctx, d); err != nil {
			return played, err
		}
	}
	return played, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
