package thinking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/qualia/internal/domain"
)

type recordingSleep struct {
	delays []time.Duration
	failAt int
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	if r.failAt > 0 && len(r.delays) == r.failAt {
		return context.Canceled
	}
	return nil
}

func TestPlay_EmitsInOrderWithDelays(t *testing.T) {
	rec := &recordingSleep{}
	seq := NewSequencer(WithSleep(rec.sleep))

	var emitted []domain.ThinkingStep
	played, err := seq.Play(context.Background(), Script(LocaleGreek, "χαρτικά"), func(s domain.ThinkingStep) {
		emitted = append(emitted, s)
	})
	require.NoError(t, err)
	require.Len(t, played, 6)
	require.Equal(t, played, emitted)
	require.Equal(t, []time.Duration{
		800 * time.Millisecond,
		1000 * time.Millisecond,
		1200 * time.Millisecond,
		1000 * time.Millisecond,
		1000 * time.Millisecond,
		1500 * time.Millisecond,
	}, rec.delays)

	require.Contains(t, played[0].Content, "χαρτικά")
	require.Equal(t, domain.StepSearch, played[2].Type)
	require.Equal(t, domain.StepResult, played[4].Type)

	ids := map[string]bool{}
	for _, s := range played {
		require.NotEmpty(t, s.ID)
		ids[s.ID] = true
	}
	require.Len(t, ids, 6)
}

func TestPlay_SpeedScalesDelays(t *testing.T) {
	rec := &recordingSleep{}
	seq := NewSequencer(WithSleep(rec.sleep), WithSpeed(0.5))

	_, err := seq.Play(context.Background(), []Step{{Content: "a", Type: domain.StepThinking, Delay: time.Second}}, nil)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{500 * time.Millisecond}, rec.delays)
}

func TestPlay_ZeroSpeedSkipsSleep(t *testing.T) {
	rec := &recordingSleep{}
	seq := NewSequencer(WithSleep(rec.sleep), WithSpeed(0))

	played, err := seq.Play(context.Background(), Script(LocaleEnglish, "x"), nil)
	require.NoError(t, err)
	require.Len(t, played, 6)
	require.Empty(t, rec.delays)
}

func TestPlay_StopsWhenSleepFails(t *testing.T) {
	rec := &recordingSleep{failAt: 2}
	seq := NewSequencer(WithSleep(rec.sleep))

	played, err := seq.Play(context.Background(), Script(LocaleEnglish, "x"), nil)
	require.True(t, errors.Is(err, context.Canceled))
	require.Len(t, played, 2)
}

func TestPlay_RealSleepHonorsContext(t *testing.T) {
	seq := NewSequencer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	played, err := seq.Play(ctx, []Step{{Content: "a", Delay: time.Hour}, {Content: "b"}}, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, played, 1)
}

func TestPlay_UsesClock(t *testing.T) {
	fixed := time.Date(2025, 1, 19, 7, 7, 46, 0, time.UTC)
	seq := NewSequencer(WithSpeed(0), WithClock(func() time.Time { return fixed }))

	played, err := seq.Play(context.Background(), []Step{{Content: "a"}}, nil)
	require.NoError(t, err)
	require.Equal(t, fixed, played[0].Timestamp)
}

func TestScript_UnknownLocaleIsGreek(t *testing.T) {
	require.Equal(t, Script(LocaleGreek, "q"), Script("fr", "q"))
	require.NotEqual(t, ErrorReply(LocaleGreek), ErrorReply(LocaleEnglish))
}
