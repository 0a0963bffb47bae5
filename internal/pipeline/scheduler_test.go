package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestSchedulerRegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler()

	err := s.Register("not a cron spec", "news", func(ctx context.Context) error { return nil })

	assert.NotEqual(t, err, nil)
}

func TestSchedulerRegisterAcceptsFiveFieldSpec(t *testing.T) {
	s := NewScheduler()

	err := s.Register("0 */6 * * *", "news", func(ctx context.Context) error { return nil })

	assert.Equal(t, err, nil)
}

func TestSchedulerRunsRegisteredTask(t *testing.T) {
	s := NewScheduler()
	fired := make(chan struct{}, 2)

	err := s.Register("@every 100ms", "tick", func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	})
	assert.Equal(t, err, nil)

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("task never fired")
	}
}

func TestCursorsStartZeroAndAdvanceIndependently(t *testing.T) {
	c := NewCursors()

	assert.Equal(t, true, c.News().IsZero())
	assert.Equal(t, true, c.Market().IsZero())

	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.AdvanceNews(at)

	assert.Equal(t, at, c.News())
	assert.Equal(t, true, c.Market().IsZero())

	c.AdvanceMarket(at.Add(time.Hour))
	assert.Equal(t, at.Add(time.Hour), c.Market())
}
