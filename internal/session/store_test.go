package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"carlens/internal/domain"
	"carlens/internal/eventbus"
)

func TestStoreBeginIssuesIncreasingTokens(t *testing.T) {
	s := NewStore(nil, nil)
	defer s.Close()

	a, err := s.Begin(context.Background(), "Tesla")
	require.NoError(t, err)
	b, err := s.Begin(context.Background(), "  Ford ")
	require.NoError(t, err)

	assert.Greater(t, b.Token, a.Token)
	assert.Equal(t, "Ford", b.Manufacturer)
	assert.NotEqual(t, a.ID, b.ID)

	snap := s.Snapshot()
	assert.Equal(t, b.Token, snap.Token)
	assert.Equal(t, "Ford", snap.Manufacturer)
	assert.True(t, snap.Loading)
}

func TestStoreBeginCancelsSupersededCycle(t *testing.T) {
	s := NewStore(nil, nil)
	defer s.Close()

	a, err := s.Begin(context.Background(), "Tesla")
	require.NoError(t, err)
	_, err = s.Begin(context.Background(), "Ford")
	require.NoError(t, err)

	select {
	case <-a.Ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded cycle context was not cancelled")
	}
}

func TestStoreRejectsBlankInput(t *testing.T) {
	s := NewStore(nil, nil)
	defer s.Close()

	running, err := s.Begin(context.Background(), "Kia")
	require.NoError(t, err)

	_, err = s.Begin(context.Background(), " \t ")
	require.ErrorIs(t, err, domain.ErrEmptyManufacturer)

	snap := s.Snapshot()
	assert.Equal(t, running.Token, snap.Token)
	assert.Equal(t, domain.MsgEmptySelection, snap.Error)
	assert.NoError(t, running.Ctx.Err(), "rejected input must not cancel the running cycle")
}

func TestStoreSupersededCycleNeverObserved(t *testing.T) {
	s := NewStore(nil, nil)
	defer s.Close()

	a, err := s.Begin(context.Background(), "Tesla")
	require.NoError(t, err)
	b, err := s.Begin(context.Background(), "Ford")
	require.NoError(t, err)

	// A's responses arrive interleaved with B's
	_, changed := s.Apply(domain.RecordsSucceededEvent{Token: a.Token, Records: records("Model S")})
	assert.False(t, changed)
	s.Apply(domain.ImageSucceededEvent{Token: b.Token, Image: domain.ImageResult{URL: "https://img/ford"}})
	_, changed = s.Apply(domain.ImageFailedEvent{Token: a.Token, Kind: domain.RequestFailed, Message: domain.MsgImageFailed})
	assert.False(t, changed)
	s.Apply(domain.RecordsSucceededEvent{Token: b.Token, Records: records("F-150")})

	snap := s.Snapshot()
	assert.Equal(t, records("F-150"), snap.Records)
	assert.Equal(t, "https://img/ford", snap.ImageURL())
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Loading)
	assert.ErrorIs(t, b.Ctx.Err(), context.Canceled, "settled cycle releases its context")
}

func TestStorePublishesStateChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New(nil)

	var mu sync.Mutex
	var seen []State
	bus.Subscribe(eventbus.EventStateChanged, func(e eventbus.DomainEvent) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.(StateChangedEvent).State)
	})

	s := NewStore(bus, nil)
	c, err := s.Begin(context.Background(), "Toyota")
	require.NoError(t, err)
	s.Apply(domain.RecordsSucceededEvent{Token: c.Token, Records: records("Camry")})
	s.Apply(domain.RecordsSucceededEvent{Token: c.Token - 1, Records: records("stale")})
	s.Apply(domain.ImageSucceededEvent{Token: c.Token, Image: domain.ImageResult{URL: "u"}})
	s.Close()
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.True(t, seen[0].Loading)
	assert.Equal(t, records("Camry"), seen[1].Records)
	assert.False(t, seen[2].Loading)
}

func TestStoreConcurrentApply(t *testing.T) {
	s := NewStore(nil, nil)
	defer s.Close()

	c, err := s.Begin(context.Background(), "Isuzu")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Apply(domain.RecordsSucceededEvent{Token: c.Token, Records: records("D-Max")})
	}()
	go func() {
		defer wg.Done()
		s.Apply(domain.ImageSucceededEvent{Token: c.Token, Image: domain.ImageResult{URL: "u"}})
	}()
	wg.Wait()

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, records("D-Max"), snap.Records)
	assert.Equal(t, "u", snap.ImageURL())
}
