package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carlens/internal/domain"
	"carlens/internal/eventbus"
)

// StateChangedEvent is published after every state change
type StateChangedEvent struct {
	State State
}

func (e StateChangedEvent) Type() domain.EventType { return domain.EventStateChanged }

// Cycle describes one dispatched selection
type Cycle struct {
	ID           string
	Token        domain.Token
	Manufacturer string
	// Ctx is cancelled as soon as a newer selection supersedes this one
	Ctx context.Context
}

// Store owns the State of one session. All mutations go through Reduce.
type Store struct {
	mu     sync.Mutex
	state  State
	last   domain.Token
	cancel context.CancelFunc
	bus    eventbus.EventBus
	log    *zap.Logger
}

// NewStore creates an idle session. bus may be nil.
func NewStore(bus eventbus.EventBus, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		bus: bus,
		log: logger.Named("session"),
	}
}

// Begin starts a new selection: it validates the make, issues the next token,
// resets the state and cancels the previous cycle's context. Blank input is
// rejected with domain.ErrEmptyManufacturer and leaves any running cycle alone.
func (s *Store) Begin(ctx context.Context, input string) (Cycle, error) {
	name, err := domain.NormalizeManufacturer(input)
	if err != nil {
		s.Apply(domain.SelectionRejectedEvent{Input: input})
		return Cycle{}, err
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.last++
	cycleCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	cycle := Cycle{
		ID:           uuid.NewString(),
		Token:        s.last,
		Manufacturer: name,
		Ctx:          cycleCtx,
	}
	s.mu.Unlock()

	s.log.Info("selection started",
		zap.String("cycle", cycle.ID),
		zap.Uint64("token", uint64(cycle.Token)),
		zap.String("make", name))

	s.Apply(domain.SelectionStartedEvent{Token: cycle.Token, Manufacturer: name})
	return cycle, nil
}

// Apply reduces event into the state and reports whether anything changed.
// Safe for concurrent use.
func (s *Store) Apply(event domain.DomainEvent) (State, bool) {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, event)
	changed := !next.Equal(prev)
	s.state = next
	if changed && !next.Loading && s.cancel != nil && next.Token == s.last {
		// both branches settled; release the cycle context
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	if be, ok := event.(domain.BranchEvent); ok && !changed {
		s.log.Debug("discarded branch event",
			zap.String("type", string(event.Type())),
			zap.Uint64("event_token", uint64(be.CycleToken())),
			zap.Uint64("current_token", uint64(next.Token)))
	}

	if s.bus != nil {
		s.bus.Publish(event)
		if changed {
			s.bus.Publish(StateChangedEvent{State: next})
		}
	}
	return next, changed
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels any cycle still in flight
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// IsRejected reports whether err came from input validation
func IsRejected(err error) bool {
	return errors.Is(err, domain.ErrEmptyManufacturer)
}
