package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/twinbots/core/logger"
)

// Step is the result of an action: the next state and the replies to send.
// Returning the current state keeps the session (and its draft) as is;
// returning StateIdle discards the session.
type Step struct {
	Next    State
	Replies []Reply
}

// Stay keeps the current state and sends replies.
func Stay[D any](sess *Session[D], replies ...Reply) Step {
	return Step{Next: sess.State, Replies: replies}
}

// Action handles one event for one session. It may mutate sess.Draft.
type Action[D any] func(ctx context.Context, sess *Session[D], ev Event) Step

// Transition binds an action to (state, event kind, token).
// From may be StateAny; an empty Token matches any token of that kind.
type Transition[D any] struct {
	From  State
	On    Kind
	Token string
	Do    Action[D]
}

type transitionKey struct {
	from  State
	on    Kind
	token string
}

// Machine dispatches events through an explicit transition table.
// Events of one user are processed one at a time; different users run in parallel.
type Machine[D any] struct {
	name     string
	store    Store[D]
	table    map[transitionKey]Action[D]
	fallback Action[D]
	locks    userLocks
	now      func() time.Time
}

// MachineOptions configures NewMachine.
type MachineOptions[D any] struct {
	// Name scopes log lines, e.g. "relay".
	Name  string
	Store Store[D]
	// Fallback handles events no transition matches; nil ignores them.
	Fallback Action[D]
	Now      func() time.Time
}

// NewMachine validates the table and builds a Machine. Duplicate or
// incomplete transitions are rejected so an ambiguous table cannot be built.
func NewMachine[D any](opts MachineOptions[D], transitions ...Transition[D]) (*Machine[D], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("state: machine %q has no store", opts.Name)
	}
	m := &Machine[D]{
		name:     opts.Name,
		store:    opts.Store,
		table:    make(map[transitionKey]Action[D], len(transitions)),
		fallback: opts.Fallback,
		locks:    userLocks{m: make(map[int64]*userLock)},
		now:      opts.Now,
	}
	if m.now == nil {
		m.now = time.Now
	}
	for _, t := range transitions {
		if t.From == "" || t.On == "" || t.Do == nil {
			return nil, fmt.Errorf("state: machine %q: incomplete transition %s/%s/%q", opts.Name, t.From, t.On, t.Token)
		}
		key := transitionKey{from: t.From, on: t.On, token: t.Token}
		if _, dup := m.table[key]; dup {
			return nil, fmt.Errorf("state: machine %q: duplicate transition %s/%s/%q", opts.Name, t.From, t.On, t.Token)
		}
		m.table[key] = t.Do
	}
	return m, nil
}

// lookup prefers the exact state over StateAny and an exact token over the wildcard.
func (m *Machine[D]) lookup(st State, ev Event) Action[D] {
	for _, key := range []transitionKey{
		{from: st, on: ev.Kind, token: ev.Token},
		{from: st, on: ev.Kind},
		{from: StateAny, on: ev.Kind, token: ev.Token},
		{from: StateAny, on: ev.Kind},
	} {
		if act, ok := m.table[key]; ok {
			return act
		}
	}
	return m.fallback
}

// Dispatch runs the matching action and persists the resulting session.
func (m *Machine[D]) Dispatch(ctx context.Context, ev Event) []Reply {
	unlock := m.locks.lock(ev.UserID)
	defer unlock()

	sess := m.store.Get(ev.UserID)
	current := sess.State
	act := m.lookup(current, ev)
	if act == nil {
		logger.Debug(ctx, m.name, "fsm.ignored",
			slog.String("state", string(current)),
			slog.String("kind", string(ev.Kind)),
		)
		return nil
	}

	step := act(ctx, &sess, ev)
	if step.Next == "" {
		step.Next = current
	}
	if step.Next == StateIdle {
		m.store.Clear(ev.UserID)
	} else {
		sess.State = step.Next
		sess.UpdatedAt = m.now()
		m.store.Put(ev.UserID, sess)
	}

	logger.Debug(ctx, m.name, "fsm.dispatch",
		slog.String("status", "ok"),
		slog.String("state", string(current)),
		slog.String("next_state", string(step.Next)),
		slog.String("kind", string(ev.Kind)),
		slog.Int("messages", len(step.Replies)),
	)
	return step.Replies
}

// Session returns a copy of the user's current session.
func (m *Machine[D]) Session(userID int64) Session[D] {
	return m.store.Get(userID)
}

// InProgress reports whether the user currently has an active FSM state.
func (m *Machine[D]) InProgress(userID int64) bool {
	return m.store.Get(userID).State != StateIdle
}

// Sessions reports the number of live sessions.
func (m *Machine[D]) Sessions() int {
	return m.store.Len()
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks is a keyed mutex; entries are dropped once nobody holds or waits on them.
type userLocks struct {
	mu sync.Mutex
	m  map[int64]*userLock
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.m[userID]
	if !ok {
		ul = &userLock{}
		l.m[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}
