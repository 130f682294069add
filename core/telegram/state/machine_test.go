package state

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type draft struct {
	Words []string
}

const (
	stateCollecting State = "collecting"
	stateOther      State = "other"
)

func newTestMachine(t *testing.T, transitions ...Transition[draft]) *Machine[draft] {
	t.Helper()
	store, err := NewMemoryStore[draft](MemoryOptions{Capacity: 100, TTL: time.Hour})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(store.Close)
	m, err := NewMachine(MachineOptions[draft]{
		Name:  "test",
		Store: store,
		Fallback: func(_ context.Context, sess *Session[draft], _ Event) Step {
			return Stay(sess, Text("fallback"))
		},
	}, transitions...)
	if err != nil {
		t.Fatalf("machine: %v", err)
	}
	return m
}

func reply(text string, next State) Action[draft] {
	return func(_ context.Context, _ *Session[draft], _ Event) Step {
		return Step{Next: next, Replies: []Reply{Text(text)}}
	}
}

func texts(replies []Reply) []string {
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = r.Text
	}
	return out
}

func TestNewMachineRejectsDuplicates(t *testing.T) {
	store, _ := NewMemoryStore[draft](MemoryOptions{Capacity: 10, TTL: time.Minute})
	defer store.Close()
	_, err := NewMachine(MachineOptions[draft]{Name: "dup", Store: store},
		Transition[draft]{From: StateIdle, On: KindText, Token: "x", Do: reply("a", StateIdle)},
		Transition[draft]{From: StateIdle, On: KindText, Token: "x", Do: reply("b", StateIdle)},
	)
	if err == nil {
		t.Fatal("expected duplicate transition error")
	}
}

func TestNewMachineRejectsIncomplete(t *testing.T) {
	store, _ := NewMemoryStore[draft](MemoryOptions{Capacity: 10, TTL: time.Minute})
	defer store.Close()
	cases := []Transition[draft]{
		{On: KindText, Do: reply("a", StateIdle)},
		{From: StateIdle, Do: reply("a", StateIdle)},
		{From: StateIdle, On: KindText},
	}
	for i, tr := range cases {
		if _, err := NewMachine(MachineOptions[draft]{Store: store}, tr); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if _, err := NewMachine[draft](MachineOptions[draft]{}); err == nil {
		t.Error("expected error without store")
	}
}

func TestLookupPrecedence(t *testing.T) {
	m := newTestMachine(t,
		Transition[draft]{From: StateAny, On: KindText, Do: reply("any-any", "")},
		Transition[draft]{From: StateAny, On: KindText, Token: "hi", Do: reply("any-hi", "")},
		Transition[draft]{From: StateIdle, On: KindText, Do: reply("idle-any", "")},
		Transition[draft]{From: StateIdle, On: KindText, Token: "hi", Do: reply("idle-hi", "")},
	)
	cases := []struct {
		token string
		want  string
	}{
		{"hi", "idle-hi"},
		{"other", "idle-any"},
	}
	for _, tc := range cases {
		got := texts(m.Dispatch(context.Background(), Event{Kind: KindText, UserID: 1, Token: tc.token}))
		if len(got) != 1 || got[0] != tc.want {
			t.Errorf("token %q: got %v, want %s", tc.token, got, tc.want)
		}
	}

	// Command events have no transitions and hit the fallback.
	got := texts(m.Dispatch(context.Background(), Event{Kind: KindCommand, UserID: 1, Token: "/x"}))
	if len(got) != 1 || got[0] != "fallback" {
		t.Errorf("fallback: got %v", got)
	}
}

func TestLookupWildcardStateWhenNoExact(t *testing.T) {
	m := newTestMachine(t,
		Transition[draft]{From: StateIdle, On: KindText, Token: "go", Do: reply("go", stateOther)},
		Transition[draft]{From: StateAny, On: KindText, Token: "hi", Do: reply("any-hi", "")},
		Transition[draft]{From: StateAny, On: KindText, Do: reply("any-any", "")},
	)
	ctx := context.Background()
	m.Dispatch(ctx, Event{Kind: KindText, UserID: 1, Token: "go"})
	if got := texts(m.Dispatch(ctx, Event{Kind: KindText, UserID: 1, Token: "hi"})); got[0] != "any-hi" {
		t.Fatalf("got %v", got)
	}
	if got := texts(m.Dispatch(ctx, Event{Kind: KindText, UserID: 1, Token: "zzz"})); got[0] != "any-any" {
		t.Fatalf("got %v", got)
	}
}

func TestDispatchPersistsDraftAndClearsOnIdle(t *testing.T) {
	collect := func(_ context.Context, sess *Session[draft], ev Event) Step {
		sess.Draft.Words = append(sess.Draft.Words, ev.Text)
		return Step{Next: stateCollecting}
	}
	done := func(_ context.Context, sess *Session[draft], _ Event) Step {
		return Step{Next: StateIdle, Replies: []Reply{Text(joinWords(sess.Draft.Words))}}
	}
	m := newTestMachine(t,
		Transition[draft]{From: StateAny, On: KindText, Do: collect},
		Transition[draft]{From: stateCollecting, On: KindCommand, Token: "/done", Do: done},
	)
	ctx := context.Background()

	m.Dispatch(ctx, Event{Kind: KindText, UserID: 7, Text: "a"})
	m.Dispatch(ctx, Event{Kind: KindText, UserID: 7, Text: "b"})
	if !m.InProgress(7) {
		t.Fatal("expected session in progress")
	}
	sess := m.Session(7)
	if sess.State != stateCollecting || len(sess.Draft.Words) != 2 || sess.UpdatedAt.IsZero() {
		t.Fatalf("session = %+v", sess)
	}
	if m.InProgress(8) {
		t.Fatal("other user must be idle")
	}

	got := texts(m.Dispatch(ctx, Event{Kind: KindCommand, UserID: 7, Token: "/done"}))
	if len(got) != 1 || got[0] != "a b" {
		t.Fatalf("got %v", got)
	}
	if m.InProgress(7) || m.Sessions() != 0 {
		t.Fatalf("session should be cleared, sessions=%d", m.Sessions())
	}
	if words := m.Session(7).Draft.Words; len(words) != 0 {
		t.Fatalf("draft leaked: %v", words)
	}
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}

func TestDispatchIgnoresUnmatchedWithoutFallback(t *testing.T) {
	store, _ := NewMemoryStore[draft](MemoryOptions{Capacity: 10, TTL: time.Minute})
	defer store.Close()
	m, err := NewMachine(MachineOptions[draft]{Store: store},
		Transition[draft]{From: stateOther, On: KindChoice, Token: "ok", Do: reply("ok", StateIdle)},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Dispatch(context.Background(), Event{Kind: KindChoice, UserID: 1, Token: "ok"}); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestDispatchSerializesPerUser(t *testing.T) {
	var active, maxActive atomic.Int32
	slow := func(_ context.Context, sess *Session[draft], ev Event) Step {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		sess.Draft.Words = append(sess.Draft.Words, ev.Text)
		active.Add(-1)
		return Step{Next: stateCollecting}
	}
	m := newTestMachine(t, Transition[draft]{From: StateAny, On: KindText, Do: slow})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Dispatch(context.Background(), Event{Kind: KindText, UserID: 5, Text: "w"})
		}()
	}
	wg.Wait()

	if maxActive.Load() != 1 {
		t.Fatalf("max concurrent actions for one user = %d, want 1", maxActive.Load())
	}
	if n := len(m.Session(5).Draft.Words); n != 20 {
		t.Fatalf("words = %d, want 20 (lost update)", n)
	}
	if len(m.locks.m) != 0 {
		t.Fatalf("lock entries leaked: %d", len(m.locks.m))
	}
}
