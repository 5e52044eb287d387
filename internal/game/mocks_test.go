package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Broadcaster ---

type delivery struct {
	To    []ConnID
	Event Event
}

type recorder struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (r *recorder) Deliver(to []ConnID, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, delivery{To: append([]ConnID(nil), to...), Event: ev})
}

func (r *recorder) all() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]delivery(nil), r.deliveries...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}

func (r *recorder) ofType(typ string) []delivery {
	var out []delivery
	for _, d := range r.all() {
		if d.Event.Type == typ {
			out = append(out, d)
		}
	}
	return out
}

func (r *recorder) chats() []ChatData {
	var out []ChatData
	for _, d := range r.ofType(EventChatMessage) {
		out = append(out, d.Event.Data.(ChatData))
	}
	return out
}

// --- WordProvider ---

type MockWordProvider struct {
	mock.Mock
}

func (m *MockWordProvider) Words(count int) ([]string, error) {
	args := m.Called(count)
	words, _ := args.Get(0).([]string)
	return words, args.Error(1)
}

// --- TickerFactory ---

type manualTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type manualTickers struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (f *manualTickers) NewTicker(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *manualTickers) last(t *testing.T) *manualTicker {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.tickers, "no ticker was created")
	return f.tickers[len(f.tickers)-1]
}

// --- Clock ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- fixture ---

type fixture struct {
	session *Session
	out     *recorder
	words   *MockWordProvider
	tickers *manualTickers
	clock   *fakeClock
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	f := &fixture{
		out:     &recorder{},
		words:   &MockWordProvider{},
		tickers: &manualTickers{},
		clock:   newFakeClock(),
	}
	next := 0
	newID := func() string {
		if next < len(ids) {
			next++
			return ids[next-1]
		}
		return NewRoomID()
	}
	f.session = NewSession(DefaultConfig(), f.out, f.words,
		WithTickers(f.tickers), WithClock(f.clock.Now), WithRoomIDs(newID))
	return f
}

func (f *fixture) room(t *testing.T, id string) *Room {
	t.Helper()
	room, ok := f.session.rooms.Get(id)
	require.True(t, ok, "room %s not found", id)
	return room
}

// inspect runs fn with the room locked.
func (f *fixture) inspect(t *testing.T, id string, fn func(r *Room)) {
	t.Helper()
	room := f.room(t, id)
	room.mu.Lock()
	defer room.mu.Unlock()
	fn(room)
}

func (f *fixture) scores(t *testing.T, id string) map[ConnID]int {
	t.Helper()
	out := map[ConnID]int{}
	f.inspect(t, id, func(r *Room) {
		for _, p := range r.participants {
			out[p.Conn] = p.Score
		}
	})
	return out
}

func (f *fixture) tick(t *testing.T, id string) bool {
	t.Helper()
	room := f.room(t, id)
	room.mu.Lock()
	gen := room.generation
	room.mu.Unlock()
	return f.session.tick(room, gen)
}
