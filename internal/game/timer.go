package game

import (
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates the periodic tickers that drive round countdowns.
type TickerFactory interface {
	NewTicker(d time.Duration) Ticker
}

type systemTickers struct{}

type systemTicker struct {
	t *time.Ticker
}

func (t systemTicker) C() <-chan time.Time { return t.t.C }
func (t systemTicker) Stop()               { t.t.Stop() }

func (systemTickers) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

// SystemTickers is the wall-clock TickerFactory.
func SystemTickers() TickerFactory {
	return systemTickers{}
}

// roundTimer is the countdown task of one round. generation is the room's
// round counter at start; ticks carrying an older generation are ignored.
type roundTimer struct {
	generation uint64
	stop       chan struct{}
	once       sync.Once
}

// Stop is idempotent.
func (t *roundTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (s *Session) startTimer(room *Room) *roundTimer {
	t := &roundTimer{generation: room.generation, stop: make(chan struct{})}
	ticker := s.tickers.NewTicker(time.Second)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C():
				if !s.tick(room, t.generation) {
					return
				}
			}
		}
	}()

	return t
}

// tick applies one second of countdown. It reports whether the timer should
// keep running.
func (s *Session) tick(room *Room, generation uint64) bool {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.generation != generation || room.state != Active {
		return false
	}

	if room.remaining > 0 {
		room.remaining--
	}
	s.out.Deliver(room.members(), Event{Type: EventTimerUpdate, Data: TimerData{SecondsRemaining: room.remaining}})

	if room.remaining == 0 {
		s.tryResolve(room, ReasonTimeout)
		return false
	}
	return true
}
