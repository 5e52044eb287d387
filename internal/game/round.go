package game

import (
	"github.com/rs/zerolog/log"
)

// ResolveReason names the trigger that ended a round.
type ResolveReason string

const (
	ReasonTimeout    ResolveReason = "timeout"
	ReasonAllCorrect ResolveReason = "all-correct"
	ReasonDrawerLeft ResolveReason = "drawer-left"
)

// startRound makes word guessable and starts the countdown. Expects
// room.mu held and the room in Selecting.
func (s *Session) startRound(room *Room, word string) {
	room.stopTimer()

	room.word = word
	room.candidates = nil
	room.remaining = s.cfg.RoundSeconds
	room.state = Active
	room.generation++
	clear(room.correct)
	clear(room.limiters)

	log.Info().Str("room", room.id).Uint64("round", room.generation).Int("seconds", room.remaining).Msg("⏱️ Round started")

	s.out.Deliver(room.members(), Event{Type: EventTimerUpdate, Data: TimerData{SecondsRemaining: room.remaining}})
	room.timer = s.startTimer(room)
}

// tryResolve ends the active round and rotates the drawer. Only the first
// trigger for a round does anything; it reports whether this call did.
// Expects room.mu held.
func (s *Session) tryResolve(room *Room, reason ResolveReason) bool {
	if room.state != Active {
		return false
	}
	room.state = Resolving
	room.stopTimer()

	word := room.word
	log.Info().Str("room", room.id).Str("reason", string(reason)).Uint64("round", room.generation).Msg("🏁 Round resolved")

	switch reason {
	case ReasonAllCorrect:
		s.out.Deliver(room.members(), systemEvent("Everyone guessed it! Word was: "+word))
	case ReasonDrawerLeft:
		s.out.Deliver(room.members(), systemEvent("The drawer left! Word was: "+word))
	default:
		s.out.Deliver(room.members(), systemEvent("Time's up! Word was: "+word))
	}

	room.word = ""
	room.remaining = 0
	clear(room.correct)
	room.state = Idle

	if err := s.rotateDrawer(room); err != nil {
		log.Error().Err(err).Str("room", room.id).Msg("❌ Rotation failed")
	}
	return true
}
