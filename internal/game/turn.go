package game

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// startTurn offers word candidates to the drawer, assigning the first
// participant when no drawer is set. Expects room.mu held.
func (s *Session) startTurn(room *Room) error {
	if len(room.participants) == 0 {
		return nil
	}
	if room.drawer == "" {
		room.drawer = room.participants[0].Conn
	}
	room.vacated = -1

	words, err := s.words.Words(s.cfg.WordChoices)
	if err == nil && !distinct(words, s.cfg.WordChoices) {
		err = fmt.Errorf("%w: provider returned %v", ErrWordsExhausted, words)
	}
	if err != nil {
		log.Error().Err(err).Str("room", room.id).Msg("❌ Cannot start turn")
		room.reset()
		s.broadcastRoomData(room)
		return fmt.Errorf("start turn in room %s: %w", room.id, err)
	}

	room.candidates = words
	room.word = ""
	room.state = Selecting

	log.Info().Str("room", room.id).Str("drawer", string(room.drawer)).Msg("🎲 New turn started")

	s.broadcastRoomData(room)
	s.out.Deliver([]ConnID{room.drawer}, Event{Type: EventWordOptions, Data: WordOptionsData{Words: words}})
	return nil
}

// rotateDrawer hands the drawer role to the next participant in join
// order and starts their turn. Expects room.mu held.
func (s *Session) rotateDrawer(room *Room) error {
	n := len(room.participants)
	if n == 0 {
		room.reset()
		return nil
	}

	next := 0
	if i := room.indexOf(room.drawer); i >= 0 {
		next = (i + 1) % n
	} else if room.vacated >= 0 {
		next = room.vacated % n
	}
	room.drawer = room.participants[next].Conn

	s.out.Deliver(room.members(), Event{Type: EventClearCanvas})
	return s.startTurn(room)
}

func distinct(words []string, want int) bool {
	if len(words) != want {
		return false
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			return false
		}
		if _, dup := seen[w]; dup {
			return false
		}
		seen[w] = struct{}{}
	}
	return true
}

func (s *Session) broadcastRoomData(room *Room) {
	s.out.Deliver(room.members(), Event{Type: EventRoomData, Data: room.snapshot()})
}
