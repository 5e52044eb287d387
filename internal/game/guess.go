package game

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// evaluateGuess handles one chat line. Outside an active round it is plain
// chat; during one it is a guess. Expects room.mu held.
func (s *Session) evaluateGuess(room *Room, sender *Participant, message string) error {
	if room.state != Active || room.word == "" {
		s.out.Deliver(room.members(), chatEvent(sender.Name, message))
		return nil
	}

	if room.isDrawer(sender.Conn) {
		return fmt.Errorf("%w: drawer cannot guess", ErrIllegalAction)
	}

	if !s.limiter(room, sender.Conn).AllowN(s.now(), 1) {
		return ErrRateLimited
	}

	if !strings.EqualFold(strings.TrimSpace(message), strings.TrimSpace(room.word)) {
		s.out.Deliver(room.members(), chatEvent(sender.Name, message))
		return nil
	}

	if _, done := room.correct[sender.Conn]; done {
		return fmt.Errorf("%w: already guessed", ErrIllegalAction)
	}
	drawer := room.participant(room.drawer)
	if drawer == nil {
		return fmt.Errorf("%w: no drawer", ErrIllegalAction)
	}

	guesserPoints := room.remaining * 2
	drawerPoints := room.remaining
	sender.Score += guesserPoints
	drawer.Score += drawerPoints
	room.correct[sender.Conn] = struct{}{}

	log.Info().Str("room", room.id).Str("conn", string(sender.Conn)).Int("points", guesserPoints).Msg("🎉 Correct guess")

	s.out.Deliver(room.members(), systemEvent(fmt.Sprintf("%s guessed the word! +%d pts 🎉", sender.Name, guesserPoints)))
	s.broadcastRoomData(room)

	if s.allGuessed(room) {
		s.tryResolve(room, ReasonAllCorrect)
	}
	return nil
}

// allGuessed reports whether every non-drawer has guessed this round.
func (s *Session) allGuessed(room *Room) bool {
	n := len(room.participants)
	return n >= 2 && len(room.correct) >= n-1
}

func (s *Session) limiter(room *Room, conn ConnID) *rate.Limiter {
	l, ok := room.limiters[conn]
	if !ok {
		limit := rate.Inf
		if s.cfg.GuessCooldown > 0 {
			limit = rate.Every(s.cfg.GuessCooldown)
		}
		l = rate.NewLimiter(limit, 1)
		room.limiters[conn] = l
	}
	return l
}
