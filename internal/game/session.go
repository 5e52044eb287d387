package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultRoundSeconds  = 30
	DefaultWordChoices   = 3
	DefaultGuessCooldown = time.Second

	createAttempts = 5
)

type Config struct {
	RoundSeconds  int
	WordChoices   int
	GuessCooldown time.Duration
}

func DefaultConfig() Config {
	return Config{
		RoundSeconds:  DefaultRoundSeconds,
		WordChoices:   DefaultWordChoices,
		GuessCooldown: DefaultGuessCooldown,
	}
}

// Session binds participant actions to room state. Each action locks only
// the room it targets, so rooms progress independently.
type Session struct {
	cfg     Config
	rooms   *Registry
	out     Broadcaster
	words   WordProvider
	tickers TickerFactory
	now     func() time.Time
	newID   func() string
}

type Option func(*Session)

func WithTickers(f TickerFactory) Option {
	return func(s *Session) { s.tickers = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithRoomIDs(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

func NewSession(cfg Config, out Broadcaster, words WordProvider, opts ...Option) *Session {
	s := &Session{
		cfg:     cfg,
		rooms:   NewRegistry(),
		out:     out,
		words:   words,
		tickers: SystemTickers(),
		now:     time.Now,
		newID:   NewRoomID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Rooms() []RoomSummary {
	return s.rooms.Summaries()
}

// CreateRoom opens a new room with conn as its first participant and
// returns the room identifier.
func (s *Session) CreateRoom(conn ConnID, username string) (string, error) {
	var room *Room
	var err error
	for range createAttempts {
		room, err = s.rooms.Create(s.newID())
		if !errors.Is(err, ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}

	room, err = s.rooms.Join(room.id, &Participant{Conn: conn, Name: username})
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	defer room.mu.Unlock()

	log.Info().Str("room", room.id).Str("creator", username).Msg("👑 Room opened")

	s.out.Deliver([]ConnID{conn}, Event{Type: EventRoomCreated, Data: RoomCreatedData{RoomID: room.id}})
	s.broadcastRoomData(room)
	return room.id, nil
}

// JoinRoom adds conn to an existing room and starts the first turn once two
// participants are present.
func (s *Session) JoinRoom(conn ConnID, roomID, username string) error {
	room, err := s.rooms.Join(roomID, &Participant{Conn: conn, Name: username})
	if err != nil {
		return fmt.Errorf("join room %s: %w", roomID, err)
	}
	defer room.mu.Unlock()

	log.Info().Str("room", roomID).Str("username", username).Int("players", len(room.participants)).Msg("🔌 Player joined")

	s.out.Deliver(room.membersExcept(conn), systemEvent(username+" joined the room"))
	s.broadcastRoomData(room)

	if len(room.participants) >= 2 && room.drawer == "" {
		return s.startTurn(room)
	}
	return nil
}

func (s *Session) SelectWord(conn ConnID, roomID, word string) error {
	room, unlock, err := s.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer unlock()

	if room.state != Selecting || !room.isDrawer(conn) {
		return fmt.Errorf("%w: select word", ErrIllegalAction)
	}
	if !slices.Contains(room.candidates, word) {
		return fmt.Errorf("%w: %q was not offered", ErrIllegalAction, word)
	}

	s.out.Deliver([]ConnID{conn}, Event{Type: EventWordSelected, Data: WordSelectedData{Word: word}})
	s.out.Deliver(room.membersExcept(conn), Event{Type: EventWordSelected, Data: WordSelectedData{Word: maskWord(word)}})
	s.startRound(room, word)
	return nil
}

// Draw relays an opaque stroke payload from the drawer to everyone else.
func (s *Session) Draw(conn ConnID, roomID string, data json.RawMessage) error {
	room, unlock, err := s.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer unlock()

	if room.state != Active || !room.isDrawer(conn) {
		return fmt.Errorf("%w: draw", ErrIllegalAction)
	}
	s.out.Deliver(room.membersExcept(conn), Event{Type: EventDraw, Data: DrawData{Data: data}})
	return nil
}

func (s *Session) ClearCanvas(conn ConnID, roomID string) error {
	room, unlock, err := s.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer unlock()

	if !room.isDrawer(conn) {
		return fmt.Errorf("%w: clear canvas", ErrIllegalAction)
	}
	s.out.Deliver(room.membersExcept(conn), Event{Type: EventClearCanvas})
	return nil
}

// Chat submits a chat line, which counts as a guess while a round is active.
// The registered display name is used; username only fills in when the
// participant joined without one.
func (s *Session) Chat(conn ConnID, roomID, username, message string) error {
	room, unlock, err := s.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer unlock()

	sender := room.participant(conn)
	if sender == nil {
		return ErrNotInRoom
	}
	if sender.Name == "" {
		sender.Name = username
	}
	return s.evaluateGuess(room, sender, message)
}

// Leave removes conn from one room.
func (s *Session) Leave(conn ConnID, roomID string) error {
	return s.rooms.RemoveFrom(roomID, conn, s.handleDeparture)
}

// Disconnect removes conn from every room it is in.
func (s *Session) Disconnect(conn ConnID) {
	s.rooms.Remove(conn, s.handleDeparture)
}

// handleDeparture repairs turn state after a participant left a room that
// still has members. Runs with room.mu held.
func (s *Session) handleDeparture(room *Room, p *Participant, wasDrawer bool) {
	log.Info().Str("room", room.id).Str("username", p.Name).Bool("drawer", wasDrawer).Int("players", len(room.participants)).Msg("❌ Player left")

	s.out.Deliver(room.members(), systemEvent(p.Name+" left the room"))

	if len(room.participants) < 2 {
		if room.state != Idle {
			log.Info().Str("room", room.id).Msg("⏸️ Not enough players, turn cancelled")
		}
		room.reset()
		s.broadcastRoomData(room)
		return
	}

	var err error
	switch {
	case wasDrawer && room.state == Active:
		s.tryResolve(room, ReasonDrawerLeft)
	case wasDrawer:
		room.candidates = nil
		room.state = Idle
		err = s.rotateDrawer(room)
	case room.state == Active && s.allGuessed(room):
		s.tryResolve(room, ReasonAllCorrect)
	default:
		s.broadcastRoomData(room)
	}
	if err != nil {
		log.Error().Err(err).Str("room", room.id).Msg("❌ Rotation failed")
	}
}

func (s *Session) lockRoom(roomID string) (*Room, func(), error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return nil, nil, fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, nil, fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	}
	return room, room.mu.Unlock, nil
}
