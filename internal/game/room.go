package game

import (
	"sync"

	"golang.org/x/time/rate"
)

type RoundState int

const (
	Idle RoundState = iota
	Selecting
	Active
	Resolving
)

func (s RoundState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Active:
		return "active"
	case Resolving:
		return "resolving"
	}
	return "unknown"
}

type Participant struct {
	Conn  ConnID
	Name  string
	Score int
}

// Room is one game session. Every field is guarded by mu; the helpers
// below expect the caller to hold it.
type Room struct {
	mu sync.Mutex

	id           string
	participants []*Participant
	drawer       ConnID
	// vacated is the rotation slot left by a drawer who departed
	// mid-turn, -1 otherwise.
	vacated int

	state      RoundState
	word       string
	candidates []string
	remaining  int
	generation uint64
	timer      *roundTimer

	correct  map[ConnID]struct{}
	limiters map[ConnID]*rate.Limiter

	closed bool
}

func newRoom(id string) *Room {
	return &Room{
		id:       id,
		vacated:  -1,
		state:    Idle,
		correct:  make(map[ConnID]struct{}),
		limiters: make(map[ConnID]*rate.Limiter),
	}
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) indexOf(conn ConnID) int {
	if conn == "" {
		return -1
	}
	for i, p := range r.participants {
		if p.Conn == conn {
			return i
		}
	}
	return -1
}

func (r *Room) participant(conn ConnID) *Participant {
	if i := r.indexOf(conn); i >= 0 {
		return r.participants[i]
	}
	return nil
}

func (r *Room) isDrawer(conn ConnID) bool {
	return r.drawer != "" && r.drawer == conn
}

func (r *Room) members() []ConnID {
	out := make([]ConnID, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p.Conn)
	}
	return out
}

func (r *Room) membersExcept(conn ConnID) []ConnID {
	out := make([]ConnID, 0, len(r.participants))
	for _, p := range r.participants {
		if p.Conn != conn {
			out = append(out, p.Conn)
		}
	}
	return out
}

func (r *Room) snapshot() RoomData {
	players := make([]PlayerData, 0, len(r.participants))
	for _, p := range r.participants {
		players = append(players, PlayerData{ID: p.Conn, Name: p.Name, Score: p.Score})
	}
	return RoomData{Players: players, Drawer: r.drawer}
}

// removeParticipant drops conn from the rotation along with its per-round
// bookkeeping. A departing drawer leaves its slot in vacated so rotation
// can continue from the member that took its place.
func (r *Room) removeParticipant(conn ConnID) (p *Participant, wasDrawer bool) {
	i := r.indexOf(conn)
	if i < 0 {
		return nil, false
	}
	p = r.participants[i]
	r.participants = append(r.participants[:i], r.participants[i+1:]...)
	delete(r.correct, conn)
	delete(r.limiters, conn)

	if r.isDrawer(conn) {
		r.drawer = ""
		r.vacated = i
		return p, true
	}
	return p, false
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// reset cancels any turn in progress and returns the room to Idle.
func (r *Room) reset() {
	r.stopTimer()
	r.state = Idle
	r.drawer = ""
	r.vacated = -1
	r.word = ""
	r.candidates = nil
	r.remaining = 0
	clear(r.correct)
	clear(r.limiters)
}
