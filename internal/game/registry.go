package game

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RoomSummary describes a room for the server list.
type RoomSummary struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	State   string `json:"state"`
}

// DepartureFunc is called with the room still locked after a participant
// has been removed from a room that is not yet empty.
type DepartureFunc func(room *Room, p *Participant, wasDrawer bool)

// Registry owns the room table. Lock order is room before registry: code
// holding a Room's mu may take r.mu, never the other way around.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[string]*Room
	memberships map[ConnID]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:       make(map[string]*Room),
		memberships: make(map[ConnID]map[string]struct{}),
	}
}

// NewRoomID returns a short random room code.
func NewRoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (r *Registry) Create(id string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; ok {
		return nil, ErrAlreadyExists
	}
	room := newRoom(id)
	r.rooms[id] = room
	log.Info().Str("room", id).Int("rooms", len(r.rooms)).Msg("🏠 Room created")
	return room, nil
}

func (r *Registry) Get(id string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Join appends p to the room's rotation and returns the room locked; the
// caller must unlock it.
func (r *Registry) Join(id string, p *Participant) (*Room, error) {
	room, ok := r.Get(id)
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if room.indexOf(p.Conn) >= 0 {
		room.mu.Unlock()
		return nil, ErrIllegalAction
	}
	room.participants = append(room.participants, p)

	r.mu.Lock()
	if r.memberships[p.Conn] == nil {
		r.memberships[p.Conn] = make(map[string]struct{})
	}
	r.memberships[p.Conn][id] = struct{}{}
	r.mu.Unlock()

	return room, nil
}

// Remove takes conn out of every room it belongs to.
func (r *Registry) Remove(conn ConnID, onDeparture DepartureFunc) {
	r.mu.RLock()
	ids := slices.Sorted(maps.Keys(r.memberships[conn]))
	r.mu.RUnlock()

	for _, id := range ids {
		if err := r.RemoveFrom(id, conn, onDeparture); err != nil {
			log.Debug().Err(err).Str("room", id).Str("conn", string(conn)).Msg("stale membership")
		}
	}
}

// RemoveFrom takes conn out of a single room. The room is destroyed, along
// with its timer, the moment it has no participants left.
func (r *Registry) RemoveFrom(id string, conn ConnID, onDeparture DepartureFunc) error {
	room, ok := r.Get(id)
	if !ok {
		r.untrack(conn, id)
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	r.untrack(conn, id)
	p, wasDrawer := room.removeParticipant(conn)
	if p == nil {
		return ErrNotInRoom
	}

	if len(room.participants) == 0 {
		r.destroy(room)
		return nil
	}
	if onDeparture != nil {
		onDeparture(room, p, wasDrawer)
	}
	return nil
}

// Summaries lists every live room ordered by identifier.
func (r *Registry) Summaries() []RoomSummary {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		if !room.closed {
			out = append(out, RoomSummary{ID: room.id, Players: len(room.participants), State: room.state.String()})
		}
		room.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b RoomSummary) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// destroy expects room.mu to be held.
func (r *Registry) destroy(room *Room) {
	room.reset()
	room.closed = true

	r.mu.Lock()
	if r.rooms[room.id] == room {
		delete(r.rooms, room.id)
	}
	left := len(r.rooms)
	r.mu.Unlock()

	log.Info().Str("room", room.id).Int("rooms", left).Msg("🗑️ Room destroyed")
}

func (r *Registry) untrack(conn ConnID, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.memberships[conn]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.memberships, conn)
		}
	}
}
