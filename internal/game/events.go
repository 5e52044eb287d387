package game

import "encoding/json"

// ConnID is the opaque handle of one client connection.
type ConnID string

// SystemName is the username attached to generated chat announcements.
const SystemName = "SYSTEM"

const (
	EventRoomCreated  = "room-created"
	EventError        = "error-message"
	EventRoomData     = "room-data"
	EventWordOptions  = "word-options"
	EventWordSelected = "word-selected"
	EventDraw         = "draw"
	EventClearCanvas  = "clear-canvas"
	EventTimerUpdate  = "timer-update"
	EventChatMessage  = "chat-message"
)

// Event is one outbound frame. Data is marshalled as-is by the transport.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Broadcaster delivers events to connections. Deliver is called with the
// room locked and must not block.
type Broadcaster interface {
	Deliver(to []ConnID, ev Event)
}

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
}

type ErrorData struct {
	Text string `json:"text"`
}

type PlayerData struct {
	ID    ConnID `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type RoomData struct {
	Players []PlayerData `json:"players"`
	Drawer  ConnID       `json:"drawer,omitempty"`
}

type WordOptionsData struct {
	Words []string `json:"words"`
}

type WordSelectedData struct {
	Word string `json:"word"`
}

type DrawData struct {
	Data json.RawMessage `json:"data"`
}

type TimerData struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type ChatData struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

func chatEvent(username, message string) Event {
	return Event{Type: EventChatMessage, Data: ChatData{Username: username, Message: message}}
}

func systemEvent(message string) Event {
	return chatEvent(SystemName, message)
}

// ErrorEvent builds the rejection sent to a single actor.
func ErrorEvent(text string) Event {
	return Event{Type: EventError, Data: ErrorData{Text: text}}
}
