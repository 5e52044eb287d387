package main

import "encoding/json"

// Inbound event types.
const (
	MsgCreateRoom  = "create-room"
	MsgJoinRoom    = "join-room"
	MsgLeaveRoom   = "leave-room"
	MsgSelectWord  = "select-word"
	MsgDraw        = "draw"
	MsgClearCanvas = "clear-canvas"
	MsgChat        = "chat-message"
)

// Message is the envelope of every inbound frame.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type CreateRoomData struct {
	Username string `json:"username"`
}

type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type RoomRef struct {
	RoomID string `json:"roomId"`
}

type SelectWordData struct {
	RoomID string `json:"roomId"`
	Word   string `json:"word"`
}

type DrawData struct {
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

type ChatMessage struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Message  string `json:"message"`
}
