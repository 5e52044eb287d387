package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThakurMayank5/skribbl-rooms/internal/game"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := NewHub()
	session := game.NewSession(game.DefaultConfig(), hub, game.NewListProvider([]string{"apple", "car", "house"}))
	ts := httptest.NewServer(NewServer(hub, session, []string{"*"}).setupRouter())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, username string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?username=" + username
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Type: typ, Data: raw}))
}

// expect skips frames until one of type typ arrives and decodes its data.
func expect(t *testing.T, conn *websocket.Conn, typ string, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %s", typ)
		if f.Type != typ {
			continue
		}
		if v != nil {
			require.NoError(t, json.Unmarshal(f.Data, v))
		}
		return
	}
}

// expectChat skips frames until a chat line containing substr arrives.
func expectChat(t *testing.T, conn *websocket.Conn, substr string) game.ChatData {
	t.Helper()
	for {
		var chat game.ChatData
		expect(t, conn, game.EventChatMessage, &chat)
		if strings.Contains(chat.Message, substr) {
			return chat
		}
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestJoinUnknownRoom(t *testing.T) {
	ts := newTestServer(t)
	bob := dial(t, ts, "bob")

	send(t, bob, MsgJoinRoom, JoinRoomData{RoomID: "nope", Username: "bob"})

	var e game.ErrorData
	expect(t, bob, game.EventError, &e)
	assert.Equal(t, "Room does not exist", e.Text)
}

func TestActionsOnMissingRoomAreSilent(t *testing.T) {
	ts := newTestServer(t)
	bob := dial(t, ts, "bob")

	send(t, bob, MsgDraw, DrawData{RoomID: "gone", Data: json.RawMessage(`{"x":1}`)})
	send(t, bob, MsgChat, ChatMessage{RoomID: "gone", Username: "bob", Message: "hi"})
	send(t, bob, MsgClearCanvas, RoomRef{RoomID: "gone"})
	send(t, bob, MsgCreateRoom, CreateRoomData{Username: "bob"})

	// Frames arrive in request order, so anything ahead of room-created
	// belongs to the three actions above.
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f frame
		require.NoError(t, bob.ReadJSON(&f))
		require.NotEqual(t, game.EventError, f.Type, "unexpected error frame: %s", f.Data)
		if f.Type == game.EventRoomCreated {
			break
		}
	}

	send(t, bob, MsgJoinRoom, JoinRoomData{RoomID: "gone", Username: "bob"})
	var e game.ErrorData
	expect(t, bob, game.EventError, &e)
	assert.Equal(t, "Room does not exist", e.Text)
}

func TestGameFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts, "alice")
	bob := dial(t, ts, "bob")

	send(t, alice, MsgCreateRoom, CreateRoomData{Username: "alice"})
	var created game.RoomCreatedData
	expect(t, alice, game.EventRoomCreated, &created)
	require.NotEmpty(t, created.RoomID)

	send(t, bob, MsgJoinRoom, JoinRoomData{RoomID: created.RoomID})

	var options game.WordOptionsData
	expect(t, alice, game.EventWordOptions, &options)
	require.Len(t, options.Words, 3)
	word := options.Words[0]

	send(t, alice, MsgSelectWord, SelectWordData{RoomID: created.RoomID, Word: word})

	var own, masked game.WordSelectedData
	expect(t, alice, game.EventWordSelected, &own)
	expect(t, bob, game.EventWordSelected, &masked)
	assert.Equal(t, word, own.Word)
	assert.Len(t, strings.Fields(masked.Word), len(word))

	var timer game.TimerData
	expect(t, bob, game.EventTimerUpdate, &timer)
	assert.Equal(t, 30, timer.SecondsRemaining)

	send(t, alice, MsgDraw, DrawData{RoomID: created.RoomID, Data: json.RawMessage(`{"x":10,"y":20}`)})
	var stroke game.DrawData
	expect(t, bob, game.EventDraw, &stroke)
	assert.JSONEq(t, `{"x":10,"y":20}`, string(stroke.Data))

	send(t, bob, MsgChat, ChatMessage{RoomID: created.RoomID, Username: "bob", Message: " " + strings.ToUpper(word) + " "})

	chat := expectChat(t, alice, "guessed the word")
	assert.Equal(t, game.SystemName, chat.Username)
	assert.Contains(t, chat.Message, "bob guessed the word!")
	expectChat(t, alice, "Everyone guessed it! Word was: "+word)

	// Turn passes to bob.
	expect(t, bob, game.EventWordOptions, &options)
	assert.Len(t, options.Words, 3)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts, "alice")
	bob := dial(t, ts, "bob")

	send(t, alice, MsgCreateRoom, CreateRoomData{})
	var created game.RoomCreatedData
	expect(t, alice, game.EventRoomCreated, &created)
	send(t, bob, MsgJoinRoom, JoinRoomData{RoomID: created.RoomID, Username: "bob"})
	expect(t, alice, game.EventWordOptions, nil)

	require.NoError(t, alice.Close())

	expectChat(t, bob, "alice left the room")

	var data game.RoomData
	expect(t, bob, game.EventRoomData, &data)
	require.Len(t, data.Players, 1)
	assert.Equal(t, "bob", data.Players[0].Name)
	assert.Empty(t, data.Drawer)

	resp, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Rooms []game.RoomSummary `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []game.RoomSummary{{ID: created.RoomID, Players: 1, State: "idle"}}, body.Rooms)
}
