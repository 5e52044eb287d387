package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ThakurMayank5/skribbl-rooms/internal/config"
	"github.com/ThakurMayank5/skribbl-rooms/internal/game"
)

type Server struct {
	hub      *Hub
	session  *game.Session
	origins  []string
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, session *game.Session, origins []string) *Server {
	s := &Server{hub: hub, session: session, origins: origins}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if slices.Contains(s.origins, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.origins, origin)
}

func (s *Server) wsHandler(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		username = "Anonymous"
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("upgrade error")
		return
	}

	client := NewClient(game.ConnID(uuid.New().String()), username, conn)
	s.hub.Register(client)
	defer func() {
		s.session.Disconnect(client.ID)
		s.hub.Unregister(client.ID)
	}()

	go client.writePump()
	client.readPump(s.handleMessage)
}

func (s *Server) handleMessage(client *Client, msg Message) {
	var err error

	switch msg.Type {
	case MsgCreateRoom:
		var data CreateRoomData
		if !decode(client, msg, &data) {
			return
		}
		_, err = s.session.CreateRoom(client.ID, s.displayName(client, data.Username))

	case MsgJoinRoom:
		var data JoinRoomData
		if !decode(client, msg, &data) {
			return
		}
		err = s.session.JoinRoom(client.ID, data.RoomID, s.displayName(client, data.Username))

	case MsgLeaveRoom:
		var data RoomRef
		if !decode(client, msg, &data) {
			return
		}
		err = s.session.Leave(client.ID, data.RoomID)

	case MsgSelectWord:
		var data SelectWordData
		if !decode(client, msg, &data) {
			return
		}
		err = s.session.SelectWord(client.ID, data.RoomID, data.Word)

	case MsgDraw:
		var data DrawData
		if !decode(client, msg, &data) {
			return
		}
		err = s.session.Draw(client.ID, data.RoomID, data.Data)

	case MsgClearCanvas:
		var data RoomRef
		if !decode(client, msg, &data) {
			return
		}
		err = s.session.ClearCanvas(client.ID, data.RoomID)

	case MsgChat:
		var data ChatMessage
		if !decode(client, msg, &data) {
			return
		}
		err = s.session.Chat(client.ID, data.RoomID, data.Username, data.Message)

	default:
		log.Debug().Str("conn", string(client.ID)).Str("type", msg.Type).Msg("unknown message type")
		return
	}

	if err != nil {
		s.report(client, msg.Type, err)
	}
}

// report surfaces the errors an actor can act on and drops the rest. A
// missing room is only news to someone trying to join it.
func (s *Server) report(client *Client, msgType string, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound) && msgType == MsgJoinRoom:
		s.hub.Deliver([]game.ConnID{client.ID}, game.ErrorEvent("Room does not exist"))
	case errors.Is(err, game.ErrWordsExhausted):
		log.Error().Err(err).Str("conn", string(client.ID)).Msg("❌ No words left to offer")
		s.hub.Deliver([]game.ConnID{client.ID}, game.ErrorEvent("No words available, the game cannot start"))
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrIllegalAction),
		errors.Is(err, game.ErrRateLimited), errors.Is(err, game.ErrNotInRoom):
		log.Debug().Err(err).Str("conn", string(client.ID)).Str("type", msgType).Msg("dropped")
	default:
		log.Warn().Err(err).Str("conn", string(client.ID)).Str("type", msgType).Msg("⚠️ Unexpected error")
	}
}

func (s *Server) displayName(client *Client, requested string) string {
	if requested != "" {
		return requested
	}
	return client.Username
}

func decode(client *Client, msg Message, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		log.Debug().Err(err).Str("conn", string(client.ID)).Str("type", msg.Type).Msg("unmarshal error")
		return false
	}
	return true
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.LoggerWithWriter(os.Stdout))

	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": s.session.Rooms(), "clients": s.hub.Len()})
	})

	// WebSocket route
	router.GET("/ws", s.wsHandler)

	return router
}

func loadWords(cfg config.Config) (*game.ListProvider, error) {
	words := game.DefaultWords
	if cfg.WordsFile != "" {
		f, err := os.Open(cfg.WordsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if words, err = game.ReadWords(f); err != nil {
			return nil, err
		}
	}
	return game.NewListProvider(words), nil
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	words, err := loadWords(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("Failed to load words")
	}
	if words.Len() < cfg.WordChoices {
		log.Fatal().Int("words", words.Len()).Int("choices", cfg.WordChoices).Msg("Word list is smaller than the number of choices")
	}

	hub := NewHub()
	session := game.NewSession(game.Config{
		RoundSeconds:  cfg.RoundSeconds,
		WordChoices:   cfg.WordChoices,
		GuessCooldown: cfg.GuessCooldown,
	}, hub, words)

	router := NewServer(hub, session, cfg.AllowedOrigins).setupRouter()

	log.Info().Str("port", cfg.Port).Msg("🚀 Starting server")

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
