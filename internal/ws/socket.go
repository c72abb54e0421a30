package ws

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
	"talltales/internal/config"
	"talltales/internal/game"
)

// lobbyRoom is the socket.io room every connection joins on connect; it
// carries the global lobby-discovery broadcasts.
const lobbyRoom = "lobby"

type ConnCtx struct {
	Room     string
	Username string
}

type Server struct {
	Registry *game.Registry
	Rooms    *game.Directory

	mu      sync.Mutex
	members map[string]map[string]socketio.Conn // roomCode -> socketID -> Conn
	config  config.Config
}

func New(reg *game.Registry, rooms *game.Directory, cfg config.Config) *Server {
	return &Server{
		Registry: reg,
		Rooms:    rooms,
		members:  make(map[string]map[string]socketio.Conn),
		config:   cfg,
	}
}

// Mount attaches the Socket.IO server with all game handlers to the given
// Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		s.Join(lobbyRoom)
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		io.BroadcastToRoom("/", lobbyRoom, "message", "User has joined")
		return nil
	})

	// join-room
	io.OnEvent("/", "join-room", func(s socketio.Conn, payload struct {
		User game.Participant `json:"user"`
		Room string           `json:"room"`
	}) map[string]any {
		room, err := srv.Rooms.Get(payload.Room)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		p := srv.Registry.Register(s.ID(), payload.User)
		if err := room.Join(p); err != nil {
			// denial goes to the requester only; the room is untouched
			srv.Registry.Remove(s.ID())
			s.Emit("deny-room-access", map[string]any{"room": payload.Room, "message": "Game in progress"})
			log.Warn().Str("sid", s.ID()).Str("room", payload.Room).Msg("join denied: room in progress")
			return map[string]any{"error": "room_in_progress"}
		}
		s.SetContext(&ConnCtx{Room: payload.Room, Username: p.Username})
		s.Join(payload.Room)
		srv.addMember(payload.Room, s)
		log.Info().Str("sid", s.ID()).Str("room", payload.Room).Str("username", p.Username).Msg("join-room")
		io.BroadcastToRoom("/", lobbyRoom, "message", fmt.Sprintf("%s has joined %s", p.Username, payload.Room))
		srv.broadcastUsers(io, room)
		return map[string]any{"ok": true}
	})

	// change-host carries the client's full reordering of the member list,
	// used when the former host disconnects.
	io.OnEvent("/", "change-host", func(s socketio.Conn, users []game.Participant) map[string]any {
		code := srv.roomCode(s, users)
		room, err := srv.Rooms.Get(code)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		if err := room.ReplaceParticipants(users); err != nil {
			log.Warn().Str("sid", s.ID()).Str("room", code).Err(err).Msg("change-host rejected")
			return srv.err(s, "bad_snapshot", err.Error())
		}
		log.Info().Str("sid", s.ID()).Str("room", code).Msg("change-host")
		srv.broadcastUsers(io, room)
		return map[string]any{"ok": true}
	})

	// create-room
	io.OnEvent("/", "create-room", func(s socketio.Conn, payload struct {
		Room string `json:"room"`
	}) map[string]any {
		room, err := srv.Rooms.Create(payload.Room)
		if err != nil {
			return srv.err(s, "room_exists", "Room already exists")
		}
		log.Info().Str("sid", s.ID()).Str("room", room.Code).Msg("create-room")
		io.BroadcastToRoom("/", lobbyRoom, "created-room", map[string]any{
			"room":  room.Code,
			"rooms": srv.Rooms.Gates(),
		})
		return map[string]any{"room": room.Code}
	})

	// update-rooms replaces the gate state wholesale.
	io.OnEvent("/", "update-rooms", func(s socketio.Conn, gates map[string]bool) map[string]any {
		srv.Rooms.SetGates(gates)
		log.Info().Str("sid", s.ID()).Int("rooms", len(gates)).Msg("update-rooms")
		return map[string]any{"ok": true}
	})

	// start-game
	io.OnEvent("/", "start-game", func(s socketio.Conn, payload struct {
		Room         string             `json:"room"`
		StoryStart   string             `json:"storyStart"`
		StoryPrompts game.StoryPrompts  `json:"storyPrompts"`
		Users        []game.Participant `json:"users"`
	}) map[string]any {
		room, err := srv.Rooms.Get(payload.Room)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		if err := room.StartGame(payload.StoryStart, payload.StoryPrompts, payload.Users); err != nil {
			log.Warn().Str("sid", s.ID()).Str("room", payload.Room).Err(err).Msg("start-game rejected")
			return srv.err(s, "bad_request", err.Error())
		}
		snap := room.Snapshot()
		log.Info().Str("sid", s.ID()).Str("room", payload.Room).Int("players", len(snap.Users)).Msg("start-game")
		io.BroadcastToRoom("/", payload.Room, "game-started", map[string]any{
			"storyStart":   snap.Story.Start,
			"storyPrompts": snap.Story.Prompts,
			"users":        snap.Users,
		})
		return map[string]any{"ok": true}
	})

	// update-sentence triggers the eager turn-completion check.
	io.OnEvent("/", "update-sentence", func(s socketio.Conn, payload struct {
		Room  string             `json:"room"`
		Users []game.Participant `json:"users"`
	}) map[string]any {
		room, err := srv.Rooms.Get(payload.Room)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		allIn, err := room.SubmitSentences(payload.Users)
		if err != nil {
			log.Warn().Str("sid", s.ID()).Str("room", payload.Room).Err(err).Msg("update-sentence rejected")
			return srv.err(s, "bad_request", err.Error())
		}
		snap := room.Snapshot()
		if allIn {
			log.Info().Str("room", payload.Room).Msg("all users input")
			io.BroadcastToRoom("/", payload.Room, "all-users-input", map[string]any{
				"room":  payload.Room,
				"users": snap.Users,
			})
		} else {
			io.BroadcastToRoom("/", payload.Room, "update-users", map[string]any{
				"room":           payload.Room,
				"users":          snap.Users,
				"roomInProgress": snap.InProgress,
			})
		}
		return map[string]any{"allUsersInput": allIn}
	})

	// raconteur-vote opens the voting stage.
	io.OnEvent("/", "raconteur-vote", func(s socketio.Conn, payload struct {
		Room  string             `json:"room"`
		Users []game.Participant `json:"users"`
		Story game.Story         `json:"story"`
	}) map[string]any {
		room, err := srv.Rooms.Get(payload.Room)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		if err := room.BeginVoting(payload.Story, payload.Users); err != nil {
			log.Warn().Str("sid", s.ID()).Str("room", payload.Room).Err(err).Msg("raconteur-vote rejected")
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("room", payload.Room).Msg("raconteur-vote")
		srv.broadcastStory(io, room)
		return map[string]any{"ok": true}
	})

	// update-story advances text and both pointers as one unit.
	io.OnEvent("/", "update-story", func(s socketio.Conn, payload struct {
		Room   string             `json:"room"`
		Story  game.Story         `json:"story"`
		Prompt int                `json:"prompt"`
		Stage  int                `json:"stage"`
		Users  []game.Participant `json:"users"`
	}) map[string]any {
		room, err := srv.Rooms.Get(payload.Room)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		if err := room.AdvanceStory(payload.Story, payload.Prompt, payload.Stage, payload.Users); err != nil {
			log.Warn().Str("sid", s.ID()).Str("room", payload.Room).Err(err).Msg("update-story rejected")
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("room", payload.Room).Int("prompt", payload.Prompt).Int("stage", payload.Stage).Msg("update-story")
		srv.broadcastStory(io, room)
		return map[string]any{"ok": true}
	})

	// saved-story finishes the game.
	io.OnEvent("/", "saved-story", func(s socketio.Conn, payload struct {
		Room  string     `json:"room"`
		Story game.Story `json:"story"`
	}) map[string]any {
		room, err := srv.Rooms.Get(payload.Room)
		if err != nil {
			return srv.err(s, "room_not_found", "Room not found")
		}
		if err := room.SaveStory(payload.Story); err != nil {
			log.Warn().Str("sid", s.ID()).Str("room", payload.Room).Err(err).Msg("saved-story rejected")
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("room", payload.Room).Msg("saved-story")
		io.BroadcastToRoom("/", payload.Room, "story-saved", map[string]any{
			"room":  payload.Room,
			"story": payload.Story,
		})
		if srv.config.ExportEnabled {
			story := payload.Story
			go func(code string) {
				if err := game.ExportStory(code, &story, srv.config.ExportFile); err != nil {
					log.Error().Err(err).Str("room", code).Msg("failed to export story")
				} else {
					log.Info().Str("room", code).Str("file", srv.config.ExportFile).Msg("exported story")
				}
			}(payload.Room)
		}
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.handleDisconnect(io, s)
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// handleDisconnect tolerates participants that already left: a late or
// duplicate disconnect is swallowed, never surfaced.
func (srv *Server) handleDisconnect(io *socketio.Server, s socketio.Conn) {
	p, err := srv.Registry.Remove(s.ID())
	if err != nil {
		if !errors.Is(err, game.ErrUnknownConnection) {
			log.Error().Str("sid", s.ID()).Err(err).Msg("disconnect cleanup failed")
		}
		return
	}
	srv.removeMember(p.Room, s)
	room, err := srv.Rooms.Get(p.Room)
	if err != nil {
		return
	}
	if room.Leave(s.ID()) {
		io.BroadcastToRoom("/", lobbyRoom, "message", "User has exited")
		srv.broadcastUsers(io, room)
	}
}

func (srv *Server) broadcastUsers(io *socketio.Server, room *game.Room) {
	snap := room.Snapshot()
	io.BroadcastToRoom("/", room.Code, "update-users", map[string]any{
		"room":           room.Code,
		"users":          snap.Users,
		"roomInProgress": snap.InProgress,
	})
}

// broadcastStory fans out the story together with its prompt and stage
// pointers; readers never see one without the other.
func (srv *Server) broadcastStory(io *socketio.Server, room *game.Room) {
	snap := room.Snapshot()
	io.BroadcastToRoom("/", room.Code, "story-updated", map[string]any{
		"room":      room.Code,
		"story":     snap.Story,
		"prompt":    snap.PromptIndex,
		"stage":     snap.StageIndex,
		"gameStage": snap.Stage,
		"users":     snap.Users,
	})
}

func (srv *Server) roomCode(s socketio.Conn, users []game.Participant) string {
	if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Room != "" {
		return ctx.Room
	}
	if len(users) > 0 {
		return users[0].Room
	}
	return ""
}

func (srv *Server) addMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][c.ID()] = c
}

func (srv *Server) removeMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[code]; m != nil {
		delete(m, c.ID())
	}
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("message", fmt.Sprintf("%s: %s", code, message))
	return map[string]any{"error": message}
}
