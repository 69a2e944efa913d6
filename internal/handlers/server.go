// Package handlers exposes the HTTP and WebSocket surface of the server:
// account endpoints, room listing over REST, and the room WebSocket protocol.
package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openddz/ddz-server/internal/cache"
	"github.com/openddz/ddz-server/internal/database"
	"github.com/openddz/ddz-server/internal/game"
)

// Server ties the room registry to the connection registry and owns the
// persistence callbacks handed to each room.
type Server struct {
	Logger *logrus.Logger
	Rooms  *game.RoomStore

	conns *connRegistry

	// Persist toggles settlement and replay persistence; tests run with it
	// off so no database or Redis is needed.
	Persist bool
}

func NewServer(logger *logrus.Logger) *Server {
	return &Server{
		Logger: logger,
		Rooms:  game.NewRoomStore(),
		conns:  newConnRegistry(logger),
	}
}

// wireRoom attaches broadcast and persistence callbacks to a freshly created
// room. Rooms call these from their own goroutine, so everything slow is
// pushed onto new goroutines.
func (s *Server) wireRoom(r *game.Room) {
	r.EmitFn = func(ev game.Event) {
		s.conns.broadcastRoom(ev.RoomID, eventFrame(ev))
	}
	r.EmitToFn = func(account string, ev game.Event) {
		s.conns.sendTo(account, eventFrame(ev))
	}
	if !s.Persist {
		return
	}
	r.OnSettle = func(st game.Settlement, accounts [3]string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := database.RecordSettlement(ctx, st, accounts); err != nil {
				s.Logger.WithError(err).Errorf("failed to persist settlement for room %s", st.RoomID)
			}
		}()
	}
	r.OnPlay = func(roomID string, gameID uuid.UUID, seq uint64, account string, p game.Play) {
		rec := cache.PlayRecord{
			RoomID:    roomID,
			GameID:    gameID,
			Seq:       seq,
			Account:   account,
			Seat:      p.Seat,
			Pass:      p.Pass,
			Cards:     cardInts(p.Cards),
			Timestamp: time.Now().Unix(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cache.PublishPlayRecord(ctx, rec); err != nil {
				s.Logger.WithError(err).Warnf("failed to publish play record for room %s", roomID)
			}
		}()
	}
}

// connRegistry tracks live WebSocket connections by account and the room each
// account currently receives events for.
type connRegistry struct {
	mu     sync.Mutex
	logger *logrus.Logger
	conns  map[string]*websocket.Conn
	rooms  map[string]map[string]bool // room id -> accounts
}

func newConnRegistry(logger *logrus.Logger) *connRegistry {
	return &connRegistry{
		logger: logger,
		conns:  make(map[string]*websocket.Conn),
		rooms:  make(map[string]map[string]bool),
	}
}

// register stores the connection, replacing any previous one for the account.
func (cr *connRegistry) register(account string, c *websocket.Conn) {
	cr.mu.Lock()
	prev := cr.conns[account]
	cr.conns[account] = c
	cr.mu.Unlock()
	if prev != nil && prev != c {
		prev.Close(websocket.StatusPolicyViolation, "replaced by a newer connection")
	}
}

// unregister removes the connection if it is still the current one. Room
// membership survives so a reconnecting client keeps receiving events.
func (cr *connRegistry) unregister(account string, c *websocket.Conn) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.conns[account] == c {
		delete(cr.conns, account)
	}
}

func (cr *connRegistry) joinRoom(roomID, account string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	members, ok := cr.rooms[roomID]
	if !ok {
		members = make(map[string]bool)
		cr.rooms[roomID] = members
	}
	members[account] = true
}

func (cr *connRegistry) leaveRoom(roomID, account string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if members, ok := cr.rooms[roomID]; ok {
		delete(members, account)
		if len(members) == 0 {
			delete(cr.rooms, roomID)
		}
	}
}

// broadcastRoom sends a frame to every member of the room asynchronously.
func (cr *connRegistry) broadcastRoom(roomID string, data []byte) {
	cr.mu.Lock()
	var targets []*websocket.Conn
	for account := range cr.rooms[roomID] {
		if c, ok := cr.conns[account]; ok {
			targets = append(targets, c)
		}
	}
	cr.mu.Unlock()

	go func() {
		for _, c := range targets {
			writeFrame(c, data, cr.logger)
		}
	}()
}

// sendTo sends a frame to one account asynchronously.
func (cr *connRegistry) sendTo(account string, data []byte) {
	cr.mu.Lock()
	c, ok := cr.conns[account]
	cr.mu.Unlock()
	if !ok {
		return
	}
	go writeFrame(c, data, cr.logger)
}

func writeFrame(c *websocket.Conn, data []byte, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		logger.WithError(err).Debug("websocket write failed")
	}
}
