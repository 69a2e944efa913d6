package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/openddz/ddz-server/internal/auth"
	"github.com/openddz/ddz-server/internal/database"
	"github.com/openddz/ddz-server/internal/game"
)

// Custom WebSocket close codes, beyond the standard range.
const (
	BadSubprotocolError   = 3000
	InvalidAuthTokenError = 3001
)

// RoomWSHandler upgrades the connection and runs the command loop for one
// authenticated account. A reconnecting account keeps its seat; the previous
// connection, if any, is closed.
func (s *Server) RoomWSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"ddz"},
			OriginPatterns: []string{"*"}, // adjust for production
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "ddz" {
			c.Close(BadSubprotocolError, "client must use the 'ddz' subprotocol")
			return
		}

		account, err := s.authenticate(r)
		if err != nil {
			s.Logger.Warnf("websocket auth failed from %s: %v", r.RemoteAddr, err)
			c.Close(InvalidAuthTokenError, "authentication failed")
			return
		}
		s.Logger.WithFields(map[string]interface{}{
			"account": account,
			"remote":  r.RemoteAddr,
		}).Info("websocket connected")

		s.conns.register(account, c)
		defer s.conns.unregister(account, c)

		// Reconnect: if the account still holds a seat somewhere, push a full
		// state sync immediately.
		if room := s.Rooms.FindByAccount(account); room != nil {
			s.conns.joinRoom(room.ID, account)
			if snap, err := room.SyncState(account); err == nil {
				s.conns.sendTo(account, eventFrame(game.Event{
					Type:    game.EventPrivateSyncState,
					RoomID:  room.ID,
					Payload: map[string]interface{}{"state": snap},
				}))
			}
		}

		ctx := r.Context()
		for {
			msgType, data, err := c.Read(ctx)
			if err != nil {
				status := websocket.CloseStatus(err)
				if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
					s.Logger.Infof("websocket closed for %s", account)
				} else {
					s.Logger.Debugf("websocket read error for %s: %v", account, err)
				}
				return
			}
			if msgType != websocket.MessageText {
				continue
			}

			var req wsRequest
			if err := json.Unmarshal(data, &req); err != nil {
				writeFrame(c, errFrame("error", 0, errors.New("invalid JSON")), s.Logger)
				continue
			}
			writeFrame(c, s.dispatch(account, req), s.Logger)
		}
	}
}

// authenticate pulls the session token from the Authorization header, the
// auth_token cookie, or a token query parameter, in that order.
func (s *Server) authenticate(r *http.Request) (string, error) {
	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if cookie, err := r.Cookie("auth_token"); err == nil {
		token = cookie.Value
	} else {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", errors.New("no token provided")
	}
	return auth.AuthenticateJWT(token)
}

// dispatch executes one client command and returns the reply frame.
func (s *Server) dispatch(account string, req wsRequest) []byte {
	handle := func(data interface{}, err error) []byte {
		if err != nil {
			return errFrame(req.Cmd, req.CallIndex, err)
		}
		return okFrame(req.Cmd, req.CallIndex, data)
	}

	switch req.Cmd {
	case "ping":
		return okFrame("pong", req.CallIndex, nil)

	case "createroom_req":
		return handle(s.cmdCreateRoom(account, req.Data))

	case "joinroom_req":
		return handle(s.cmdJoinRoom(account, req.Data))

	case "enterroom_req":
		return handle(s.cmdEnterRoom(account))

	case "leaveroom_req":
		return handle(nil, s.cmdLeaveRoom(account))

	case "destroyroom_req":
		return handle(nil, s.cmdDestroyRoom(account))

	case "updaterules_req":
		return handle(nil, s.cmdUpdateRules(account, req.Data))

	case "player_ready_notify":
		return handle(nil, s.cmdReady(account, req.Data))

	case "player_start_notify":
		return handle(nil, s.inRoom(account, func(r *game.Room) error {
			return r.Start(account)
		}))

	case "player_rob_notify":
		var body struct {
			Rob bool `json:"rob"`
		}
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return errFrame(req.Cmd, req.CallIndex, errors.New("invalid payload"))
		}
		return handle(nil, s.inRoom(account, func(r *game.Room) error {
			return r.Rob(account, body.Rob)
		}))

	case "chu_card_req":
		var body struct {
			Cards []int `json:"cards"`
		}
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return errFrame(req.Cmd, req.CallIndex, errors.New("invalid payload"))
		}
		cards, err := parseCards(body.Cards)
		if err != nil {
			return errFrame(req.Cmd, req.CallIndex, err)
		}
		return handle(nil, s.inRoom(account, func(r *game.Room) error {
			return r.PlayCards(account, cards)
		}))

	case "chu_bu_card_req":
		return handle(nil, s.inRoom(account, func(r *game.Room) error {
			return r.Pass(account)
		}))

	default:
		return errFrame(req.Cmd, req.CallIndex, errors.New("unknown command"))
	}
}

// inRoom runs fn against the room the account is seated in.
func (s *Server) inRoom(account string, fn func(r *game.Room) error) error {
	room := s.Rooms.FindByAccount(account)
	if room == nil {
		return game.ErrRoomNotFound
	}
	return fn(room)
}

func (s *Server) cmdCreateRoom(account string, data json.RawMessage) (interface{}, error) {
	var body struct {
		Name  string                 `json:"name"`
		Rules map[string]interface{} `json:"rules"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, errors.New("invalid payload")
		}
	}
	rules, err := game.ParseRules(body.Rules, game.DefaultRules())
	if err != nil {
		return nil, err
	}
	if body.Name == "" {
		body.Name = account + "'s room"
	}

	room, err := s.Rooms.CreateRoom(body.Name, account, rules)
	if err != nil {
		return nil, err
	}
	s.wireRoom(room)

	s.conns.joinRoom(room.ID, account)
	seat, err := room.Join(account, s.nicknameOf(account))
	if err != nil {
		s.conns.leaveRoom(room.ID, account)
		s.Rooms.Destroy(room.ID)
		return nil, err
	}
	return map[string]interface{}{"roomId": room.ID, "seat": seat}, nil
}

func (s *Server) cmdJoinRoom(account string, data json.RawMessage) (interface{}, error) {
	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errors.New("invalid payload")
	}
	room, ok := s.Rooms.Get(body.RoomID)
	if !ok {
		return nil, game.ErrRoomNotFound
	}

	// Register for events before joining so the joiner sees their own
	// player_joined event.
	s.conns.joinRoom(room.ID, account)
	seat, err := room.Join(account, s.nicknameOf(account))
	if err != nil {
		s.conns.leaveRoom(room.ID, account)
		return nil, err
	}
	return map[string]interface{}{"roomId": room.ID, "seat": seat, "room": room.Info()}, nil
}

func (s *Server) cmdEnterRoom(account string) (interface{}, error) {
	room := s.Rooms.FindByAccount(account)
	if room == nil {
		return nil, game.ErrRoomNotFound
	}
	s.conns.joinRoom(room.ID, account)
	snap, err := room.SyncState(account)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Server) cmdLeaveRoom(account string) error {
	room := s.Rooms.FindByAccount(account)
	if room == nil {
		return game.ErrRoomNotFound
	}
	err := room.Leave(account)
	s.conns.leaveRoom(room.ID, account)
	return err
}

func (s *Server) cmdDestroyRoom(account string) error {
	room := s.Rooms.FindByAccount(account)
	if room == nil {
		return game.ErrRoomNotFound
	}
	if room.Owner() != account {
		return game.ErrNotOwner
	}
	return s.Rooms.Destroy(room.ID)
}

func (s *Server) cmdUpdateRules(account string, data json.RawMessage) error {
	var body struct {
		Rules map[string]interface{} `json:"rules"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return errors.New("invalid payload")
	}
	return s.inRoom(account, func(r *game.Room) error {
		return r.UpdateRules(account, body.Rules)
	})
}

func (s *Server) cmdReady(account string, data json.RawMessage) error {
	ready := true
	if len(data) > 0 {
		var body struct {
			Ready *bool `json:"ready"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return errors.New("invalid payload")
		}
		if body.Ready != nil {
			ready = *body.Ready
		}
	}
	return s.inRoom(account, func(r *game.Room) error {
		return r.SetReady(account, ready)
	})
}

// nicknameOf resolves the display name for an account, falling back to the
// account itself when persistence is off or the lookup fails.
func (s *Server) nicknameOf(account string) string {
	if !s.Persist {
		return account
	}
	u, err := database.GetUserByAccount(context.Background(), account)
	if err != nil {
		return account
	}
	return u.Nickname
}
