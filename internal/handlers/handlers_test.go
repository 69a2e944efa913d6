package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openddz/ddz-server/internal/game"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewServer(logger)
}

func decodeFrame(t *testing.T, frame []byte) wsResponse {
	t.Helper()
	var resp wsResponse
	require.NoError(t, json.Unmarshal(frame, &resp))
	return resp
}

func TestDispatchCreateAndJoinRoom(t *testing.T) {
	s := newTestServer(t)

	resp := decodeFrame(t, s.dispatch("alice", wsRequest{
		Cmd:       "createroom_req",
		Data:      json.RawMessage(`{"name":"my table"}`),
		CallIndex: 7,
	}))
	require.Equal(t, resultOK, resp.Result)
	assert.Equal(t, "createroom_req", resp.Type)
	assert.Equal(t, 7, resp.CallBackIndex)

	data := resp.Data.(map[string]interface{})
	roomID := data["roomId"].(string)
	assert.Regexp(t, `^\d{6}$`, roomID)
	assert.Equal(t, float64(0), data["seat"])

	resp = decodeFrame(t, s.dispatch("bob", wsRequest{
		Cmd:  "joinroom_req",
		Data: json.RawMessage(`{"roomId":"` + roomID + `"}`),
	}))
	require.Equal(t, resultOK, resp.Result)
	assert.Equal(t, float64(1), resp.Data.(map[string]interface{})["seat"])

	// Unknown room fails with result -1.
	resp = decodeFrame(t, s.dispatch("carol", wsRequest{
		Cmd:  "joinroom_req",
		Data: json.RawMessage(`{"roomId":"000000"}`),
	}))
	assert.Equal(t, resultError, resp.Result)
	assert.Equal(t, game.ErrRoomNotFound.Error(), resp.Msg)
}

func TestDispatchReadyFlowStartsGame(t *testing.T) {
	s := newTestServer(t)

	resp := decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "createroom_req"}))
	require.Equal(t, resultOK, resp.Result)
	roomID := resp.Data.(map[string]interface{})["roomId"].(string)

	for _, p := range []string{"bob", "carol"} {
		resp = decodeFrame(t, s.dispatch(p, wsRequest{
			Cmd:  "joinroom_req",
			Data: json.RawMessage(`{"roomId":"` + roomID + `"}`),
		}))
		require.Equal(t, resultOK, resp.Result)
	}
	for _, p := range []string{"alice", "bob", "carol"} {
		resp = decodeFrame(t, s.dispatch(p, wsRequest{Cmd: "player_ready_notify"}))
		require.Equal(t, resultOK, resp.Result)
	}

	room, ok := s.Rooms.Get(roomID)
	require.True(t, ok)
	assert.Equal(t, "bidding", room.Info().Phase)

	// Acting out of turn is rejected over the wire.
	resp = decodeFrame(t, s.dispatch("bob", wsRequest{
		Cmd:  "player_rob_notify",
		Data: json.RawMessage(`{"rob":true}`),
	}))
	assert.Equal(t, resultError, resp.Result)
	assert.Equal(t, game.ErrNotYourTurn.Error(), resp.Msg)
}

func TestDispatchEnterRoomReturnsSnapshot(t *testing.T) {
	s := newTestServer(t)

	resp := decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "createroom_req"}))
	require.Equal(t, resultOK, resp.Result)

	resp = decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "enterroom_req"}))
	require.Equal(t, resultOK, resp.Result)
	snap := resp.Data.(map[string]interface{})
	assert.Equal(t, "idle", snap["phase"])
	assert.Equal(t, float64(0), snap["seat"])
}

func TestDispatchLeaveAndDestroy(t *testing.T) {
	s := newTestServer(t)

	resp := decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "createroom_req"}))
	roomID := resp.Data.(map[string]interface{})["roomId"].(string)
	decodeFrame(t, s.dispatch("bob", wsRequest{
		Cmd:  "joinroom_req",
		Data: json.RawMessage(`{"roomId":"` + roomID + `"}`),
	}))

	// Only the owner may destroy.
	resp = decodeFrame(t, s.dispatch("bob", wsRequest{Cmd: "destroyroom_req"}))
	assert.Equal(t, resultError, resp.Result)

	resp = decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "destroyroom_req"}))
	require.Equal(t, resultOK, resp.Result)
	_, ok := s.Rooms.Get(roomID)
	assert.False(t, ok)

	resp = decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "leaveroom_req"}))
	assert.Equal(t, resultError, resp.Result)
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := newTestServer(t)
	resp := decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "no_such_cmd", CallIndex: 3}))
	assert.Equal(t, resultError, resp.Result)
	assert.Equal(t, 3, resp.CallBackIndex)
}

func TestParseCardsRejectsOutOfRange(t *testing.T) {
	cards, err := parseCards([]int{0, 53})
	require.NoError(t, err)
	assert.Len(t, cards, 2)

	_, err = parseCards([]int{54})
	assert.ErrorIs(t, err, errInvalidCardValue)
	_, err = parseCards([]int{-1})
	assert.ErrorIs(t, err, errInvalidCardValue)
}

func TestRoomsRESTEndpoints(t *testing.T) {
	s := newTestServer(t)
	resp := decodeFrame(t, s.dispatch("alice", wsRequest{Cmd: "createroom_req"}))
	roomID := resp.Data.(map[string]interface{})["roomId"].(string)

	rr := httptest.NewRecorder()
	s.RoomsHandler()(rr, httptest.NewRequest("GET", "/api/rooms", nil))
	require.Equal(t, 200, rr.Code)
	var list []game.RoomInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, roomID, list[0].ID)

	rr = httptest.NewRecorder()
	s.RoomsHandler()(rr, httptest.NewRequest("GET", "/api/rooms/"+roomID, nil))
	require.Equal(t, 200, rr.Code)
	var info game.RoomInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "alice", info.Owner)
	assert.Equal(t, 1, info.Players)

	rr = httptest.NewRecorder()
	s.RoomsHandler()(rr, httptest.NewRequest("GET", "/api/rooms/000000", nil))
	assert.Equal(t, 404, rr.Code)

	rr = httptest.NewRecorder()
	s.HealthHandler()(rr, httptest.NewRequest("GET", "/api/health", nil))
	assert.Equal(t, 200, rr.Code)
}
