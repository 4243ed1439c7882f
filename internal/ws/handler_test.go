package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ludo-backend/internal/broadcast"
	"github.com/DoyleJ11/ludo-backend/internal/dispatch"
	"github.com/DoyleJ11/ludo-backend/internal/hub"
	"github.com/DoyleJ11/ludo-backend/internal/lobby"
	"github.com/DoyleJ11/ludo-backend/internal/session"
	"github.com/DoyleJ11/ludo-backend/internal/types"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fan := broadcast.NewFanout(16, nil)
	h := hub.NewHub(ctx, lobby.Config{
		Session:   session.Options{Rules: session.DefaultRules(), Dice: func() int { return 6 }},
		Broadcast: fan,
	})
	srv := httptest.NewServer(Handler(dispatch.New(h, nil), fan, nil, Options{}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))
}

// recvUntil reads messages until one matches, failing after a timeout.
func recvUntil(t *testing.T, conn *websocket.Conn, match func(types.ServerMessage) bool) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg types.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if match(msg) {
			return msg
		}
	}
}

func isAck(requestID string) func(types.ServerMessage) bool {
	return func(m types.ServerMessage) bool { return m.Type == types.TypeAck && m.RequestID == requestID }
}

func TestHandler_JoinRollBroadcast(t *testing.T) {
	srv := newServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, types.ClientMessage{Type: "Join", RequestID: "1", RoomID: "R1", PlayerID: "A", Name: "Alice"})
	ack := recvUntil(t, a, isAck("1"))
	require.True(t, ack.Success)
	require.NotNil(t, ack.State)

	send(t, b, types.ClientMessage{Type: "Join", RequestID: "2", RoomID: "R1", PlayerID: "B", Name: "Bob"})
	ack = recvUntil(t, b, isAck("2"))
	require.True(t, ack.Success)
	assert.Equal(t, "active", ack.State.Phase)

	// A sees B's join as a state update
	state := recvUntil(t, a, func(m types.ServerMessage) bool { return m.Type == "StateSnapshot" })
	assert.Equal(t, "A", state.State.CurrentPlayerID)

	send(t, a, types.ClientMessage{Type: "RollDice", RequestID: "3", RoomID: "R1", PlayerID: "A"})
	rolled := recvUntil(t, b, func(m types.ServerMessage) bool { return m.Type == "DiceRolled" })
	assert.Equal(t, "A", rolled.PlayerID)
	assert.Equal(t, 6, rolled.Value)

	ack = recvUntil(t, a, isAck("3"))
	assert.True(t, ack.Success)
	assert.Equal(t, 6, ack.Value)
}

func TestHandler_RejectsMalformed(t *testing.T) {
	srv := newServer(t)
	c := dial(t, srv)

	send(t, c, types.ClientMessage{Type: "Teleport", RequestID: "x", RoomID: "R1"})
	ack := recvUntil(t, c, isAck("x"))
	assert.False(t, ack.Success)
	assert.Equal(t, "InvalidRequest", ack.Reason)

	send(t, c, types.ClientMessage{Type: "Start", RequestID: "y", RoomID: "R9"})
	ack = recvUntil(t, c, isAck("y"))
	assert.Equal(t, "RoomNotFound", ack.Reason)

	send(t, c, types.ClientMessage{Type: "RollDice", RequestID: "z", RoomID: "R9", PlayerID: "A"})
	ack = recvUntil(t, c, isAck("z"))
	assert.Equal(t, "InvalidRequest", ack.Reason, "unseated sockets cannot act")
}

func TestHandler_ActionsBoundToJoinedSeat(t *testing.T) {
	srv := newServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, types.ClientMessage{Type: "Join", RequestID: "1", RoomID: "R1", PlayerID: "A", Name: "Alice"})
	require.True(t, recvUntil(t, a, isAck("1")).Success)
	send(t, b, types.ClientMessage{Type: "Join", RequestID: "2", RoomID: "R1", PlayerID: "B", Name: "Bob"})
	require.True(t, recvUntil(t, b, isAck("2")).Success)

	// B's socket cannot act for A, even though it is A's turn
	send(t, b, types.ClientMessage{Type: "RollDice", RequestID: "3", RoomID: "R1", PlayerID: "A"})
	ack := recvUntil(t, b, isAck("3"))
	assert.False(t, ack.Success)
	assert.Equal(t, "InvalidRequest", ack.Reason)

	// and one socket cannot take a second seat
	send(t, a, types.ClientMessage{Type: "Join", RequestID: "4", RoomID: "R1", PlayerID: "C", Name: "Carol"})
	ack = recvUntil(t, a, isAck("4"))
	assert.Equal(t, "InvalidRequest", ack.Reason)

	send(t, a, types.ClientMessage{Type: "RollDice", RequestID: "5", RoomID: "R1", PlayerID: "A"})
	assert.True(t, recvUntil(t, a, isAck("5")).Success)
}
