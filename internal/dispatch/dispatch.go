package dispatch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ludo-backend/internal/hub"
	"github.com/DoyleJ11/ludo-backend/internal/lobby"
	"github.com/DoyleJ11/ludo-backend/internal/session"
	"github.com/DoyleJ11/ludo-backend/internal/types"
)

// Registry is the part of the hub the dispatcher needs.
type Registry interface {
	GetOrCreate(ctx context.Context, roomID string) (*lobby.Lobby, error)
	Get(ctx context.Context, roomID string) (*lobby.Lobby, error)
}

type Dispatcher struct {
	rooms Registry
	log   *zap.Logger
}

func New(rooms Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{rooms: rooms, log: logger}
}

// Handle routes req to its room and returns the ack for the requester.
// Only Join may create a room.
func (d *Dispatcher) Handle(ctx context.Context, req types.Request) types.ServerMessage {
	ack := types.ServerMessage{Type: types.TypeAck, Op: req.Op(), RoomID: req.Room()}

	var (
		lb  *lobby.Lobby
		err error
	)
	if _, ok := req.(types.JoinRequest); ok {
		lb, err = d.rooms.GetOrCreate(ctx, req.Room())
	} else {
		lb, err = d.rooms.Get(ctx, req.Room())
	}
	if err != nil {
		d.log.Debug("room lookup failed", zap.String("room_id", req.Room()), zap.String("op", req.Op()), zap.Error(err))
		return fail(ack, err)
	}

	var res lobby.Result
	switch r := req.(type) {
	case types.JoinRequest:
		res, err = lb.Join(ctx, r.PlayerID, r.Name)
		if err == nil {
			ack.PlayerID = r.PlayerID
			ack.State = &res.State
		}
	case types.StartRequest:
		_, err = lb.Start(ctx)
	case types.RollDiceRequest:
		res, err = lb.Roll(ctx, r.PlayerID)
		ack.PlayerID = r.PlayerID
		ack.Value = res.Value
	case types.MovePawnRequest:
		res, err = lb.Move(ctx, r.PlayerID, r.PawnID, r.DiceValue)
		ack.PlayerID = r.PlayerID
		if err == nil && res.Outcome != nil {
			if res.Outcome.Captured != nil {
				ack.CapturedPawnID = res.Outcome.Captured.ID
			}
			ack.Finished = res.Outcome.Finished
		}
	case types.PassRequest:
		_, err = lb.Pass(ctx, r.PlayerID)
		ack.PlayerID = r.PlayerID
	default:
		err = types.ErrInvalidRequest
	}
	if err != nil {
		return fail(ack, err)
	}

	ack.Success = true
	return ack
}

func fail(ack types.ServerMessage, err error) types.ServerMessage {
	ack.Success = false
	ack.Reason = Reason(err)
	ack.Value = 0
	ack.State = nil
	return ack
}

var reasons = []struct {
	err    error
	reason string
}{
	{hub.ErrRoomNotFound, "RoomNotFound"},
	{session.ErrRoomFull, "RoomFull"},
	{session.ErrGameAlreadyStarted, "GameAlreadyStarted"},
	{session.ErrNotEnoughPlayers, "NotEnoughPlayers"},
	{session.ErrNotYourTurn, "NotYourTurn"},
	{session.ErrDiceAlreadyPending, "DiceAlreadyPending"},
	{session.ErrDiceMismatch, "DiceMismatch"},
	{session.ErrUnknownPawn, "UnknownPawn"},
	{session.ErrIllegalMove, "IllegalMove"},
	{session.ErrNoPendingDice, "NoPendingDice"},
	{session.ErrMovesAvailable, "MovesAvailable"},
	{session.ErrInvalidPlayer, "InvalidRequest"},
	{types.ErrInvalidRequest, "InvalidRequest"},
	{lobby.ErrClosed, "Unavailable"},
	{hub.ErrHubClosed, "Unavailable"},
	{context.Canceled, "Unavailable"},
	{context.DeadlineExceeded, "Unavailable"},
}

// Reason maps an error to its wire reason code.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "InvalidRequest"
}
