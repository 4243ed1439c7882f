package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("invalid request")

// Request is the closed set of things a client may ask a room to do.
type Request interface {
	Room() string
	Player() string // empty for Start
	Op() string
	isRequest()
}

type JoinRequest struct {
	RoomID   string
	PlayerID string
	Name     string
}

type StartRequest struct {
	RoomID string
}

type RollDiceRequest struct {
	RoomID   string
	PlayerID string
}

type MovePawnRequest struct {
	RoomID    string
	PlayerID  string
	PawnID    string
	DiceValue int
}

type PassRequest struct {
	RoomID   string
	PlayerID string
}

func (r JoinRequest) Room() string     { return r.RoomID }
func (r StartRequest) Room() string    { return r.RoomID }
func (r RollDiceRequest) Room() string { return r.RoomID }
func (r MovePawnRequest) Room() string { return r.RoomID }
func (r PassRequest) Room() string     { return r.RoomID }

func (r JoinRequest) Player() string     { return r.PlayerID }
func (StartRequest) Player() string      { return "" }
func (r RollDiceRequest) Player() string { return r.PlayerID }
func (r MovePawnRequest) Player() string { return r.PlayerID }
func (r PassRequest) Player() string     { return r.PlayerID }

func (JoinRequest) Op() string     { return "Join" }
func (StartRequest) Op() string    { return "Start" }
func (RollDiceRequest) Op() string { return "RollDice" }
func (MovePawnRequest) Op() string { return "MovePawn" }
func (PassRequest) Op() string     { return "Pass" }

func (JoinRequest) isRequest()     {}
func (StartRequest) isRequest()    {}
func (RollDiceRequest) isRequest() {}
func (MovePawnRequest) isRequest() {}
func (PassRequest) isRequest()     {}

// Decode parses a raw frame. The client message is returned even on error so
// the caller can echo its request id.
func Decode(data []byte) (ClientMessage, Request, error) {
	var cm ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return cm, nil, fmt.Errorf("%w: bad json", ErrInvalidRequest)
	}
	req, err := ToRequest(cm)
	return cm, req, err
}

func ToRequest(m ClientMessage) (Request, error) {
	if m.RoomID == "" {
		return nil, fmt.Errorf("%w: missing room_id", ErrInvalidRequest)
	}

	switch m.Type {
	case "Join":
		if m.PlayerID == "" {
			return nil, fmt.Errorf("%w: missing player_id", ErrInvalidRequest)
		}
		name := m.Name
		if name == "" {
			name = m.PlayerID
		}
		return JoinRequest{RoomID: m.RoomID, PlayerID: m.PlayerID, Name: name}, nil
	case "Start":
		return StartRequest{RoomID: m.RoomID}, nil
	case "RollDice":
		if m.PlayerID == "" {
			return nil, fmt.Errorf("%w: missing player_id", ErrInvalidRequest)
		}
		return RollDiceRequest{RoomID: m.RoomID, PlayerID: m.PlayerID}, nil
	case "MovePawn":
		if m.PlayerID == "" || m.PawnID == "" {
			return nil, fmt.Errorf("%w: missing player_id or pawn_id", ErrInvalidRequest)
		}
		return MovePawnRequest{RoomID: m.RoomID, PlayerID: m.PlayerID, PawnID: m.PawnID, DiceValue: m.DiceValue}, nil
	case "Pass":
		if m.PlayerID == "" {
			return nil, fmt.Errorf("%w: missing player_id", ErrInvalidRequest)
		}
		return PassRequest{RoomID: m.RoomID, PlayerID: m.PlayerID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, m.Type)
	}
}
