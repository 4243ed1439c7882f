package types

import (
	pub "github.com/DoyleJ11/ludo-backend/pkg/types"
)

type ClientMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	RoomID    string `json:"room_id,omitempty"`
	PlayerID  string `json:"player_id,omitempty"`
	Name      string `json:"name,omitempty"`
	PawnID    string `json:"pawn_id,omitempty"`
	DiceValue int    `json:"dice_value,omitempty"`
}

type ServerMessage struct {
	Type           string             `json:"type"` // "Ack" | "StateSnapshot" | "DiceRolled"
	RequestID      string             `json:"request_id,omitempty"`
	Op             string             `json:"op,omitempty"`
	Success        bool               `json:"success"`
	Reason         string             `json:"reason,omitempty"`
	Value          int                `json:"value,omitempty"`
	CapturedPawnID string             `json:"captured_pawn_id,omitempty"`
	Finished       bool               `json:"finished,omitempty"`
	PlayerID       string             `json:"player_id,omitempty"`
	RoomID         string             `json:"room_id,omitempty"`
	State          *pub.StateSnapshot `json:"state,omitempty"`
}

const TypeAck = "Ack"

// FromEvent wraps a room broadcast for the wire.
func FromEvent(evt pub.Event) ServerMessage {
	return ServerMessage{
		Type:     string(evt.Kind),
		Success:  true,
		RoomID:   evt.RoomID,
		PlayerID: evt.PlayerID,
		Value:    evt.Value,
		State:    evt.State,
	}
}
