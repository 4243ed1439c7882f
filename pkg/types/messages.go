package types

// Client -> Server (every message carries "type" and "room_id")
//
// Join:      player_id, name
// Start:     {}
// RollDice:  player_id
// MovePawn:  player_id, pawn_id, dice_value
// Pass:      player_id
//
// Server -> Client
//
// Ack (requester only):  success, reason?, value?, captured_pawn_id?, finished?, state?
// StateSnapshot (room):  state
// DiceRolled (room):     player_id, value

type EventKind string

const (
	EventStateUpdated EventKind = "StateSnapshot"
	EventDiceRolled   EventKind = "DiceRolled"
)

// Event is what a room publishes to all of its members.
type Event struct {
	Kind     EventKind      `json:"type"`
	RoomID   string         `json:"room_id"`
	State    *StateSnapshot `json:"state,omitempty"`
	PlayerID string         `json:"player_id,omitempty"`
	Value    int            `json:"value,omitempty"`
}

func StateUpdated(s StateSnapshot) Event {
	return Event{Kind: EventStateUpdated, RoomID: s.RoomID, State: &s}
}

func DiceRolled(roomID, playerID string, value int) Event {
	return Event{Kind: EventDiceRolled, RoomID: roomID, PlayerID: playerID, Value: value}
}
