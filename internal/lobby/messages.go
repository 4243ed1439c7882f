package lobby

import (
	"github.com/DoyleJ11/ludo-backend/internal/engine"
	"github.com/DoyleJ11/ludo-backend/pkg/types"
)

type Msg interface{ isLobbyMsg() }

type Join struct {
	PlayerID string
	Name     string
	Reply    chan Result
}

func (Join) isLobbyMsg() {}

type Start struct {
	Reply chan Result
}

func (Start) isLobbyMsg() {}

type Roll struct {
	PlayerID string
	Reply    chan Result
}

func (Roll) isLobbyMsg() {}

type Move struct {
	PlayerID string
	PawnID   string
	Dice     int
	Reply    chan Result
}

func (Move) isLobbyMsg() {}

type Pass struct {
	PlayerID string
	Reply    chan Result
}

func (Pass) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

// Result is the reply to the requester only. State is the snapshot after the
// operation, whether or not it succeeded.
type Result struct {
	Err     error
	Value   int
	Outcome *engine.Outcome
	State   types.StateSnapshot
}

type View struct {
	Version int
	Phase   string
	State   types.StateSnapshot
}
