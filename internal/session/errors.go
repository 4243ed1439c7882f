package session

import (
	"errors"

	"github.com/DoyleJ11/ludo-backend/internal/engine"
)

var (
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrDiceAlreadyPending = errors.New("dice already rolled")
	ErrDiceMismatch       = errors.New("dice value does not match roll")
	ErrNoPendingDice      = errors.New("no dice rolled")
	ErrMovesAvailable     = errors.New("a legal move is available")
	ErrInvalidPlayer      = errors.New("invalid player id")

	ErrUnknownPawn = engine.ErrUnknownPawn
	ErrIllegalMove = engine.ErrIllegalMove
)
