package engine

import (
	"errors"
	"fmt"
)

var ErrIllegalMove = errors.New("illegal move")
var ErrUnknownPawn = errors.New("unknown pawn")

const PawnsPerPlayer = 4

// EntryRoll is the only roll that lets a pawn leave Home.
const EntryRoll = 6

type Zone string

const (
	ZoneHome     Zone = "home"
	ZoneTrack    Zone = "track"
	ZoneStretch  Zone = "stretch"
	ZoneFinished Zone = "finished"
)

// Position is owner-relative: Track(0) is the owner's start square.
type Position struct {
	Zone  Zone `json:"zone"`
	Index int  `json:"index"`
}

var Home = Position{Zone: ZoneHome}

type Pawn struct {
	ID       string
	Owner    string
	Color    Color
	Slot     int
	Position Position
	Score    int
}

type PawnRef struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

func (p Pawn) Ref() PawnRef { return PawnRef{ID: p.ID, Owner: p.Owner} }

type Board struct {
	Pawns []Pawn
}

type Move struct {
	Owner  string
	PawnID string
	Dice   int
}

type EventType string

const (
	EvtPawnEntered    EventType = "PawnEntered"
	EvtPawnMoved      EventType = "PawnMoved"
	EvtPawnCaptured   EventType = "PawnCaptured"
	EvtPawnFinished   EventType = "PawnFinished"
	EvtPlayerFinished EventType = "PlayerFinished"
)

type Event struct {
	Type   EventType
	Pawn   PawnRef
	From   Position
	To     Position
	Points int
}

type Outcome struct {
	Pawn             PawnRef
	From             Position
	To               Position
	Captured         *PawnRef
	ScoreTransferred int
	Finished         bool
	PlayerFinished   bool
	Events           []Event
}

// Apply validates mv against b and returns the resulting board. b is never
// modified; on error the returned board is b itself.
func Apply(l Layout, b Board, mv Move) (Outcome, Board, error) {
	if mv.Dice < 1 || mv.Dice > 6 {
		return Outcome{}, b, fmt.Errorf("%w: dice value %d out of range", ErrIllegalMove, mv.Dice)
	}

	idx := b.indexOf(mv.PawnID)
	if idx < 0 || b.Pawns[idx].Owner != mv.Owner {
		return Outcome{}, b, ErrUnknownPawn
	}
	pawn := b.Pawns[idx]

	var from, to int
	switch pawn.Position.Zone {
	case ZoneFinished:
		return Outcome{}, b, fmt.Errorf("%w: pawn %s already finished", ErrIllegalMove, pawn.ID)
	case ZoneHome:
		if mv.Dice != EntryRoll {
			return Outcome{}, b, fmt.Errorf("%w: pawn %s needs a %d to leave home", ErrIllegalMove, pawn.ID, EntryRoll)
		}
		from, to = 0, 0
	default:
		from = l.StepOf(pawn.Position)
		to = from + mv.Dice
		if to > l.FinishStep() {
			return Outcome{}, b, fmt.Errorf("%w: pawn %s would overshoot the finish", ErrIllegalMove, pawn.ID)
		}
	}

	next := b.Clone()
	moved := &next.Pawns[idx]
	moved.Position = l.PositionAt(to)
	moved.Score += to - from

	out := Outcome{Pawn: pawn.Ref(), From: pawn.Position, To: moved.Position}
	if pawn.Position.Zone == ZoneHome {
		out.Events = append(out.Events, Event{Type: EvtPawnEntered, Pawn: out.Pawn, From: out.From, To: out.To})
	} else {
		out.Events = append(out.Events, Event{Type: EvtPawnMoved, Pawn: out.Pawn, From: out.From, To: out.To, Points: to - from})
	}

	if moved.Position.Zone == ZoneTrack {
		if victim := captureTarget(l, next, idx); victim >= 0 {
			v := &next.Pawns[victim]
			gained := v.Score
			moved.Score += gained
			v.Score = 0
			vFrom := v.Position
			v.Position = Home

			ref := v.Ref()
			out.Captured = &ref
			out.ScoreTransferred = gained
			out.Events = append(out.Events, Event{Type: EvtPawnCaptured, Pawn: ref, From: vFrom, To: Home, Points: gained})
		}
	}

	if moved.Position.Zone == ZoneFinished {
		out.Finished = true
		out.Events = append(out.Events, Event{Type: EvtPawnFinished, Pawn: out.Pawn, From: out.From, To: out.To})
		if next.AllFinished(mv.Owner) {
			out.PlayerFinished = true
			out.Events = append(out.Events, Event{Type: EvtPlayerFinished, Pawn: out.Pawn})
		}
	}

	return out, next, nil
}

// LegalMoves lists the owner's pawns that can legally move with dice.
func LegalMoves(l Layout, b Board, owner string, dice int) []string {
	legal := []string{}
	for _, p := range b.Pawns {
		if p.Owner != owner {
			continue
		}
		if _, _, err := Apply(l, b, Move{Owner: owner, PawnID: p.ID, Dice: dice}); err == nil {
			legal = append(legal, p.ID)
		}
	}
	return legal
}

// captureTarget returns the index of the single opponent pawn sharing the
// mover's loop square, or -1 when the square is safe, empty or blocked by a stack.
func captureTarget(l Layout, b Board, mover int) int {
	m := b.Pawns[mover]
	square := l.Square(m.Color, m.Position.Index)
	if l.IsSafe(square) {
		return -1
	}

	victim := -1
	count := 0
	for i, p := range b.Pawns {
		if p.Owner == m.Owner || p.Position.Zone != ZoneTrack {
			continue
		}
		if l.Square(p.Color, p.Position.Index) == square {
			victim = i
			count++
		}
	}
	if count != 1 {
		return -1
	}
	return victim
}
