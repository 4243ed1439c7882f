package engine

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidLayout = errors.New("invalid board layout")

type Color string

const (
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
)

// SeatColors is the order colors are handed out in, by join order.
var SeatColors = []Color{ColorRed, ColorGreen, ColorYellow, ColorBlue}

// Layout is the board geometry. The engine never hard-codes squares; everything
// it knows about the board comes from here.
type Layout struct {
	// LoopLength is the number of squares on the shared loop.
	LoopLength int `json:"loop_length"`
	// LoopSteps is how many owner-relative loop squares a pawn visits
	// (relative 0..LoopSteps-1) before turning into its home stretch.
	LoopSteps int `json:"loop_steps"`
	// StretchLength counts the private cells; the last one is the finish.
	StretchLength int           `json:"stretch_length"`
	Starts        map[Color]int `json:"starts"`
	Safe          []int         `json:"safe"`
}

func DefaultLayout() Layout {
	return Layout{
		LoopLength:    52,
		LoopSteps:     51,
		StretchLength: 6,
		Starts: map[Color]int{
			ColorRed:    0,
			ColorGreen:  13,
			ColorYellow: 26,
			ColorBlue:   39,
		},
		Safe: []int{8, 21, 34, 47},
	}
}

func (l Layout) Validate() error {
	if l.LoopLength <= 0 {
		return fmt.Errorf("%w: loop_length must be positive", ErrInvalidLayout)
	}
	if l.LoopSteps <= 0 || l.LoopSteps > l.LoopLength {
		return fmt.Errorf("%w: loop_steps must be in 1..%d", ErrInvalidLayout, l.LoopLength)
	}
	if l.StretchLength <= 0 {
		return fmt.Errorf("%w: stretch_length must be positive", ErrInvalidLayout)
	}
	for _, c := range SeatColors {
		start, ok := l.Starts[c]
		if !ok {
			return fmt.Errorf("%w: missing start square for %s", ErrInvalidLayout, c)
		}
		if start < 0 || start >= l.LoopLength {
			return fmt.Errorf("%w: start square %d for %s is off the loop", ErrInvalidLayout, start, c)
		}
	}
	for _, sq := range l.Safe {
		if sq < 0 || sq >= l.LoopLength {
			return fmt.Errorf("%w: safe square %d is off the loop", ErrInvalidLayout, sq)
		}
	}
	return nil
}

// FinishStep is the progress value of a finished pawn.
func (l Layout) FinishStep() int {
	return l.LoopSteps + l.StretchLength - 1
}

// Square maps an owner-relative loop index to the absolute shared square.
func (l Layout) Square(c Color, rel int) int {
	return (l.Starts[c] + rel) % l.LoopLength
}

func (l Layout) IsSafe(square int) bool {
	return slices.Contains(l.Safe, square)
}

// PositionAt converts a progress count (0 = start square) into a position.
func (l Layout) PositionAt(step int) Position {
	switch {
	case step >= l.FinishStep():
		return Position{Zone: ZoneFinished}
	case step >= l.LoopSteps:
		return Position{Zone: ZoneStretch, Index: step - l.LoopSteps}
	default:
		return Position{Zone: ZoneTrack, Index: step}
	}
}

// StepOf is the inverse of PositionAt. Home pawns have no progress and report -1.
func (l Layout) StepOf(p Position) int {
	switch p.Zone {
	case ZoneTrack:
		return p.Index
	case ZoneStretch:
		return l.LoopSteps + p.Index
	case ZoneFinished:
		return l.FinishStep()
	default:
		return -1
	}
}
