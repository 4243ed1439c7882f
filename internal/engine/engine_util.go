package engine

import "fmt"

func PawnID(owner string, slot int) string {
	return fmt.Sprintf("%s-%d", owner, slot)
}

// NewPawns creates a player's full set of pawns, all at Home.
func NewPawns(owner string, color Color) []Pawn {
	pawns := make([]Pawn, PawnsPerPlayer)
	for slot := range pawns {
		pawns[slot] = Pawn{
			ID:       PawnID(owner, slot),
			Owner:    owner,
			Color:    color,
			Slot:     slot,
			Position: Home,
		}
	}
	return pawns
}

func (b Board) Clone() Board {
	pawns := make([]Pawn, len(b.Pawns))
	copy(pawns, b.Pawns)
	return Board{Pawns: pawns}
}

func (b Board) indexOf(pawnID string) int {
	for i, p := range b.Pawns {
		if p.ID == pawnID {
			return i
		}
	}
	return -1
}

func (b Board) Find(pawnID string) (Pawn, bool) {
	if i := b.indexOf(pawnID); i >= 0 {
		return b.Pawns[i], true
	}
	return Pawn{}, false
}

func (b Board) PawnsOf(owner string) []Pawn {
	var out []Pawn
	for _, p := range b.Pawns {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	return out
}

func (b Board) AllFinished(owner string) bool {
	pawns := b.PawnsOf(owner)
	if len(pawns) == 0 {
		return false
	}
	for _, p := range pawns {
		if p.Position.Zone != ZoneFinished {
			return false
		}
	}
	return true
}

// ScoreOf sums the owner's pawn scores.
func (b Board) ScoreOf(owner string) int {
	total := 0
	for _, p := range b.PawnsOf(owner) {
		total += p.Score
	}
	return total
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
