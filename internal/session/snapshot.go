package session

import (
	"github.com/DoyleJ11/ludo-backend/internal/engine"
	"github.com/DoyleJ11/ludo-backend/pkg/types"
)

// Snapshot projects the whole session. It never mutates.
func (s *Session) Snapshot() types.StateSnapshot {
	snap := types.StateSnapshot{
		RoomID:          s.roomID,
		Version:         s.version,
		Phase:           string(s.phase),
		Players:         make([]types.PlayerView, 0, len(s.joinOrder)),
		TurnOrder:       append([]string{}, s.turnOrder...),
		CurrentPlayerID: s.CurrentPlayer(),
		PendingDice:     s.pending,
		LegalPawnIDs:    []string{},
		WinnerID:        s.winner,
		Scores: types.Scores{
			PlayerScores: make(map[string]int, len(s.joinOrder)),
			Captures:     make(map[string]int, len(s.joinOrder)),
		},
	}

	for _, id := range s.joinOrder {
		p := s.players[id]
		view := types.PlayerView{ID: p.ID, Name: p.Name, Color: string(p.Color)}
		for _, pawn := range s.board.PawnsOf(id) {
			view.Pawns = append(view.Pawns, pawnView(pawn))
		}
		snap.Players = append(snap.Players, view)
		snap.Scores.PlayerScores[id] = s.board.ScoreOf(id)
		snap.Scores.Captures[id] = p.Captures
	}

	if s.phase == PhaseActive && s.pending != 0 {
		snap.LegalPawnIDs = engine.LegalMoves(s.layout, s.board, s.CurrentPlayer(), s.pending)
	}
	return snap
}

func pawnView(p engine.Pawn) types.PawnView {
	return types.PawnView{
		ID:    p.ID,
		Owner: p.Owner,
		Zone:  string(p.Position.Zone),
		Index: p.Position.Index,
		Score: p.Score,
	}
}
