package types

// StateSnapshot is the full room projection every member receives. Ludo has
// no hidden information, so all members see the same snapshot.
type StateSnapshot struct {
	RoomID          string       `json:"room_id"`
	Version         int          `json:"version"`
	Phase           string       `json:"phase"` // "waiting" | "active" | "finished"
	Players         []PlayerView `json:"players"`
	TurnOrder       []string     `json:"turn_order"`
	CurrentPlayerID string       `json:"current_player_id,omitempty"`
	PendingDice     int          `json:"pending_dice,omitempty"` // 0 = none
	LegalPawnIDs    []string     `json:"legal_pawn_ids"`
	WinnerID        string       `json:"winner_id,omitempty"`
	Scores          Scores       `json:"scores"`
}

type PlayerView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Color string     `json:"color"`
	Pawns []PawnView `json:"pawns"`
}

type PawnView struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Zone  string `json:"zone"` // "home" | "track" | "stretch" | "finished"
	Index int    `json:"index"`
	Score int    `json:"score"`
}

type Scores struct {
	PlayerScores map[string]int `json:"player_scores"`
	Captures     map[string]int `json:"captures"`
}
