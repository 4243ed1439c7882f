package session

import (
	"fmt"
	"math/rand"

	"github.com/DoyleJ11/ludo-backend/internal/engine"
)

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

const (
	MaxPlayers = 4
	MinPlayers = 2
)

type Rules struct {
	// AutoStartAt starts the game as soon as this many players have joined.
	// Zero disables auto-start; the room then waits for an explicit Start.
	AutoStartAt int
	// MaxConsecutiveSixes caps extra turns from sixes. Zero means no cap.
	MaxConsecutiveSixes int
}

func DefaultRules() Rules {
	return Rules{AutoStartAt: MinPlayers}
}

type Options struct {
	Layout engine.Layout
	Rules  Rules
	Dice   func() int // nil = fair six-sided die
}

type Player struct {
	ID       string
	Name     string
	Color    engine.Color
	Captures int
}

// Session is one room's game. It is not safe for concurrent use; the owning
// lobby serializes every call.
type Session struct {
	roomID string
	layout engine.Layout
	rules  Rules
	dice   func() int

	phase     Phase
	players   map[string]*Player
	joinOrder []string
	turnOrder []string
	current   int
	pending   int // 0 = none
	sixes     int
	board     engine.Board
	winner    string
	version   int
}

func New(roomID string, opts Options) *Session {
	dice := opts.Dice
	if dice == nil {
		dice = RollDie
	}
	layout := opts.Layout
	if layout.LoopLength == 0 {
		layout = engine.DefaultLayout()
	}
	return &Session{
		roomID:  roomID,
		layout:  layout,
		rules:   opts.Rules,
		dice:    dice,
		phase:   PhaseWaiting,
		players: make(map[string]*Player),
	}
}

// RollDie is a fair six-sided die.
func RollDie() int {
	return rand.Intn(6) + 1
}

func (s *Session) RoomID() string { return s.roomID }
func (s *Session) Phase() Phase   { return s.phase }
func (s *Session) Version() int   { return s.version }
func (s *Session) Winner() string { return s.winner }

// CurrentPlayer is empty unless the game is active.
func (s *Session) CurrentPlayer() string {
	if s.phase != PhaseActive {
		return ""
	}
	return s.turnOrder[s.current]
}

// Join adds a player. Joining again with a known id is a no-op and reports
// changed=false.
func (s *Session) Join(playerID, name string) (bool, error) {
	if playerID == "" {
		return false, ErrInvalidPlayer
	}
	if _, ok := s.players[playerID]; ok {
		return false, nil
	}
	if len(s.players) >= MaxPlayers {
		return false, ErrRoomFull
	}
	if s.phase != PhaseWaiting {
		return false, ErrGameAlreadyStarted
	}

	color := engine.SeatColors[len(s.joinOrder)]
	s.players[playerID] = &Player{ID: playerID, Name: name, Color: color}
	s.joinOrder = append(s.joinOrder, playerID)
	s.board.Pawns = append(s.board.Pawns, engine.NewPawns(playerID, color)...)

	if s.rules.AutoStartAt > 0 && len(s.joinOrder) >= s.rules.AutoStartAt {
		s.begin()
	}
	s.version++
	return true, nil
}

// Start begins a waiting game explicitly. It is a no-op once the game has
// started.
func (s *Session) Start() (bool, error) {
	if len(s.players) < MinPlayers {
		return false, ErrNotEnoughPlayers
	}
	if s.phase != PhaseWaiting {
		return false, nil
	}
	s.begin()
	s.version++
	return true, nil
}

func (s *Session) begin() {
	s.turnOrder = append([]string(nil), s.joinOrder...)
	s.current = 0
	s.pending = 0
	s.sixes = 0
	s.phase = PhaseActive
}

// Roll throws the die for the current player. The value is generated here,
// never taken from the client.
func (s *Session) Roll(playerID string) (int, error) {
	if err := s.checkTurn(playerID); err != nil {
		return 0, err
	}
	if s.pending != 0 {
		return 0, ErrDiceAlreadyPending
	}
	v := s.dice()
	if v < 1 || v > 6 {
		return 0, fmt.Errorf("die produced %d", v)
	}
	s.pending = v
	s.version++
	return v, nil
}

// Move spends the pending roll on one pawn. On any error the session is left
// exactly as it was, pending roll included.
func (s *Session) Move(playerID, pawnID string, dice int) (engine.Outcome, error) {
	if err := s.checkTurn(playerID); err != nil {
		return engine.Outcome{}, err
	}
	if s.pending == 0 || dice != s.pending {
		return engine.Outcome{}, ErrDiceMismatch
	}
	if p, ok := s.board.Find(pawnID); !ok || p.Owner != playerID {
		return engine.Outcome{}, ErrUnknownPawn
	}

	out, next, err := engine.Apply(s.layout, s.board, engine.Move{Owner: playerID, PawnID: pawnID, Dice: dice})
	if err != nil {
		return engine.Outcome{}, err
	}

	s.board = next
	s.pending = 0
	if out.Captured != nil {
		s.players[playerID].Captures++
	}
	s.version++

	if out.PlayerFinished {
		s.phase = PhaseFinished
		s.winner = playerID
		return out, nil
	}

	if dice == engine.EntryRoll {
		s.sixes++
		if s.rules.MaxConsecutiveSixes == 0 || s.sixes < s.rules.MaxConsecutiveSixes {
			return out, nil
		}
	}
	s.advance()
	return out, nil
}

// Pass gives up a roll that no pawn can use.
func (s *Session) Pass(playerID string) error {
	if err := s.checkTurn(playerID); err != nil {
		return err
	}
	if s.pending == 0 {
		return ErrNoPendingDice
	}
	if len(engine.LegalMoves(s.layout, s.board, playerID, s.pending)) > 0 {
		return ErrMovesAvailable
	}
	s.pending = 0
	s.advance()
	s.version++
	return nil
}

func (s *Session) checkTurn(playerID string) error {
	if s.phase != PhaseActive || s.turnOrder[s.current] != playerID {
		return ErrNotYourTurn
	}
	return nil
}

func (s *Session) advance() {
	s.sixes = 0
	s.current = engine.NextTurn(s.turnOrder, s.current, s.board.AllFinished)
}
