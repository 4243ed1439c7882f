package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ludo-backend/internal/engine"
)

// fixedDice returns the given rolls in order, then repeats the last one.
func fixedDice(rolls ...int) func() int {
	i := 0
	return func() int {
		v := rolls[min(i, len(rolls)-1)]
		i++
		return v
	}
}

func newSession(t *testing.T, rules Rules, rolls ...int) *Session {
	t.Helper()
	return New("R1", Options{Layout: engine.DefaultLayout(), Rules: rules, Dice: fixedDice(rolls...)})
}

func activeSession(t *testing.T, rolls ...int) *Session {
	t.Helper()
	s := newSession(t, DefaultRules(), rolls...)
	_, err := s.Join("A", "Alice")
	require.NoError(t, err)
	_, err = s.Join("B", "Bob")
	require.NoError(t, err)
	require.Equal(t, PhaseActive, s.Phase())
	return s
}

func setPawn(s *Session, pawnID string, pos engine.Position, score int) {
	for i := range s.board.Pawns {
		if s.board.Pawns[i].ID == pawnID {
			s.board.Pawns[i].Position = pos
			s.board.Pawns[i].Score = score
		}
	}
}

func TestJoin_AutoStartsAtSecondPlayer(t *testing.T) {
	s := newSession(t, DefaultRules(), 1)

	changed, err := s.Join("A", "Alice")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, PhaseWaiting, s.Phase())
	assert.Equal(t, "", s.CurrentPlayer())

	_, err = s.Join("B", "Bob")
	require.NoError(t, err)
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, "A", s.CurrentPlayer())

	snap := s.Snapshot()
	assert.Equal(t, []string{"A", "B"}, snap.TurnOrder)
	assert.Equal(t, "red", snap.Players[0].Color)
	assert.Equal(t, "green", snap.Players[1].Color)
	assert.Len(t, snap.Players[0].Pawns, engine.PawnsPerPlayer)
}

func TestJoin_Idempotent(t *testing.T) {
	s := newSession(t, DefaultRules(), 1)
	_, err := s.Join("A", "Alice")
	require.NoError(t, err)
	once := s.Snapshot()

	changed, err := s.Join("A", "Alice again")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, once, s.Snapshot())
}

func TestJoin_Rejections(t *testing.T) {
	t.Run("game already started", func(t *testing.T) {
		s := activeSession(t, 1)
		_, err := s.Join("C", "Carol")
		assert.ErrorIs(t, err, ErrGameAlreadyStarted)
	})

	t.Run("room full", func(t *testing.T) {
		s := newSession(t, Rules{}, 1)
		for _, id := range []string{"A", "B", "C", "D"} {
			_, err := s.Join(id, id)
			require.NoError(t, err)
		}
		assert.Equal(t, PhaseWaiting, s.Phase())
		_, err := s.Join("E", "Eve")
		assert.ErrorIs(t, err, ErrRoomFull)
		assert.Equal(t, "blue", s.Snapshot().Players[3].Color)
	})

	t.Run("empty id", func(t *testing.T) {
		s := newSession(t, DefaultRules(), 1)
		_, err := s.Join("", "nobody")
		assert.ErrorIs(t, err, ErrInvalidPlayer)
	})
}

func TestStart(t *testing.T) {
	s := newSession(t, Rules{}, 1)
	_, err := s.Start()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, _ = s.Join("A", "Alice")
	_, _ = s.Join("B", "Bob")
	_, _ = s.Join("C", "Carol")
	assert.Equal(t, PhaseWaiting, s.Phase())

	changed, err := s.Start()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, []string{"A", "B", "C"}, s.Snapshot().TurnOrder)

	changed, err = s.Start()
	require.NoError(t, err)
	assert.False(t, changed, "second start is a no-op")
}

func TestTurnExclusivity(t *testing.T) {
	s := activeSession(t, 6)
	before := s.Snapshot()

	_, err := s.Roll("B")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = s.Move("B", "B-0", 6)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.ErrorIs(t, s.Pass("B"), ErrNotYourTurn)
	assert.Equal(t, before, s.Snapshot())
}

func TestRoll(t *testing.T) {
	s := activeSession(t, 4)

	v, err := s.Roll("A")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 4, s.Snapshot().PendingDice)

	_, err = s.Roll("A")
	assert.ErrorIs(t, err, ErrDiceAlreadyPending)
}

func TestRoll_NotActive(t *testing.T) {
	s := newSession(t, DefaultRules(), 6)
	_, _ = s.Join("A", "Alice")
	_, err := s.Roll("A")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestMove_DiceMismatchLeavesStateUntouched(t *testing.T) {
	s := activeSession(t, 6)
	_, err := s.Move("A", "A-0", 6)
	assert.ErrorIs(t, err, ErrDiceMismatch, "no roll yet")

	_, err = s.Roll("A")
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.Move("A", "A-0", 5)
	assert.ErrorIs(t, err, ErrDiceMismatch)
	assert.Equal(t, before, s.Snapshot())
}

func TestMove_UnknownPawn(t *testing.T) {
	s := activeSession(t, 6)
	_, _ = s.Roll("A")

	_, err := s.Move("A", "B-0", 6)
	assert.ErrorIs(t, err, ErrUnknownPawn)
	_, err = s.Move("A", "nope", 6)
	assert.ErrorIs(t, err, ErrUnknownPawn)
}

func TestScenario_NoExitWithoutSix(t *testing.T) {
	s := activeSession(t, 3)
	v, err := s.Roll("A")
	require.NoError(t, err)
	require.Equal(t, 3, v)
	before := s.Snapshot()
	assert.Empty(t, before.LegalPawnIDs)

	_, err = s.Move("A", "A-0", 3)
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 3, s.Snapshot().PendingDice)

	// nothing can move, so the roll is passed and the turn moves on
	require.NoError(t, s.Pass("A"))
	assert.Equal(t, "B", s.CurrentPlayer())
	assert.Equal(t, 0, s.Snapshot().PendingDice)
}

func TestScenario_SixEntersAndGrantsExtraTurn(t *testing.T) {
	s := activeSession(t, 6)
	_, err := s.Roll("A")
	require.NoError(t, err)

	out, err := s.Move("A", "A-0", 6)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{Zone: engine.ZoneTrack, Index: 0}, out.To)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.PendingDice)
	assert.Equal(t, "A", snap.CurrentPlayerID)
}

func TestMove_NonSixAdvancesTurn(t *testing.T) {
	s := activeSession(t, 2)
	setPawn(s, "A-0", engine.Position{Zone: engine.ZoneTrack, Index: 4}, 4)
	_, _ = s.Roll("A")

	_, err := s.Move("A", "A-0", 2)
	require.NoError(t, err)
	assert.Equal(t, "B", s.CurrentPlayer())

	_, _ = s.Roll("B")
	assert.Equal(t, 2, s.Snapshot().PendingDice)
	require.NoError(t, s.Pass("B"))
	assert.Equal(t, "A", s.CurrentPlayer(), "turn wraps around")
}

func TestScenario_CaptureTransfersScore(t *testing.T) {
	s := activeSession(t, 3)
	setPawn(s, "A-0", engine.Position{Zone: engine.ZoneTrack, Index: 10}, 10)
	// green's Track(0) is the shared square 13
	setPawn(s, "B-0", engine.Position{Zone: engine.ZoneTrack, Index: 0}, 9)
	before := s.Snapshot()

	_, _ = s.Roll("A")
	out, err := s.Move("A", "A-0", 3)
	require.NoError(t, err)
	require.NotNil(t, out.Captured)
	assert.Equal(t, "B-0", out.Captured.ID)

	after := s.Snapshot()
	victim := after.Players[1].Pawns[0]
	assert.Equal(t, "home", victim.Zone)
	assert.Equal(t, 0, victim.Score)

	gain := after.Scores.PlayerScores["A"] - before.Scores.PlayerScores["A"]
	loss := before.Scores.PlayerScores["B"] - after.Scores.PlayerScores["B"]
	assert.Equal(t, 3+9, gain, "steps plus transferred score")
	assert.Equal(t, out.ScoreTransferred, loss)
	assert.Equal(t, 1, after.Scores.Captures["A"])
}

func TestPass_Rejections(t *testing.T) {
	s := activeSession(t, 6)
	assert.ErrorIs(t, s.Pass("A"), ErrNoPendingDice)

	_, _ = s.Roll("A")
	assert.ErrorIs(t, s.Pass("A"), ErrMovesAvailable)
	assert.Equal(t, "A", s.CurrentPlayer())
}

func TestMove_FinishEndsGame(t *testing.T) {
	s := activeSession(t, 2)
	for slot := 0; slot < 3; slot++ {
		setPawn(s, engine.PawnID("A", slot), engine.Position{Zone: engine.ZoneFinished}, 0)
	}
	setPawn(s, "A-3", engine.Position{Zone: engine.ZoneStretch, Index: 3}, 0)

	_, _ = s.Roll("A")
	out, err := s.Move("A", "A-3", 2)
	require.NoError(t, err)
	assert.True(t, out.PlayerFinished)

	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, "A", s.Winner())
	assert.Equal(t, "", s.CurrentPlayer())

	_, err = s.Roll("B")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	changed, err := s.Start()
	require.NoError(t, err)
	assert.False(t, changed, "finished is terminal")
}

func TestMove_ConsecutiveSixCap(t *testing.T) {
	s := newSession(t, Rules{AutoStartAt: 2, MaxConsecutiveSixes: 2}, 6)
	_, _ = s.Join("A", "Alice")
	_, _ = s.Join("B", "Bob")

	_, _ = s.Roll("A")
	_, err := s.Move("A", "A-0", 6)
	require.NoError(t, err)
	assert.Equal(t, "A", s.CurrentPlayer())

	_, _ = s.Roll("A")
	_, err = s.Move("A", "A-1", 6)
	require.NoError(t, err)
	assert.Equal(t, "B", s.CurrentPlayer(), "second six in a row passes the turn")
}

func TestRoll_RejectsBadDie(t *testing.T) {
	s := activeSession(t, 0)
	_, err := s.Roll("A")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotYourTurn))
	assert.Equal(t, 0, s.Snapshot().PendingDice)
}

func TestRollDie_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		v := RollDie()
		if v < 1 || v > 6 {
			t.Fatalf("die rolled %d", v)
		}
	}
}
