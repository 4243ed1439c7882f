package lobby

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ludo-backend/internal/session"
	"github.com/DoyleJ11/ludo-backend/pkg/types"
)

var ErrClosed = errors.New("lobby closed")

// BroadcastPort publishes an event to every current member of a room.
// Publish must not block on delivery.
type BroadcastPort interface {
	Publish(roomID string, evt types.Event)
}

// Recorder archives finished games.
type Recorder interface {
	RecordResult(ctx context.Context, final types.StateSnapshot) error
}

type Config struct {
	Session   session.Options
	Broadcast BroadcastPort
	Recorder  Recorder
	Logger    *zap.Logger
}

type Lobby struct {
	inbox     chan Msg
	session   *session.Session
	broadcast BroadcastPort
	recorder  Recorder
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewLobby(parent context.Context, roomID string, cfg Config) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Lobby{
		inbox:     make(chan Msg, 64), // Small buffer
		session:   session.New(roomID, cfg.Session),
		broadcast: cfg.Broadcast,
		recorder:  cfg.Recorder,
		log:       logger.With(zap.String("room_id", roomID)),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) RoomID() string { return l.session.RoomID() }

// Expose the inbox so tests or the dispatcher can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby has stopped.
func (l *Lobby) Done() <-chan struct{} { return l.done }

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- l.join(msg)
			case Start:
				msg.Reply <- l.start()
			case Roll:
				msg.Reply <- l.roll(msg)
			case Move:
				msg.Reply <- l.move(msg)
			case Pass:
				msg.Reply <- l.pass(msg)
			case GetState:
				snap := l.session.Snapshot()
				msg.Reply <- View{Version: snap.Version, Phase: snap.Phase, State: snap}
			case Shutdown:
				l.cancel()
				return
			}
		}
	}
}

func (l *Lobby) join(msg Join) Result {
	changed, err := l.session.Join(msg.PlayerID, msg.Name)
	if err != nil {
		return l.reject("join", msg.PlayerID, err)
	}
	if changed {
		l.log.Info("player joined",
			zap.String("player_id", msg.PlayerID),
			zap.String("name", msg.Name),
			zap.String("phase", string(l.session.Phase())),
		)
		l.publishState()
	}
	return Result{State: l.session.Snapshot()}
}

func (l *Lobby) start() Result {
	changed, err := l.session.Start()
	if err != nil {
		return l.reject("start", "", err)
	}
	if changed {
		l.log.Info("game started", zap.String("current_player", l.session.CurrentPlayer()))
		l.publishState()
	}
	return Result{State: l.session.Snapshot()}
}

func (l *Lobby) roll(msg Roll) Result {
	v, err := l.session.Roll(msg.PlayerID)
	if err != nil {
		return l.reject("roll", msg.PlayerID, err)
	}
	l.log.Debug("dice rolled", zap.String("player_id", msg.PlayerID), zap.Int("value", v))
	l.publish(types.DiceRolled(l.RoomID(), msg.PlayerID, v))
	l.publishState()
	return Result{Value: v, State: l.session.Snapshot()}
}

func (l *Lobby) move(msg Move) Result {
	out, err := l.session.Move(msg.PlayerID, msg.PawnID, msg.Dice)
	if err != nil {
		return l.reject("move", msg.PlayerID, err)
	}

	fields := []zap.Field{
		zap.String("player_id", msg.PlayerID),
		zap.String("pawn_id", msg.PawnID),
		zap.Int("dice", msg.Dice),
		zap.String("to", string(out.To.Zone)),
		zap.Int("index", out.To.Index),
	}
	if out.Captured != nil {
		fields = append(fields, zap.String("captured", out.Captured.ID), zap.Int("transferred", out.ScoreTransferred))
	}
	l.log.Debug("pawn moved", fields...)

	l.publishState()
	if l.session.Phase() == session.PhaseFinished {
		l.finish()
	}
	return Result{Outcome: &out, State: l.session.Snapshot()}
}

func (l *Lobby) pass(msg Pass) Result {
	if err := l.session.Pass(msg.PlayerID); err != nil {
		return l.reject("pass", msg.PlayerID, err)
	}
	l.log.Debug("turn passed", zap.String("player_id", msg.PlayerID))
	l.publishState()
	return Result{State: l.session.Snapshot()}
}

func (l *Lobby) finish() {
	final := l.session.Snapshot()
	l.log.Info("game finished", zap.String("winner", final.WinnerID), zap.Int("version", final.Version))
	if l.recorder == nil {
		return
	}
	// Archiving must never hold up the room.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.recorder.RecordResult(ctx, final); err != nil {
			l.log.Error("archive finished game", zap.Error(err))
		}
	}()
}

// Rejections go back to the requester only; nothing is broadcast.
func (l *Lobby) reject(op, playerID string, err error) Result {
	l.log.Debug("action rejected",
		zap.String("op", op),
		zap.String("player_id", playerID),
		zap.Error(err),
	)
	return Result{Err: err, State: l.session.Snapshot()}
}

func (l *Lobby) publishState() {
	l.publish(types.StateUpdated(l.session.Snapshot()))
}

func (l *Lobby) publish(evt types.Event) {
	if l.broadcast != nil {
		l.broadcast.Publish(l.RoomID(), evt)
	}
}
