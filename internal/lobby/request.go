package lobby

import "context"

// The helpers below wrap the inbox round trip for callers that want a plain
// function call. They give up when ctx ends or the lobby stops.

func (l *Lobby) Join(ctx context.Context, playerID, name string) (Result, error) {
	reply := make(chan Result, 1)
	return l.request(ctx, Join{PlayerID: playerID, Name: name, Reply: reply}, reply)
}

func (l *Lobby) Start(ctx context.Context) (Result, error) {
	reply := make(chan Result, 1)
	return l.request(ctx, Start{Reply: reply}, reply)
}

func (l *Lobby) Roll(ctx context.Context, playerID string) (Result, error) {
	reply := make(chan Result, 1)
	return l.request(ctx, Roll{PlayerID: playerID, Reply: reply}, reply)
}

func (l *Lobby) Move(ctx context.Context, playerID, pawnID string, dice int) (Result, error) {
	reply := make(chan Result, 1)
	return l.request(ctx, Move{PlayerID: playerID, PawnID: pawnID, Dice: dice, Reply: reply}, reply)
}

func (l *Lobby) Pass(ctx context.Context, playerID string) (Result, error) {
	reply := make(chan Result, 1)
	return l.request(ctx, Pass{PlayerID: playerID, Reply: reply}, reply)
}

func (l *Lobby) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-l.done:
		select {
		case v := <-reply:
			return v, nil
		default:
			return View{}, ErrClosed
		}
	}
}

func (l *Lobby) request(ctx context.Context, msg Msg, reply chan Result) (Result, error) {
	if err := l.send(ctx, msg); err != nil {
		return Result{}, err
	}
	select {
	case r := <-reply:
		return r, r.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-l.done:
		// the reply may have landed just before the lobby stopped
		select {
		case r := <-reply:
			return r, r.Err
		default:
			return Result{}, ErrClosed
		}
	}
}

func (l *Lobby) send(ctx context.Context, msg Msg) error {
	select {
	case l.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}
