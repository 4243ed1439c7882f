package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ludo-backend/internal/broadcast"
	"github.com/DoyleJ11/ludo-backend/internal/dispatch"
	"github.com/DoyleJ11/ludo-backend/internal/history"
	"github.com/DoyleJ11/ludo-backend/internal/hub"
	"github.com/DoyleJ11/ludo-backend/internal/ws"
)

// MatchHistory lists archived games.
type MatchHistory interface {
	Recent(ctx context.Context, limit int) ([]history.MatchRecord, error)
}

type Deps struct {
	Hub       *hub.Hub
	History   MatchHistory // optional
	Fanout    *broadcast.Fanout
	Logger    *zap.Logger
	WSOptions ws.Options
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Post("/rooms", CreateRoom(d.Hub))
	r.Get("/rooms", ListRooms(d.Hub))
	r.Get("/rooms/{roomID}", GetRoom(d.Hub))
	if d.History != nil {
		r.Get("/matches", RecentMatches(d.History))
	}
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(dispatch.New(d.Hub, d.Logger), d.Fanout, d.Logger, d.WSOptions))
	return r
}
