package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dukerupert/goshop/internal/handler"
	"github.com/dukerupert/goshop/internal/live"
	"github.com/dukerupert/goshop/internal/middleware"
	"github.com/dukerupert/goshop/internal/model"
	"github.com/dukerupert/goshop/internal/shopping"
	ws "github.com/dukerupert/goshop/internal/websocket"
)

type Server struct {
	svc       *shopping.Service
	registry  *live.Registry
	hub       *ws.Hub
	views     ws.Views
	itemH     *handler.ItemHandler
	categoryH *handler.CategoryHandler
	sessionH  *handler.SessionHandler
	transferH *handler.TransferHandler
	stopFeed  func()
	logger    *slog.Logger
}

func New(svc *shopping.Service, registry *live.Registry, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	httpLogger := logger.With("component", "http")

	s := &Server{
		svc:       svc,
		registry:  registry,
		hub:       hub,
		views:     liveViews(svc),
		itemH:     handler.NewItemHandler(svc, httpLogger),
		categoryH: handler.NewCategoryHandler(svc, httpLogger),
		sessionH:  handler.NewSessionHandler(svc, httpLogger),
		transferH: handler.NewTransferHandler(svc, httpLogger),
		logger:    logger,
	}

	// Every committed change is broadcast to connected clients.
	s.stopFeed = registry.Listen(func(c model.Change) {
		hub.Broadcast(ws.NewChangeMessage(c))
	})
	return s
}

// liveViews are the queries a WebSocket client can subscribe to.
func liveViews(svc *shopping.Service) ws.Views {
	return ws.Views{
		"items": func() (any, error) {
			return svc.Search("")
		},
		"categories": func() (any, error) {
			return svc.ListCategories()
		},
		"session": func() (any, error) {
			items, err := svc.ActiveItems()
			if err != nil {
				return nil, err
			}
			return shopping.GroupByCategory(items), nil
		},
		"notes": func() (any, error) {
			return svc.SessionNotes()
		},
		"progress": func() (any, error) {
			return svc.Progress()
		},
	}
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.registry, s.views, s.logger.With("component", "websocket")))

	// Items
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("DELETE /api/items", s.itemH.DeleteAll)
	mux.HandleFunc("GET /api/items/grouped", s.itemH.Grouped)
	mux.HandleFunc("GET /api/items/suggest", s.itemH.Suggest)
	mux.HandleFunc("POST /api/items/select-all", s.itemH.SelectAll)
	mux.HandleFunc("POST /api/items/clear-all", s.itemH.ClearAll)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.itemH.Toggle)

	// Categories
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("PUT /api/categories/{name}", s.categoryH.Rename)
	mux.HandleFunc("DELETE /api/categories/{name}", s.categoryH.Delete)

	// Shopping session
	mux.HandleFunc("GET /api/session", s.sessionH.Get)
	mux.HandleFunc("POST /api/session/complete", s.sessionH.Complete)
	mux.HandleFunc("GET /api/session/share", s.sessionH.Share)
	mux.HandleFunc("GET /api/session/export", s.sessionH.Export)
	mux.HandleFunc("GET /api/session/notes", s.sessionH.ListNotes)
	mux.HandleFunc("POST /api/session/notes", s.sessionH.AddNote)
	mux.HandleFunc("DELETE /api/session/notes/{id}", s.sessionH.DeleteNote)
	mux.HandleFunc("POST /api/session/cart/{id}", s.sessionH.ToggleCart)
	mux.HandleFunc("DELETE /api/session/cart", s.sessionH.ClearCart)

	// Backup and CSV
	mux.HandleFunc("GET /api/backup", s.transferH.ExportBackup)
	mux.HandleFunc("POST /api/backup", s.transferH.ImportBackup)
	mux.HandleFunc("POST /api/csv", s.transferH.ImportCSV)
	mux.HandleFunc("GET /api/csv/template", s.transferH.CSVTemplate)

	var h http.Handler = mux
	h = middleware.LocalOnly(h)
	h = middleware.Recover(s.logger)(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"clients":       s.hub.ClientCount(),
		"subscriptions": s.registry.SubscriptionCount(),
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Only loopback addresses are accepted.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := checkLoopback(addr); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", "http://"+addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.stopFeed()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("listen address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("listen address %q: only loopback addresses are allowed", addr)
	}
	return nil
}
