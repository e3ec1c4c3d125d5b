package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vadiminshakov/redbet/internal/domain"
	"github.com/vadiminshakov/redbet/internal/events"
)

type historyReader interface {
	Paginate(page, pageSize int) domain.HistoryPage
}

type wagerDesk interface {
	OpenWager(ctx context.Context, rawAmount string, kind domain.WagerKind) (domain.WagerRecord, error)
	CheckBalance(ctx context.Context) error
	ClearHistory() error
	LastStake() int64
}

type changeFeed interface {
	Subscribe() chan events.Change
	Unsubscribe(chan events.Change)
}

// Server exposes the HTML dashboard and the JSON API over HTTP.
type Server struct {
	addr            string
	pageSize        int
	shutdownTimeout time.Duration
	history         historyReader
	desk            wagerDesk
	feed            changeFeed
	logger          *zap.Logger
}

// NewServer creates a dashboard server bound to addr.
func NewServer(addr string, pageSize int, shutdownTimeout time.Duration, history historyReader, desk wagerDesk, feed changeFeed, logger *zap.Logger) *Server {
	if pageSize < 1 {
		pageSize = 30
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	return &Server{
		addr:            addr,
		pageSize:        pageSize,
		shutdownTimeout: shutdownTimeout,
		history:         history,
		desk:            desk,
		feed:            feed,
		logger:          logger,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/api/history", s.handleHistory)
	r.Post("/api/wagers", s.handleOpenWager)
	r.Post("/api/history/clear", s.handleClearHistory)
	r.Post("/api/balance", s.handleBalance)
	r.Get("/events", s.handleEvents)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}
	pageSize := s.pageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}

	writeJSON(w, http.StatusOK, s.history.Paginate(page, pageSize))
}

type openWagerRequest struct {
	Amount string `json:"amount"`
	Kind   string `json:"kind"`
}

func (s *Server) handleOpenWager(w http.ResponseWriter, r *http.Request) {
	var req openWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	record, err := s.desk.OpenWager(r.Context(), req.Amount, domain.WagerKind(req.Kind))
	if err != nil {
		s.logger.Warn("open wager failed", zap.String("kind", req.Kind), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, record)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.desk.ClearHistory(); err != nil {
		s.logger.Error("clear history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if err := s.desk.CheckBalance(r.Context()); err != nil {
		s.logger.Warn("balance check failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to request balance")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	changes := s.feed.Subscribe()
	defer s.feed.Unsubscribe(changes)

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case change, open := <-changes:
			if !open {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				s.logger.Warn("event stream marshal failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\n", change.Kind)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
