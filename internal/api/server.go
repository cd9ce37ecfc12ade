package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"simarket/internal/catalog"
	"simarket/internal/clock"
	"simarket/internal/market"
	"simarket/internal/portfolio"
)

// Server exposes the engine's read API. All state mutation stays inside the
// scheduler; the HTTP surface only observes.
type Server struct {
	log   *slog.Logger
	cat   *catalog.Catalog
	ledg  *market.Ledger
	econ  *market.Economy
	clk   *clock.GameClock
	book  *portfolio.Book
	sched *market.Scheduler
	mux   *chi.Mux
}

// New wires the read API over the engine components.
func New(logger *slog.Logger, cat *catalog.Catalog, ledg *market.Ledger, econ *market.Economy, clk *clock.GameClock, book *portfolio.Book, sched *market.Scheduler) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:   logger,
		cat:   cat,
		ledg:  ledg,
		econ:  econ,
		clk:   clk,
		book:  book,
		sched: sched,
		mux:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/assets", s.handleAssets)
		r.Get("/assets/{id}", s.handleAsset)
		r.Get("/prices", s.handlePrices)
		r.Get("/prices/{id}", s.handlePrice)
		r.Get("/market", s.handleMarket)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/clock", s.handleClock)
	})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	assets := s.cat.All()
	if raw := r.URL.Query().Get("class"); raw != "" {
		class, err := catalog.ParseClass(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		assets = s.cat.ByClass(class)
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))
	asset, ok := s.cat.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, catalog.ErrUnknownAsset.Error())
		return
	}
	rec, tracked := s.ledg.Record(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"asset":    asset,
		"price":    s.ledg.Get(id),
		"tracked":  tracked,
		"record":   rec,
		"calendar": market.CalendarFor(asset.Class, s.clk.Now()),
	})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	var class catalog.Class
	if raw := r.URL.Query().Get("class"); raw != "" {
		parsed, err := catalog.ParseClass(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		class = parsed
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"seq":    s.ledg.Seq(),
		"prices": s.ledg.AllPrices(class),
	})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))
	if _, ok := s.cat.Get(id); !ok {
		writeError(w, http.StatusNotFound, catalog.ErrUnknownAsset.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"asset_id": id,
		"price":    s.ledg.Get(id),
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	reading := s.clk.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"macro":     s.econ.Snapshot(),
		"calendar":  market.CalendarSnapshot(reading),
		"state":     s.sched.State().String(),
		"last_tick": s.sched.LastTick(),
		"seq":       s.ledg.Seq(),
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"positions":   s.book.Positions(),
		"total_value": s.book.TotalValue(),
	})
}

func (s *Server) handleClock(w http.ResponseWriter, _ *http.Request) {
	reading := s.clk.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"reading": reading,
		"hour":    reading.Hour(),
		"weekday": reading.Weekday().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
