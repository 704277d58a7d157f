// Package api serves a parsed message snapshot and its aggregates over
// a small read-only HTTP API.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/danuhaha/telestats/internal/message"
	"github.com/danuhaha/telestats/internal/timeline"
)

type Server struct {
	router   *chi.Mux
	port     int
	instance uuid.UUID
	msgs     []message.Message
}

// NewServer wraps a timestamp-sorted snapshot. The snapshot is owned by
// the server and never mutated, so handlers need no locking.
func NewServer(port int, msgs []message.Message) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		instance: uuid.New(),
		msgs:     msgs,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/stats", s.stats)
	router.Get("/api/v1/conversations", s.conversations)
	router.Get("/api/v1/messages", s.messages)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr, "instance", s.instance)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":   "ok",
		"instance": s.instance.String(),
	})
}

type statsResponse struct {
	Messages      int            `json:"messages"`
	ByAuthor      map[string]int `json:"by_author"`
	Start         string         `json:"start,omitempty"`
	End           string         `json:"end,omitempty"`
	LongestPause  float64        `json:"longest_pause_min"`
	Photos        int            `json:"photos"`
	Stickers      int            `json:"stickers"`
	Voice         int            `json:"voice"`
	Audio         int            `json:"audio"`
	VideoMessages int            `json:"video_messages"`
	VideoFiles    int            `json:"video_files"`
	Links         int            `json:"links"`
	Forwarded     int            `json:"forwarded"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Messages: len(s.msgs),
		ByAuthor: make(map[string]int),
	}
	for _, m := range s.msgs {
		resp.ByAuthor[m.Author]++
		if m.HasPhoto {
			resp.Photos++
		}
		if m.HasSticker {
			resp.Stickers++
		}
		if m.HasVoice {
			resp.Voice++
		}
		if m.HasAudio {
			resp.Audio++
		}
		if m.HasVideoMessage {
			resp.VideoMessages++
		}
		if m.HasVideoFile {
			resp.VideoFiles++
		}
		if m.IsLink {
			resp.Links++
		}
		if m.IsForwarded {
			resp.Forwarded++
		}
	}
	if len(s.msgs) > 0 {
		resp.Start = s.msgs[0].Timestamp.Format(message.TimeLayout)
		resp.End = s.msgs[len(s.msgs)-1].Timestamp.Format(message.TimeLayout)
		pause, _, _ := timeline.LongestPause(s.msgs)
		resp.LongestPause = pause.Minutes()
	}
	writeJSON(w, resp)
}

type conversationSummary struct {
	ID          int     `json:"id"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	DurationMin float64 `json:"duration_min"`
	NumMessages int     `json:"num_messages"`
}

func (s *Server) conversations(w http.ResponseWriter, r *http.Request) {
	gap := timeline.DefaultGap
	if v := r.URL.Query().Get("gap_min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid gap_min", http.StatusBadRequest)
			return
		}
		gap = time.Duration(n) * time.Minute
	}

	summaries := []conversationSummary{}
	for i, run := range timeline.Split(s.msgs, gap) {
		start := run[0].Timestamp
		end := run[len(run)-1].Timestamp
		summaries = append(summaries, conversationSummary{
			ID:          i,
			Start:       start.Format(message.TimeLayout),
			End:         end.Format(message.TimeLayout),
			DurationMin: end.Sub(start).Minutes(),
			NumMessages: len(run),
		})
	}
	writeJSON(w, summaries)
}

func (s *Server) messages(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 100)
	if offset < 0 || limit <= 0 {
		http.Error(w, "invalid offset or limit", http.StatusBadRequest)
		return
	}

	if offset > len(s.msgs) {
		offset = len(s.msgs)
	}
	end := offset + limit
	if end > len(s.msgs) {
		end = len(s.msgs)
	}

	data, err := message.Marshal(s.msgs[offset:end])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
