// Package httpapi はスナップショットの読み出しと手動更新のHTTPハンドラ。
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sharehouse-times/internal/pipeline"
	"sharehouse-times/internal/store"
)

// Runner は1回分の更新を実行するもの（*pipeline.Updater）
type Runner interface {
	Run(ctx context.Context) (*pipeline.RunResult, error)
}

// TriggerResponse は手動更新のレスポンス
type TriggerResponse struct {
	Success     bool   `json:"success"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	Count       int    `json:"count"`
	Error       string `json:"error,omitempty"`
}

// NewTriggerResponse は実行結果からステータスとレスポンスを作る
func NewTriggerResponse(res *pipeline.RunResult, err error) (int, TriggerResponse) {
	if err != nil {
		return http.StatusInternalServerError, TriggerResponse{Success: false, Error: err.Error()}
	}
	return http.StatusOK, TriggerResponse{
		Success:     true,
		LastUpdated: res.Snapshot.LastUpdated,
		Count:       res.Snapshot.UpdateCount,
	}
}

// Authorized は UPDATE_TOKEN が設定されていれば Bearer トークンを照合する
func Authorized(header, token string) bool {
	if token == "" {
		return true
	}
	got, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) == 1
}

// Server はHTTPハンドラ一式
type Server struct {
	Store       store.KV
	Key         string
	Runner      Runner
	UpdateToken string
	Log         *slog.Logger
}

// Router はルーティング済みのハンドラを返す
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/api/news", s.handleNews)
	r.Post("/api/update-news", s.handleUpdate)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNews は保存済みのスナップショットを返す
//
// ?region=japan|world と ?category=<key> で絞り込める。絞り込んだ場合も
// lastUpdated は元のまま、updateCount は返す件数になる。
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := pipeline.LoadSnapshot(ctx, s.Store, s.Key)
	if err != nil {
		s.Log.Error("load snapshot", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	region := pipeline.Region(strings.TrimSpace(r.URL.Query().Get("region")))
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if region != "" || category != "" {
		filtered := make([]pipeline.NewsItem, 0, len(snap.News))
		for _, item := range snap.News {
			if region != "" && item.Region != region {
				continue
			}
			if category != "" && !hasCategory(item, category) {
				continue
			}
			filtered = append(filtered, item)
		}
		snap.News = filtered
		snap.UpdateCount = len(filtered)
	}

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !Authorized(r.Header.Get("Authorization"), s.UpdateToken) {
		writeJSON(w, http.StatusUnauthorized, TriggerResponse{Success: false, Error: "unauthorized"})
		return
	}

	s.Log.Info("manual update triggered", slog.String("request_id", middleware.GetReqID(r.Context())))
	res, err := s.Runner.Run(r.Context())
	if err != nil {
		s.Log.Error("manual update failed", slog.Any("err", err))
	}
	status, body := NewTriggerResponse(res, err)
	writeJSON(w, status, body)
}

func hasCategory(item pipeline.NewsItem, key string) bool {
	if item.Category == key {
		return true
	}
	for _, c := range item.Categories {
		if c == key {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
