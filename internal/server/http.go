package server

import (
	"encoding/json"
	"net/http"

	"github.com/matryer/way"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/internal/engine"
	"github.com/ranihwanifactory/stairpang/internal/network"
	"github.com/ranihwanifactory/stairpang/internal/profile"
	storesync "github.com/ranihwanifactory/stairpang/internal/sync"
	"github.com/ranihwanifactory/stairpang/internal/version"
	"github.com/ranihwanifactory/stairpang/pkg/api"
	"github.com/ranihwanifactory/stairpang/pkg/logger"
)

// Service - общие зависимости всех клиентских сессий.
type Service struct {
	Store    storesync.Channel
	Profiles *profile.MemoryStore
	Hub      *network.Broadcaster
	Cfg      engine.Config
}

// Server принимает HTTP и WebSocket подключения.
type Server struct {
	Svc    *Service
	Port   string
	router *way.Router
}

func New(svc *Service, port string) *Server {
	s := &Server{
		Svc:  svc,
		Port: port,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", "/ws", enableCORS(s.handleWS))
	s.router.HandleFunc("GET", "/rooms", enableCORS(s.handleRooms))
	s.router.HandleFunc("GET", "/health", enableCORS(s.handleHealth))
	s.router.HandleFunc("GET", "/version", enableCORS(s.handleVersion))
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	logger.Log.Infof("🏁 Stairpang server running on :%s", s.Port)
	return http.ListenAndServe(":"+s.Port, s.router)
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("Upgrade error:", err)
		return
	}

	client := NewClient(s.Svc, conn)

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

// handleRooms отдает список открытых комнат для экрана лобби.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	waiting := s.Svc.Store.ListWaiting()

	out := make([]api.RoomSummary, 0, len(waiting))
	for _, rec := range waiting {
		out = append(out, api.RoomSummary{
			ID:          rec.ID,
			Code:        rec.Code,
			Goal:        rec.Goal,
			PlayerCount: len(rec.Players),
			MaxPlayers:  domain.MaxPlayers,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		logger.Log.WithError(err).Warn("failed to encode room list")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Log.WithError(err).Debug("health write failed")
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(version.Info()); err != nil {
		logger.Log.WithError(err).Warn("failed to encode version info")
	}
}
