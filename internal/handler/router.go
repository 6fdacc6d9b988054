package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/handler/buddy"
	"github.com/zhouzirui/papi/backend/internal/handler/chat"
	"github.com/zhouzirui/papi/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/papi/backend/internal/middleware"
	chatModel "github.com/zhouzirui/papi/backend/internal/model/chat"
	chatService "github.com/zhouzirui/papi/backend/internal/service/chat"
	"github.com/zhouzirui/papi/backend/internal/service/launch"
	"github.com/zhouzirui/papi/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, simulator *launch.Simulator, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(corsOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	chatHandler := chat.New(chatSvc, logger)
	buddyHandler := buddy.New(chatModel.Buddies)
	streamHandler := stream.New(simulator, chatSvc, logger)

	r.Route("/api", func(api chi.Router) {
		buddyHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	return r
}
