package stream

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/zhouzirui/papi/backend/internal/service/chat"
	"github.com/zhouzirui/papi/backend/internal/service/launch"
	"github.com/zhouzirui/papi/backend/pkg/utils"
)

// Handler streams the simulated launch sequence via Server-Sent Events
type Handler struct {
	simulator *launch.Simulator
	chatSvc   *chatService.Service
	logger    *zap.Logger
}

// New creates a new stream handler
func New(simulator *launch.Simulator, chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{simulator: simulator, chatSvc: chatSvc, logger: logger}
}

// StreamResponse is the payload of the closing event.
type StreamResponse struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId,omitempty"`
	Target    string `json:"target,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RegisterRoutes 注册模拟启动路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/launch", h.handleLaunch)
}

// handleLaunch streams one "status" event per step, then "done". Only adult
// sessions receive launch directives, so only they may watch one.
func (h *Handler) handleLaunch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	target := strings.TrimSpace(r.URL.Query().Get("target"))
	if target == "" {
		utils.RespondError(w, http.StatusBadRequest, "target query parameter is required")
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !session.Tier.Adult() {
		utils.RespondError(w, http.StatusForbidden, "launch requires an adult tier")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)

	err = h.simulator.Run(r.Context(), target, func(step launch.Step) error {
		return utils.SendSSEEvent(w, flusher, "status", step)
	})
	if err != nil {
		if r.Context().Err() != nil {
			h.logger.Debug("launch stream closed by client", zap.String("session", sessionID))
			return
		}
		h.logger.Warn("launch stream failed", zap.String("session", sessionID), zap.Error(err))
		_ = utils.SendSSEEvent(w, flusher, "error", StreamResponse{Event: "error", SessionID: sessionID, Error: err.Error()})
		return
	}

	_ = utils.SendSSEEvent(w, flusher, "done", StreamResponse{
		Event:     "done",
		SessionID: sessionID,
		Target:    target,
		Finished:  true,
	})
}
