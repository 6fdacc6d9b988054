package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/model/chat"
	chatService "github.com/zhouzirui/papi/backend/internal/service/chat"
	"github.com/zhouzirui/papi/backend/pkg/utils"
)

// Handler 会话与聊天的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Post("/sessions/{sessionID}/login", h.handleLogin)
	r.Delete("/sessions/{sessionID}/login", h.handleLogout)
	r.Put("/sessions/{sessionID}/avatar", h.handleSetAvatar)
	r.Get("/sessions/{sessionID}/messages", h.handleTranscript)
	r.Post("/sessions/{sessionID}/messages", h.handleTurn)
}

// handleCreateSession 创建未登录的会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleLogin 用密钥解析访问等级
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Secret string `json:"secret"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.chatSvc.Login(r.Context(), chi.URLParam(r, "sessionID"), payload.Secret)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleLogout 清空会话
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Logout(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetAvatar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Avatar string `json:"avatar"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.chatSvc.SetAvatar(r.Context(), chi.URLParam(r, "sessionID"), payload.Avatar)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleTurn 处理一轮对话
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chatSvc.Turn(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("chat request failed", zap.Error(err))
		utils.RespondError(w, status, "internal error")
		return
	}
	utils.RespondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrUnresolvedTier), errors.Is(err, chat.ErrTierInvalid):
		return http.StatusForbidden
	case errors.Is(err, chat.ErrTierLocked):
		return http.StatusConflict
	case errors.Is(err, chatService.ErrEmptyMessage), errors.Is(err, chat.ErrAvatarInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
