package buddy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/papi/backend/internal/model/chat"
	"github.com/zhouzirui/papi/backend/pkg/utils"
)

// Handler 儿童头像目录的HTTP处理器
type Handler struct {
	buddies []chat.Buddy
}

// New 创建头像目录处理器
func New(buddies []chat.Buddy) *Handler {
	return &Handler{buddies: buddies}
}

// RegisterRoutes 注册头像相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/buddies", h.handleListBuddies)
}

// handleListBuddies 列出所有可选头像
func (h *Handler) handleListBuddies(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"buddies": h.buddies})
}
