package handler

import (
	"net/http"
	"strconv"

	"codecampus/internal/api/middleware"
	"codecampus/internal/app/service"
	"codecampus/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProgressHandler struct {
	judgeService *service.JudgeService
}

func NewProgressHandler(js *service.JudgeService) *ProgressHandler {
	return &ProgressHandler{judgeService: js}
}

func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard) // Public

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Get("/me", h.myProgress)
	})
}

func (h *ProgressHandler) myProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	progress, err := h.judgeService.Progress(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	entries, err := h.judgeService.Leaderboard(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
