package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"codecampus/internal/api/middleware"
	"codecampus/internal/app/service"
	"codecampus/internal/common"

	"github.com/go-chi/chi/v5"
)

type DailyHandler struct {
	dailyService *service.DailyService
	judgeService *service.JudgeService
}

func NewDailyHandler(ds *service.DailyService, js *service.JudgeService) *DailyHandler {
	return &DailyHandler{dailyService: ds, judgeService: js}
}

func (h *DailyHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.getDaily)
	r.Post("/run", h.runDaily)
	r.Post("/submit", h.submitDaily)
}

type dailyJudgeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (h *DailyHandler) getDaily(w http.ResponseWriter, r *http.Request) {
	dq, err := h.dailyService.Current(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "No daily question for today")
		return
	}
	// The snapshot's hidden cases stay server-side; only samples go out.
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"daily_question": dq,
		"sample_cases":   dq.SampleCases(),
	})
}

func (h *DailyHandler) runDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req dailyJudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.judgeService.DailyRun(r.Context(), userID, req.Code, req.Language)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *DailyHandler) submitDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req dailyJudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.judgeService.DailySubmit(r.Context(), userID, req.Code, req.Language)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

// AdminDailyHandler exposes the manual rotation trigger.
type AdminDailyHandler struct {
	dailyService *service.DailyService
}

func NewAdminDailyHandler(ds *service.DailyService) *AdminDailyHandler {
	return &AdminDailyHandler{dailyService: ds}
}

func (h *AdminDailyHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Post("/rotate", h.rotate)
}

func (h *AdminDailyHandler) rotate(w http.ResponseWriter, r *http.Request) {
	dq, err := h.dailyService.SelectFor(r.Context(), time.Now())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dq)
}
