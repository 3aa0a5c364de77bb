// ABOUTME: HTTP handlers for logs, progress, team stats, shop, gifts, and commitments.
// ABOUTME: Users are addressed by display name; the tribe comes from ?tribe= or the body.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/models"
)

type setRequest struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

type exerciseRequest struct {
	Name string       `json:"name"`
	Sets []setRequest `json:"sets"`
}

type createLogRequest struct {
	User            string            `json:"user"`
	UserID          string            `json:"user_id"`
	Tribe           string            `json:"tribe"`
	Kind            string            `json:"kind"`
	Date            *time.Time        `json:"date"`
	DurationMinutes int               `json:"duration_minutes"`
	Calories        *int              `json:"calories"`
	Vibes           *int              `json:"vibes"`
	Activity        string            `json:"activity"`
	Exercises       []exerciseRequest `json:"exercises"`
}

type createLogResponse struct {
	Log    *models.WorkoutLog        `json:"log"`
	Badges []models.Badge            `json:"badges"`
	Quests *gamification.QuestResult `json:"quests"`
}

type breakdownResponse struct {
	User     string                      `json:"user"`
	Workouts []gamification.LogBreakdown `json:"workouts"`
	TotalXP  int                         `json:"total_xp"`
}

type giftRequest struct {
	To     string `json:"to"`
	GiftID string `json:"gift_id"`
}

type commitRequest struct {
	At time.Time `json:"at"`
}

// profileFromRequest builds a profile from the {user} path param and ?tribe=.
func profileFromRequest(r *http.Request) models.UserProfile {
	user := chi.URLParam(r, "user")
	id := r.URL.Query().Get("user_id")
	if id == "" {
		id = user
	}
	return models.UserProfile{ID: id, DisplayName: user, TribeID: r.URL.Query().Get("tribe")}
}

func (a *API) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": models.CatalogVersion,
		"badges":  models.Badges,
	})
}

func (a *API) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.User = strings.TrimSpace(req.User)
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user is required")
		return
	}
	kind, err := models.ParseWorkoutKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if kind == models.KindCommitment {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "commitments are created via /commit")
		return
	}
	if req.DurationMinutes < 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "duration_minutes must not be negative")
		return
	}

	profile := models.UserProfile{ID: req.UserID, DisplayName: req.User, TribeID: req.Tribe}
	if profile.ID == "" {
		profile.ID = req.User
	}

	l := models.NewWorkoutLog(req.User, kind).
		WithTribe(req.Tribe).
		WithDuration(req.DurationMinutes)
	if req.Date != nil {
		l.WithDate(*req.Date)
	}
	if req.Calories != nil {
		l.WithCalories(*req.Calories)
	}
	if req.Vibes != nil {
		l.WithVibes(*req.Vibes)
	}
	if req.Activity != "" {
		l.WithActivity(req.Activity)
	}
	for _, e := range req.Exercises {
		ex := models.Exercise{Name: e.Name}
		for _, s := range e.Sets {
			ex.Sets = append(ex.Sets, models.Set{Weight: s.Weight, Reps: s.Reps, Completed: s.Completed})
		}
		l.WithExercise(ex)
	}

	res, err := a.engine.LogWorkout(r.Context(), l, profile)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	if res.Badges == nil {
		res.Badges = []models.Badge{}
	}
	writeJSON(w, http.StatusCreated, createLogResponse{Log: l, Badges: res.Badges, Quests: res.Quests})
}

func (a *API) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	l, err := a.repo.GetLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	profile := models.UserProfile{ID: l.User, DisplayName: l.User, TribeID: l.TribeID}
	if id := r.URL.Query().Get("user_id"); id != "" {
		profile.ID = id
	}
	if err := a.engine.Remove(r.Context(), l, profile); err != nil {
		a.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	p, err := a.engine.Progress(r.Context(), profileFromRequest(r))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	profile := profileFromRequest(r)
	rows, err := a.engine.Breakdown(r.Context(), profile)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	resp := breakdownResponse{User: profile.DisplayName, Workouts: rows}
	if resp.Workouts == nil {
		resp.Workouts = []gamification.LogBreakdown{}
	}
	for _, row := range rows {
		resp.TotalXP += row.Total
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.engine.TeamStats().Get(r.Context(), chi.URLParam(r, "tribe"))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := a.engine.Leaderboard(r.Context(), chi.URLParam(r, "tribe"))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	if rows == nil {
		rows = []gamification.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) handlePurchaseTheme(w http.ResponseWriter, r *http.Request) {
	state, err := a.engine.PurchaseTheme(r.Context(), profileFromRequest(r), chi.URLParam(r, "theme"))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) handleSendGift(w http.ResponseWriter, r *http.Request) {
	var req giftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.To) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "to is required")
		return
	}
	tx, err := a.engine.SendGift(r.Context(), profileFromRequest(r), req.To, req.GiftID)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (a *API) handleQuests(w http.ResponseWriter, r *http.Request) {
	board, err := a.engine.Quests(r.Context(), profileFromRequest(r))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (a *API) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.CompleteQuest(r.Context(), profileFromRequest(r), chi.URLParam(r, "quest"))
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.At.IsZero() {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "at is required")
		return
	}
	l, err := a.engine.Commit(r.Context(), profileFromRequest(r), req.At)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}
