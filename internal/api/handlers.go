// Package api exposes HTTP handlers for the mental reset planner.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/mentalreset/internal/auth"
	"example.com/mentalreset/internal/domain"
	"example.com/mentalreset/internal/drafts"
	"example.com/mentalreset/internal/notify"
	"example.com/mentalreset/internal/planner"
	"example.com/mentalreset/internal/view"
)

// Options configures a Handler.
type Options struct {
	SignInRoute string
	HomeRoute   string
	Logger      *zap.Logger
	// HealthCheck backs /healthz; nil always reports ok.
	HealthCheck func(context.Context) error
}

// Handler coordinates HTTP requests with the planner.
type Handler struct {
	planner     *planner.Planner
	sessions    *auth.Sessions
	validate    *validator.Validate
	logger      *zap.Logger
	signInRoute string
	homeRoute   string
	health      func(context.Context) error
}

// NewHandler builds a Handler.
func NewHandler(p *planner.Planner, sessions *auth.Sessions, opts Options) *Handler {
	h := &Handler{
		planner:     p,
		sessions:    sessions,
		validate:    validator.New(),
		logger:      opts.Logger,
		signInRoute: opts.SignInRoute,
		homeRoute:   opts.HomeRoute,
		health:      opts.HealthCheck,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.signInRoute == "" {
		h.signInRoute = planner.RouteSignIn
	}
	if h.homeRoute == "" {
		h.homeRoute = planner.RouteHome
	}
	return h
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/sessions", h.sessionsPage)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", h.catalog)
		r.Get("/sessions", h.listSessions)
		r.Post("/auth/signout", h.signOut)

		r.Post("/drafts", h.createDraft)
		r.Route("/drafts/{draftID}", func(r chi.Router) {
			r.Get("/", h.getDraft)
			r.Put("/mood", h.setMood)
			r.Post("/activities/{key}/toggle", h.toggleActivity)
			r.Put("/custom-activity", h.setCustomActivity)
			r.Put("/reflections/{field}", h.setReflection)
			r.Put("/next-step", h.setNextStep)
			r.Post("/reset", h.reset)
			r.Post("/save", h.save)
		})
	})
}

// healthz reports OK while the session backend answers.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "unavailable", "session backend unreachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	resp := CatalogResponse{
		Moods:          make([]MoodOption, 0, len(domain.Moods)),
		Activities:     make([]ActivityOption, 0, len(domain.ActivityKeys)),
		Reflections:    make([]ReflectionPrompt, 0, len(domain.ReflectionFields)),
		NextStepPrompt: domain.NextStepPrompt,
		ActivityLimit:  h.planner.Policy().Limit(),
	}
	for _, m := range domain.Moods {
		resp.Moods = append(resp.Moods, MoodOption{Key: string(m), Emoji: m.Emoji()})
	}
	for _, k := range domain.ActivityKeys {
		resp.Activities = append(resp.Activities, ActivityOption{Key: string(k), Label: k.Label()})
	}
	for _, f := range domain.ReflectionFields {
		resp.Reflections = append(resp.Reflections, ReflectionPrompt{Field: string(f), Prompt: f.Prompt()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createDraft(w http.ResponseWriter, r *http.Request) {
	res, err := h.planner.CreateDraft(r.Context(), currentUser(r))
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	writeJSON(w, http.StatusCreated, h.draftResponse(res, nil))
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	res, err := h.planner.Draft(r.Context(), chi.URLParam(r, "draftID"), currentUser(r))
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(res, nil))
}

func (h *Handler) setMood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !h.decode(w, r, &req) {
		return
	}
	mood, err := domain.ParseMood(*req.Mood)
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	res, err := h.planner.SetMood(r.Context(), chi.URLParam(r, "draftID"), currentUser(r), mood)
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(res, nil))
}

func (h *Handler) toggleActivity(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParseActivityKey(chi.URLParam(r, "key"))
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	rec := &notify.Recorder{}
	res, err := h.planner.ToggleActivity(r.Context(), chi.URLParam(r, "draftID"), currentUser(r), key, rec)
	if err != nil {
		h.writeDomainError(w, err, rec, "")
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(res, rec))
}

func (h *Handler) setCustomActivity(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.planner.SetCustomActivity(r.Context(), chi.URLParam(r, "draftID"), currentUser(r), *req.Text)
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(res, nil))
}

func (h *Handler) setReflection(w http.ResponseWriter, r *http.Request) {
	field, err := domain.ParseReflectionField(chi.URLParam(r, "field"))
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	var req TextRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.planner.SetReflection(r.Context(), chi.URLParam(r, "draftID"), currentUser(r), field, *req.Text)
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(res, nil))
}

func (h *Handler) setNextStep(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.planner.SetNextStep(r.Context(), chi.URLParam(r, "draftID"), currentUser(r), *req.Text)
	if err != nil {
		h.writeDomainError(w, err, nil, "")
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(res, nil))
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	rec := &notify.Recorder{}
	res, err := h.planner.Reset(r.Context(), chi.URLParam(r, "draftID"), currentUser(r), rec)
	if err != nil {
		h.writeDomainError(w, err, rec, "")
		return
	}
	writeJSON(w, http.StatusOK, h.draftResponse(res, rec))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	rec := &notify.Recorder{}
	res, err := h.planner.Save(r.Context(), chi.URLParam(r, "draftID"), currentUser(r), rec)
	if err != nil {
		h.writeDomainError(w, err, rec, res.RedirectTo)
		return
	}
	resp := h.draftResponse(res, rec)
	resp.Saved = &SavedSession{
		ID:        res.Receipt.Record.ID,
		Date:      res.Receipt.Date,
		CreatedAt: res.Receipt.Record.CreatedAt,
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	rec := &notify.Recorder{}
	records, redirect, err := h.planner.ListSessions(r.Context(), currentUser(r), rec)
	if err != nil {
		h.writeDomainError(w, err, rec, redirect)
		return
	}
	writeJSON(w, http.StatusOK, SessionsResponse{
		Page:     view.Build(records, h.homeRoute),
		Sessions: records,
	})
}

func (h *Handler) sessionsPage(w http.ResponseWriter, r *http.Request) {
	records, redirect, err := h.planner.ListSessions(r.Context(), currentUser(r), notify.Discard)
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load your sessions.", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, view.Build(records, h.homeRoute)); err != nil {
		h.logger.Error("render sessions page failed", zap.Error(err))
	}
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if err := h.sessions.SignOut(r.Context(), token); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SignOutResponse{RedirectTo: h.signInRoute})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) draftResponse(res planner.Result, rec *notify.Recorder) DraftResponse {
	resp := DraftResponse{
		DraftID:       res.DraftID,
		Draft:         res.Form,
		SelectedCount: res.Form.SelectedCount(),
		ActivityLimit: h.planner.Policy().Limit(),
		Notifications: []notify.Notification{},
		RedirectTo:    res.RedirectTo,
	}
	if res.Decision != 0 {
		resp.Decision = res.Decision.String()
	}
	if rec != nil {
		resp.Notifications = rec.Notifications()
	}
	return resp
}

// writeDomainError maps planner and domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, rec *notify.Recorder, redirect string) {
	resp := ErrorResponse{Detail: err.Error(), RedirectTo: redirect}
	if rec != nil {
		resp.Notifications = rec.Notifications()
	}

	var status int
	switch {
	case errors.Is(err, drafts.ErrNotFound):
		status, resp.Type = http.StatusNotFound, "not_found"
	case errors.Is(err, planner.ErrDraftOwnedByAnother):
		status, resp.Type = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrUnknownMood),
		errors.Is(err, domain.ErrUnknownActivity),
		errors.Is(err, domain.ErrUnknownField):
		status, resp.Type = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrUnauthenticated):
		status, resp.Type = http.StatusUnauthorized, "unauthenticated"
		resp.Detail = "sign in required"
		if resp.RedirectTo == "" {
			resp.RedirectTo = h.signInRoute
		}
	case errors.Is(err, domain.ErrSaveFailed):
		status, resp.Type = http.StatusBadGateway, "save_failed"
		resp.Detail = domain.ErrSaveFailed.Error()
	case errors.Is(err, domain.ErrFetchFailed):
		status, resp.Type = http.StatusBadGateway, "fetch_failed"
		resp.Detail = domain.ErrFetchFailed.Error()
	default:
		h.logger.Error("request failed", zap.Error(err))
		status, resp.Type = http.StatusInternalServerError, "server_error"
	}
	writeJSON(w, status, resp)
}

func currentUser(r *http.Request) *domain.User {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		return nil
	}
	return session.User()
}

// MoodRequest is the payload for PUT /v1/drafts/{id}/mood. An empty mood
// clears the selection.
type MoodRequest struct {
	Mood *string `json:"mood" validate:"required"`
}

// TextRequest is the payload for the free-text setters.
type TextRequest struct {
	Text *string `json:"text" validate:"required"`
}

// DraftResponse describes a draft after an action.
type DraftResponse struct {
	DraftID       string                `json:"draft_id"`
	Draft         domain.Form           `json:"draft"`
	SelectedCount int                   `json:"selected_count"`
	ActivityLimit int                   `json:"activity_limit"`
	Decision      string                `json:"decision,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
	RedirectTo    string                `json:"redirect_to,omitempty"`
	Saved         *SavedSession         `json:"saved,omitempty"`
}

// SavedSession confirms a stored session.
type SavedSession struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionsResponse packages the saved sessions list.
type SessionsResponse struct {
	Page     view.Page              `json:"page"`
	Sessions []domain.SessionRecord `json:"sessions"`
}

// SignOutResponse tells the client where to go next.
type SignOutResponse struct {
	RedirectTo string `json:"redirect_to"`
}

// CatalogResponse lists the fixed choices offered by the form.
type CatalogResponse struct {
	Moods          []MoodOption       `json:"moods"`
	Activities     []ActivityOption   `json:"activities"`
	Reflections    []ReflectionPrompt `json:"reflections"`
	NextStepPrompt string             `json:"next_step_prompt"`
	ActivityLimit  int                `json:"activity_limit"`
}

type MoodOption struct {
	Key   string `json:"key"`
	Emoji string `json:"emoji"`
}

type ActivityOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type ReflectionPrompt struct {
	Field  string `json:"field"`
	Prompt string `json:"prompt"`
}

// ErrorResponse is the error body. Notifications and RedirectTo are set
// when the client should show a toast or navigate.
type ErrorResponse struct {
	Type          string                `json:"type"`
	Detail        string                `json:"detail"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
	RedirectTo    string                `json:"redirect_to,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
