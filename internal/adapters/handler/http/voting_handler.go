package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type VotingHandler struct {
	service ports.VotingService
}

func NewVotingHandler(service ports.VotingService) *VotingHandler {
	return &VotingHandler{
		service: service,
	}
}

func (h *VotingHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), chi.URLParam(r, "event"))
	if err != nil {
		writeError(w, r, err, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *VotingHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	slug := chi.URLParam(r, "event")
	input := ports.SignupInput{
		EventSlug:    slug,
		Email:        r.PostForm.Get("email"),
		SubmissionID: optionalID(r.Form.Get("submission_id")),
	}

	if err := h.service.Signup(r.Context(), input); err != nil {
		writeError(w, r, err, "internal server error")
		return
	}

	http.Redirect(w, r, "/"+url.PathEscape(slug)+"/vote/thanks", http.StatusSeeOther)
}

func (h *VotingHandler) Thanks(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), chi.URLParam(r, "event"))
	if err != nil {
		writeError(w, r, err, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event":   overview.Event,
		"message": "Thank you for signing up! Please check your inbox for your voting link.",
	})
}

func (h *VotingHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))

	var tracks []int64
	for _, raw := range query["track"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			tracks = append(tracks, id)
		}
	}

	ballot, err := h.service.ListSubmissions(r.Context(), ports.ListInput{
		EventSlug:    chi.URLParam(r, "event"),
		Token:        chi.URLParam(r, "token"),
		SubmissionID: optionalID(query.Get("submission_id")),
		TrackIDs:     tracks,
		Page:         page,
	})
	if err != nil {
		writeError(w, r, err, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, ballot)
}

// SubmitScores accepts either a manual form post, answered with a redirect
// back to the listing, or a background save, answered with an empty object.
func (h *VotingHandler) SubmitScores(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	_, err := h.service.SubmitScores(r.Context(), ports.SubmitInput{
		EventSlug: chi.URLParam(r, "event"),
		Token:     chi.URLParam(r, "token"),
		Fields:    fields,
	})
	if err != nil {
		writeError(w, r, err, "Your vote could not be saved.")
		return
	}

	if r.PostForm.Get("action") == "manual" {
		target := *r.URL
		q := target.Query()
		q.Set("notice", "saved")
		target.RawQuery = q.Encode()
		http.Redirect(w, r, target.RequestURI(), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func optionalID(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
