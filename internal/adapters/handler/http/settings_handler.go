package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vncsmyrnk/publicvoting/internal/adapters/csvexport"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

// SettingsHandler serves the organizer area. Routes are wrapped in
// RequireOrganizer, which puts the authorized event into the context.
type SettingsHandler struct {
	settings ports.SettingsService
	export   ports.ExportService
}

func NewSettingsHandler(settings ports.SettingsService, export ports.ExportService) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		export:   export,
	}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFrom(r.Context())
	if !ok {
		notFound(w)
		return
	}

	view, err := h.settings.Get(r.Context(), event.Slug)
	if err != nil {
		writeError(w, r, err, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFrom(r.Context())
	if !ok {
		notFound(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	form := r.PostForm
	input := ports.UpdateSettingsInput{
		EventSlug:              event.Slug,
		Start:                  form.Get("start"),
		End:                    form.Get("end"),
		Text:                   form.Get("text"),
		AnonymizeSpeakers:      checked(form.Get("anonymize_speakers")),
		ShowSessionImage:       checked(form.Get("show_session_image")),
		ShowSessionDescription: checked(form.Get("show_session_description")),
		LimitTracks:            form["limit_tracks"],
		LimitSubmissionTypes:   form["limit_submission_types"],
		AllowedEmails:          form.Get("allowed_emails"),
		MinScore:               form.Get("min_score"),
		MaxScore:               form.Get("max_score"),
		ScoreLabels:            map[string]string{},
	}
	for key, values := range form {
		if score, ok := strings.CutPrefix(key, "score_label_"); ok && len(values) > 0 {
			input.ScoreLabels[score] = values[0]
		}
	}

	view, err := h.settings.Update(r.Context(), input)
	if err != nil {
		writeError(w, r, err, "The settings could not be saved.")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CopySettings imports the settings of the event named in ?from=. The
// organizer needs the settings permission on both events.
func (h *SettingsHandler) CopySettings(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFrom(r.Context())
	organizer, hasOrganizer := organizerFrom(r.Context())
	if !ok || !hasOrganizer {
		notFound(w)
		return
	}

	source := r.URL.Query().Get("from")
	if source == "" {
		http.Error(w, "missing source event", http.StatusBadRequest)
		return
	}
	if _, err := h.settings.Authorize(r.Context(), organizer.ID, source); err != nil {
		writeError(w, r, err, "internal server error")
		return
	}

	view, err := h.settings.CopyFrom(r.Context(), event.Slug, source)
	if err != nil {
		writeError(w, r, err, "The settings could not be copied.")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SettingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	event, ok := eventFrom(r.Context())
	if !ok {
		notFound(w)
		return
	}

	rows, err := h.export.Export(r.Context(), event.Slug)
	if err != nil {
		writeError(w, r, err, "internal server error")
		return
	}

	extended, _ := strconv.ParseBool(r.URL.Query().Get("extended"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvexport.Filename(event.Slug)+`"`)
	if err := csvexport.Write(w, rows, extended); err != nil {
		slog.ErrorContext(r.Context(), "failed to write export", "error", err, "event", event.Slug)
	}
}

func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
