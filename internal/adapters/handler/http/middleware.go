package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type contextKey string

const (
	OrganizerKey contextKey = "organizer"
	EventKey     contextKey = "event"
)

const accessTokenCookie = "access_token"

// RequireOrganizer authenticates the request with the organizer access token
// from the access_token cookie or a Bearer header, then checks that the
// organizer may change settings of the event in the URL. Every failure
// answers 404 so the organizer area does not reveal which events exist.
func RequireOrganizer(auth ports.OrganizerAuthService, settings ports.SettingsService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessToken(r)
			if token == "" {
				notFound(w)
				return
			}

			organizer, err := auth.ParseAccessToken(token)
			if err != nil {
				notFound(w)
				return
			}

			event, err := settings.Authorize(r.Context(), organizer.ID, chi.URLParam(r, "event"))
			if err != nil {
				if !errors.Is(err, domain.ErrEventNotFound) && !errors.Is(err, domain.ErrForbidden) {
					slog.ErrorContext(r.Context(), "failed to authorize organizer", "error", err)
				}
				notFound(w)
				return
			}

			ctx := context.WithValue(r.Context(), OrganizerKey, organizer)
			ctx = context.WithValue(ctx, EventKey, event)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func organizerFrom(ctx context.Context) (*domain.Organizer, bool) {
	organizer, ok := ctx.Value(OrganizerKey).(*domain.Organizer)
	return organizer, ok
}

func eventFrom(ctx context.Context) (*domain.Event, bool) {
	event, ok := ctx.Value(EventKey).(*domain.Event)
	return event, ok
}
