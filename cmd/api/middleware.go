package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const sessionCookie = "wishlist_session"

type visitorKey string

const (
	visitorCtx    visitorKey = "visitor"
	newSessionCtx visitorKey = "newSession"
)

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// read the auth header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			// parse it -> get the base64
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if username == "" || len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled && app.rateLimiter != nil {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port RemoteAddr carries when RealIP found no header.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WishlistSessionMiddleware makes sure every visitor carries a wishlist
// session id, issuing a new one on the first visit.
func (app *application) WishlistSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID, fresh := "", false
		if c, err := r.Cookie(sessionCookie); err == nil {
			if id, perr := uuid.Parse(c.Value); perr == nil {
				visitorID = id.String()
			}
		}

		if visitorID == "" {
			visitorID, fresh = uuid.New().String(), true
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    visitorID,
				Path:     "/",
				MaxAge:   60 * 60 * 24 * 365,
				HttpOnly: true,
				Secure:   app.config.wishlist.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), visitorCtx, visitorID)
		ctx = context.WithValue(ctx, newSessionCtx, fresh)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getVisitorFromContext(r *http.Request) string {
	visitorID, _ := r.Context().Value(visitorCtx).(string)
	return visitorID
}

// isNewSession reports whether the session id was issued on this request,
// so nothing can be stored under it yet.
func isNewSession(r *http.Request) bool {
	fresh, _ := r.Context().Value(newSessionCtx).(bool)
	return fresh
}
