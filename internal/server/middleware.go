package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lifelink/internal"
	"lifelink/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	contextKeyActor contextKey = "actor"
	contextKeyUser  contextKey = "user"
)

var errUnauthenticated = errors.New("authentication required")

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Service) RequestTimeout(next http.Handler) http.Handler {
	timeout := time.Duration(s.config.RequestTimeoutSec) * time.Second
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if timeout <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth guards server rendered pages. Unauthenticated visitors are sent
// to /login and returned to the original path afterwards.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := s.authenticate(r)
		if err != nil {
			s.logger.WithError(err).Debug("page request not authenticated")
			s.setRedirectCookie(w, r.URL.Path, time.Minute*5)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAPIAuth guards the JSON API and answers 401 instead of redirecting.
func (s *Service) RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := s.authenticate(r)
		if err != nil {
			s.logger.WithError(err).Debug("api request not authenticated")
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Authentication required."})
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate verifies the caller's access token and resolves the users row
// behind it. The token comes from an Authorization bearer header or, failing
// that, the encrypted session cookie.
func (s *Service) authenticate(r *http.Request) (context.Context, error) {
	ctx := r.Context()

	accessToken, err := s.accessToken(r)
	if err != nil {
		return nil, err
	}

	set, err := s.jwks.Lookup(ctx, s.jwksURL)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch JWKS")
		return nil, fmt.Errorf("%w: jwks unavailable", errUnauthenticated)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	}
	if s.config.CognitoIssuerURL != "" {
		opts = append(opts, jwt.WithIssuer(s.config.CognitoIssuerURL))
	}
	if s.config.CognitoClientID != "" {
		opts = append(opts, jwt.WithClaimValue("client_id", s.config.CognitoClientID))
	}

	token, err := jwt.Parse([]byte(accessToken), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnauthenticated, err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: no subject claim", errUnauthenticated)
	}

	user, err := s.users.User(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: no account for subject %s", errUnauthenticated, userID)
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to load user for token")
		return nil, fmt.Errorf("%w: user lookup failed", errUnauthenticated)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Debug("authenticated user")

	ctx = context.WithValue(ctx, contextKeyActor, types.Actor{UserID: user.ID, Role: user.Role})
	ctx = context.WithValue(ctx, contextKeyUser, user)
	return ctx, nil
}

func (s *Service) accessToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", fmt.Errorf("%w: malformed authorization header", errUnauthenticated)
		}
		return strings.TrimSpace(token), nil
	}

	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err != nil {
		return "", fmt.Errorf("%w: no access token", errUnauthenticated)
	}

	var accessToken string
	err = s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: undecodable cookie", errUnauthenticated)
	}
	return accessToken, nil
}

func actorFromContext(ctx context.Context) (types.Actor, bool) {
	actor, ok := ctx.Value(contextKeyActor).(types.Actor)
	return actor, ok
}

func userFromContext(ctx context.Context) *types.User {
	user, _ := ctx.Value(contextKeyUser).(*types.User)
	return user
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
