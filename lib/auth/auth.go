// Package auth implements cookie sessions backed by signed JWTs, plus
// password hashing. Sessions are stateless: the cookie carries an HS256
// token with the user id, so no server-side session store is needed.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "moviepick_session"

type contextKey struct{}

// Claims is the JWT payload for a session.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Service issues and verifies sessions.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// New returns a Service signing sessions with secret, valid for ttl.
func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// HashPassword returns the bcrypt hash of a password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func (s *Service) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken creates a signed session token for the user.
func (s *Service) IssueToken(userID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies a session token and returns its claims.
func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	return claims, nil
}

// SetSession writes the session cookie for the user.
func (s *Service) SetSession(w http.ResponseWriter, userID uint) error {
	token, err := s.IssueToken(userID)
	if err != nil {
		return fmt.Errorf("failed to issue session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSession expires the session cookie.
func (s *Service) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionUserID extracts the user id from the request's session cookie. The
// second return value is false when there is no valid session.
func (s *Service) SessionUserID(r *http.Request) (uint, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	claims, err := s.ParseToken(cookie.Value)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

// RequireAuth rejects requests without a valid session with 401 and stores
// the user id in the request context otherwise.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.SessionUserID(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID stores a user id in the context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID reads the authenticated user id from the context.
func UserID(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(contextKey{}).(uint)
	return userID, ok
}
