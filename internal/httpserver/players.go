// internal/httpserver/players.go
//
// Player identity for the Connections API.
// There are no accounts: a player is a random ID, either
//   - carried in a signed token issued by POST /players (Authorization: Bearer
//     or the auth cookie), or
//   - an anonymous cookie set on first contact.
// The ID attributes finished sessions in the results store (stats, leaderboard).

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	tokenCookieName = "connections_token"
	anonCookieName  = "connections_anon"

	maxNameRunes = 32
)

// player is placed into request context by withOptionalAuth.
type player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ctxPlayerKey is the context key type for storing *player.
type ctxPlayerKey struct{}

// playerClaims is the token payload; Subject holds the player ID.
type playerClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type newPlayerReq struct {
	Name string `json:"name"`
}

type newPlayerRes struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleNewPlayer mints a player ID, signs a token for it and sets the auth cookie.
func (s *Server) handleNewPlayer(w http.ResponseWriter, r *http.Request) {
	var req newPlayerReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if runes := []rune(name); len(runes) > maxNameRunes {
		name = string(runes[:maxNameRunes])
	}

	id := uuid.NewString()
	tok, exp, err := s.signToken(id, name)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	log.Info().Str("player", id).Msg("player created")
	writeJSON(w, http.StatusCreated, newPlayerRes{ID: id, Name: name, Token: tok, ExpiresAt: exp})
}

// signToken creates an HS256 token for a player, valid for opts.JWTExpiry.
func (s *Server) signToken(id, name string) (string, time.Time, error) {
	now := s.opts.Clock.Now()
	exp := now.Add(s.opts.JWTExpiry)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, playerClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseToken verifies a token and returns the player it names.
func (s *Server) parseToken(tok string) (*player, error) {
	var claims playerClaims
	t, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.opts.Clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !t.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return &player{ID: claims.Subject, Name: claims.Name}, nil
}

// withOptionalAuth decorates requests with the player named by a valid token.
// It never rejects; invalid or missing tokens fall through as guests.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerOrCookie(r); tok != "" {
				if p, err := s.parseToken(tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, p))
				} else {
					log.Debug().Err(err).Msg("ignoring invalid player token")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// playerID returns the token's player ID, or an anonymous cookie ID (set on first use).
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if p, _ := r.Context().Value(ctxPlayerKey{}).(*player); p != nil {
		return p.ID
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := "anon-" + uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.opts.Clock.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(tokenCookieName); err == nil {
		return c.Value
	}
	return ""
}
