// Package auth keeps the OAuth token of a signed-in visitor in an encrypted
// cookie session and hands out anonymous visitor ids.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/starford/folio/internal/apperr"
)

const (
	sessionName = "folio_session"
	visitorName = "folio_visitor"

	keyAccess  = "access_token"
	keyRefresh = "refresh_token"
	keyType    = "token_type"
	keyExpiry  = "expiry"
	keyState   = "oauth_state"
	keyVisitor = "id"
)

// Options configure Sessions.
type Options struct {
	// Secret derives the cookie signing and encryption keys.
	Secret string
	// Secure marks cookies HTTPS-only.
	Secure bool
	// MaxAge of the sign-in session.
	MaxAge time.Duration
	// OAuth is the provider client configuration.
	OAuth *oauth2.Config
}

// Sessions manages the sign-in cookie and the visitor cookie.
type Sessions struct {
	store   sessions.Store
	visitor sessions.Store
	oauth   *oauth2.Config
}

// NewSessions builds cookie stores keyed from opts.Secret.
func NewSessions(opts Options) *Sessions {
	hashKey := sha256.Sum256([]byte("hash:" + opts.Secret))
	blockKey := sha256.Sum256([]byte("block:" + opts.Secret))

	if opts.MaxAge <= 0 {
		opts.MaxAge = 30 * 24 * time.Hour
	}

	signIn := sessions.NewCookieStore(hashKey[:], blockKey[:])
	signIn.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	visitor := sessions.NewCookieStore(hashKey[:])
	visitor.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((400 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Sessions{store: signIn, visitor: visitor, oauth: opts.OAuth}
}

// SignInEnabled reports whether a provider is configured.
func (s *Sessions) SignInEnabled() bool {
	return s.oauth != nil
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		// Undecodable cookies (rotated secret, tampering) start over.
		slog.Debug("auth: discarding session cookie", slog.String("error", err.Error()))
	}
	return sess
}

// BeginSignIn stores a fresh state value and returns the provider URL to
// redirect to.
func (s *Sessions) BeginSignIn(w http.ResponseWriter, r *http.Request) (string, error) {
	if s.oauth == nil {
		return "", fmt.Errorf("auth: sign in not configured: %w", apperr.ErrNotFound)
	}
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	sess := s.session(r)
	sess.Values[keyState] = state
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("auth: save session: %w", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

// CompleteSignIn verifies state, exchanges code for a token and stores it.
func (s *Sessions) CompleteSignIn(ctx context.Context, w http.ResponseWriter, r *http.Request, state, code string) error {
	if s.oauth == nil {
		return fmt.Errorf("auth: sign in not configured: %w", apperr.ErrNotFound)
	}
	sess := s.session(r)
	want, _ := sess.Values[keyState].(string)
	if want == "" || state != want {
		return fmt.Errorf("auth: state mismatch: %w", apperr.ErrUnauthorized)
	}
	// A state answers one callback, successful or not.
	delete(sess.Values, keyState)
	if code == "" {
		return abandon(w, r, sess, fmt.Errorf("auth: missing code: %w", apperr.ErrInvalidArgument))
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return abandon(w, r, sess, fmt.Errorf("auth: exchange: %w", err))
	}
	putToken(sess, tok)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	return nil
}

// abandon saves sess with its state consumed and returns err.
func abandon(w http.ResponseWriter, r *http.Request, sess *sessions.Session, err error) error {
	if serr := sess.Save(r, w); serr != nil {
		return errors.Join(err, fmt.Errorf("auth: save session: %w", serr))
	}
	return err
}

// SignOut drops the sign-in session.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Token returns the stored token without refreshing it.
func (s *Sessions) Token(r *http.Request) (*oauth2.Token, error) {
	tok := getToken(s.session(r))
	if tok == nil {
		return nil, apperr.ErrUnauthorized
	}
	return tok, nil
}

// ValidToken returns a usable token, refreshing an expired one once through
// the provider when a refresh token is present. A refreshed token is written
// back to the session.
func (s *Sessions) ValidToken(ctx context.Context, w http.ResponseWriter, r *http.Request) (*oauth2.Token, error) {
	sess := s.session(r)
	tok := getToken(sess)
	if tok == nil {
		return nil, apperr.ErrUnauthorized
	}
	if tok.Valid() {
		return tok, nil
	}
	if tok.RefreshToken == "" || s.oauth == nil {
		return nil, fmt.Errorf("auth: token expired: %w", apperr.ErrUnauthorized)
	}
	fresh, err := s.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		slog.Warn("auth: refresh failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("auth: refresh: %w", apperr.ErrUnauthorized)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}
	putToken(sess, fresh)
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("auth: save session: %w", err)
	}
	return fresh, nil
}

// Visitor returns the anonymous visitor id, issuing one on first contact.
func (s *Sessions) Visitor(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, _ := s.visitor.Get(r, visitorName)
	if id, ok := sess.Values[keyVisitor].(string); ok {
		if _, err := uuid.Parse(id); err == nil {
			return id, nil
		}
	}
	id := uuid.NewString()
	sess.Values[keyVisitor] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("auth: save visitor: %w", err)
	}
	return id, nil
}

func putToken(sess *sessions.Session, tok *oauth2.Token) {
	sess.Values[keyAccess] = tok.AccessToken
	sess.Values[keyRefresh] = tok.RefreshToken
	sess.Values[keyType] = tok.TokenType
	var exp int64
	if !tok.Expiry.IsZero() {
		exp = tok.Expiry.Unix()
	}
	sess.Values[keyExpiry] = exp
}

func getToken(sess *sessions.Session) *oauth2.Token {
	access, _ := sess.Values[keyAccess].(string)
	if access == "" {
		return nil
	}
	tok := &oauth2.Token{AccessToken: access}
	tok.RefreshToken, _ = sess.Values[keyRefresh].(string)
	tok.TokenType, _ = sess.Values[keyType].(string)
	if exp, ok := sess.Values[keyExpiry].(int64); ok && exp > 0 {
		tok.Expiry = time.Unix(exp, 0)
	}
	return tok
}
