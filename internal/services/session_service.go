package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"dailaunch/internal/models"
	"dailaunch/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
)

// sessionTTL bounds CLI-issued web sessions.
const sessionTTL = 24 * time.Hour

// webTokenTTL bounds the signed tokens issued by the OAuth login path. There
// is no server-side revocation before expiry; logout is client-side only.
const webTokenTTL = 7 * 24 * time.Hour

// SessionService brokers two kinds of proxy credential over the same
// identity space:
//
//   - CLI web sessions: an opaque random token stored server-side, handed
//     from the CLI to a browser that cannot safely hold the raw GitHub
//     token long-term. One live session per GitHub login.
//   - Signed web tokens: stateless HS256 tokens carrying the GitHub
//     credential in the payload, issued by the OAuth callback. The signing
//     secret therefore gates every embedded GitHub token and is handled
//     with the same sensitivity as the encryption salt.
type SessionService struct {
	sessions  repositories.SessionRepository
	verifier  IdentityVerifier
	jwtSecret []byte
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions repositories.SessionRepository, verifier IdentityVerifier, jwtSecret string) *SessionService {
	return &SessionService{
		sessions:  sessions,
		verifier:  verifier,
		jwtSecret: []byte(jwtSecret),
	}
}

// CreateSession mints a fresh web session for a verified identity. Any prior
// sessions for the same login are deleted first: last login wins, there is
// intentionally no multi-device support.
func (s *SessionService) CreateSession(identity *VerifiedIdentity) (*models.WebSession, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := s.sessions.DeleteByLogin(identity.Login); err != nil {
		return nil, fmt.Errorf("failed to clear old sessions: %w", err)
	}

	session := &models.WebSession{
		SessionToken: hex.EncodeToString(raw),
		GithubToken:  identity.Token,
		GithubLogin:  identity.Login,
		GithubAvatar: identity.Avatar,
		GithubName:   identity.Name,
		ExpiresAt:    time.Now().Add(sessionTTL),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// ResolveSession looks up a session token and returns the stored session if
// it is still live. An expired row, or one whose GitHub token no longer
// verifies (revoked on GitHub's side), is deleted during resolution and
// reported as ErrSessionExpired.
func (s *SessionService) ResolveSession(ctx context.Context, sessionToken string) (*models.WebSession, error) {
	session, err := s.sessions.GetByToken(sessionToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		if delErr := s.sessions.DeleteByToken(sessionToken); delErr != nil {
			return nil, delErr
		}
		return nil, ErrSessionExpired
	}

	if _, err := s.verifier.Verify(ctx, session.GithubToken); err != nil {
		if delErr := s.sessions.DeleteByToken(sessionToken); delErr != nil {
			return nil, delErr
		}
		return nil, fmt.Errorf("GitHub token no longer valid: %w", ErrSessionExpired)
	}

	return session, nil
}

// RevokeSession deletes a session. Idempotent; revoking an unknown token is
// not an error.
func (s *SessionService) RevokeSession(sessionToken string) error {
	return s.sessions.DeleteByToken(sessionToken)
}

// webTokenClaims is the signed web token payload. The GitHub credential
// rides inside so that /auth/me and API calls can act as the user without a
// session row.
type webTokenClaims struct {
	GithubToken string `json:"githubToken"`
	Login       string `json:"login"`
	Avatar      string `json:"avatar"`
	Name        string `json:"name"`
	jwt.RegisteredClaims
}

// IssueWebToken signs a 7-day HS256 token for the OAuth web-login path.
func (s *SessionService) IssueWebToken(identity *VerifiedIdentity) (string, error) {
	now := time.Now()
	claims := webTokenClaims{
		GithubToken: identity.Token,
		Login:       identity.Login,
		Avatar:      identity.Avatar,
		Name:        identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(webTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign web token: %w", err)
	}
	return signed, nil
}

// VerifyWebToken checks signature and expiry and returns the embedded
// identity. Any failure maps to ErrUnauthenticated.
func (s *SessionService) VerifyWebToken(tokenString string) (*VerifiedIdentity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &webTokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*webTokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", ErrUnauthenticated)
	}

	return &VerifiedIdentity{
		Login:  claims.Login,
		Name:   claims.Name,
		Avatar: claims.Avatar,
		Token:  claims.GithubToken,
	}, nil
}
