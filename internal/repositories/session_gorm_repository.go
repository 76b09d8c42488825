package repositories

import (
	"errors"
	"fmt"

	"dailaunch/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{
		db: db,
	}
}

// Create creates a new web session row.
func (r *GORMSessionRepository) Create(session *models.WebSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by its opaque session token.
func (r *GORMSessionRepository) GetByToken(sessionToken string) (*models.WebSession, error) {
	var session models.WebSession
	if err := r.db.First(&session, "session_token = ?", sessionToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// DeleteByToken removes a session by token. Deleting an absent session is not
// an error; revocation is idempotent.
func (r *GORMSessionRepository) DeleteByToken(sessionToken string) error {
	if err := r.db.Delete(&models.WebSession{}, "session_token = ?", sessionToken).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByLogin removes every session for a GitHub login. Used to enforce the
// single-active-session-per-identity rule on each new CLI login.
func (r *GORMSessionRepository) DeleteByLogin(githubLogin string) error {
	if err := r.db.Delete(&models.WebSession{}, "github_login = ?", githubLogin).Error; err != nil {
		return fmt.Errorf("failed to delete sessions for %s: %w", githubLogin, err)
	}
	return nil
}
