package repositories

import "dailaunch/internal/models"

// SessionRepository defines the interface for web session data access.
type SessionRepository interface {
	Create(session *models.WebSession) error
	GetByToken(sessionToken string) (*models.WebSession, error)
	DeleteByToken(sessionToken string) error
	DeleteByLogin(githubLogin string) error
}
