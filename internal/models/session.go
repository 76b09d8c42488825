package models

import "time"

// WebSession is a short-lived session row bridging a CLI-authenticated GitHub
// token to a browser. At most one live session exists per GitHub login: a new
// login deletes all prior sessions for that login.
type WebSession struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionToken string    `json:"sessionToken" gorm:"uniqueIndex;type:varchar(64)"`
	GithubToken  string    `gorm:"type:text"` // raw GitHub credential; surfaced only through session resolution
	GithubLogin  string    `json:"githubLogin" gorm:"index;type:varchar(100)"`
	GithubAvatar string    `json:"githubAvatar"`
	GithubName   string    `json:"githubName"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}
