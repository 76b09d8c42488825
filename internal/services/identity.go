package services

import "context"

// VerifiedIdentity is a GitHub identity whose credential has been confirmed
// against the GitHub API. All three auth flows (direct header, CLI web
// session, signed web token) produce this same value, so the deployment
// logic never cares which flow authenticated the request.
type VerifiedIdentity struct {
	Login  string `json:"login"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Token  string `json:"-"` // raw GitHub credential for downstream API calls
}

// IdentityVerifier validates a bearer GitHub token with a single round-trip
// to the GitHub identity endpoint. No retries; any failure rejects the
// credential.
type IdentityVerifier interface {
	Verify(ctx context.Context, githubToken string) (*VerifiedIdentity, error)
}
