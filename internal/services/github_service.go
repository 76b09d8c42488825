package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// repoSettleDelay gives GitHub time to finish provisioning a freshly created
// repository before the first contents push. Repo creation is asynchronous on
// GitHub's side; pushing immediately races the provisioning.
const repoSettleDelay = 2 * time.Second

// PublishParams describe the metadata repository created for a deployed token.
type PublishParams struct {
	GithubToken     string // credential the repo is created with (user or platform)
	GithubUser      string // owner login the repo ends up under
	Name            string
	Symbol          string
	ContractAddress string
	CreatorWallet   string
	TxHash          string
	Twitter         string
	Website         string
	LogoURL         string
}

// RepoPublisher publishes a token's metadata repository and returns its URL.
type RepoPublisher interface {
	PublishTokenRepo(ctx context.Context, params PublishParams) (string, error)
}

// GitHubService talks to the GitHub REST API. It is both the identity
// verifier gating every authenticated route and the publisher that mirrors
// deployed-token metadata into a repository.
type GitHubService struct {
	settleDelay time.Duration
}

// NewGitHubService creates a GitHubService with the production settle delay.
func NewGitHubService() *GitHubService {
	return &GitHubService{settleDelay: repoSettleDelay}
}

// Verify confirms a bearer token against the GitHub identity endpoint.
// A single round-trip, no retry: any failure means ErrUnauthenticated.
func (s *GitHubService) Verify(ctx context.Context, githubToken string) (*VerifiedIdentity, error) {
	if githubToken == "" {
		return nil, fmt.Errorf("empty token: %w", ErrUnauthenticated)
	}

	client := github.NewClient(nil).WithAuthToken(githubToken)
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", ErrUnauthenticated)
	}

	name := user.GetName()
	if name == "" {
		name = user.GetLogin()
	}
	return &VerifiedIdentity{
		Login:  user.GetLogin(),
		Name:   name,
		Avatar: user.GetAvatarURL(),
		Token:  githubToken,
	}, nil
}

// PublishTokenRepo creates a public repository under the authenticated user
// and pushes token-info.json plus a generated README. Returns the repo URL.
func (s *GitHubService) PublishTokenRepo(ctx context.Context, params PublishParams) (string, error) {
	client := github.NewClient(nil).WithAuthToken(params.GithubToken)

	repoName := repoNameFor(params.Symbol, params.ContractAddress)
	_, _, err := client.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(repoName),
		Description: github.String(fmt.Sprintf("DaiLaunch Token: %s (%s) on Base", params.Name, params.Symbol)),
		Private:     github.Bool(false),
		AutoInit:    github.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create metadata repo: %w", err)
	}

	// Repo provisioning is async on GitHub's side.
	select {
	case <-time.After(s.settleDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	meta, err := tokenInfoJSON(params)
	if err != nil {
		return "", err
	}
	_, _, err = client.Repositories.CreateFile(ctx, params.GithubUser, repoName, "token-info.json",
		&github.RepositoryContentFileOptions{
			Message: github.String("Deploy token via DaiLaunch"),
			Content: meta,
		})
	if err != nil {
		return "", fmt.Errorf("failed to push token-info.json: %w", err)
	}

	_, _, err = client.Repositories.CreateFile(ctx, params.GithubUser, repoName, "README.md",
		&github.RepositoryContentFileOptions{
			Message: github.String("Add token README"),
			Content: []byte(tokenReadme(params)),
		})
	if err != nil {
		return "", fmt.Errorf("failed to push README.md: %w", err)
	}

	return fmt.Sprintf("https://github.com/%s/%s", params.GithubUser, repoName), nil
}

// repoNameFor builds a repo slug unique per deployment; the address suffix
// keeps repeated deploys of the same symbol from colliding.
func repoNameFor(symbol, contractAddress string) string {
	suffix := strings.TrimPrefix(strings.ToLower(contractAddress), "0x")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("dailaunch-%s-%s", strings.ToLower(symbol), suffix)
}

func tokenInfoJSON(params PublishParams) ([]byte, error) {
	info := map[string]interface{}{
		"name":            params.Name,
		"symbol":          params.Symbol,
		"contractAddress": params.ContractAddress,
		"creatorWallet":   params.CreatorWallet,
		"deployer":        params.GithubUser,
		"txHash":          params.TxHash,
		"chain":           "base",
		"platform":        "DaiLaunch",
		"deployedAt":      time.Now().UTC().Format(time.RFC3339),
		"baseScan":        "https://basescan.org/token/" + params.ContractAddress,
		"dexScreener":     "https://dexscreener.com/base/" + params.ContractAddress,
	}
	if params.Twitter != "" {
		info["twitter"] = params.Twitter
	}
	if params.Website != "" {
		info["website"] = params.Website
	}
	if params.LogoURL != "" {
		info["logoUrl"] = params.LogoURL
	}

	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token info: %w", err)
	}
	return out, nil
}

func tokenReadme(params PublishParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", params.Name, params.Symbol)
	fmt.Fprintf(&b, "Deployed on Base via [DaiLaunch](https://dailaunch.online) by @%s.\n\n", params.GithubUser)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Contract | `%s` |\n", params.ContractAddress)
	fmt.Fprintf(&b, "| Creator wallet | `%s` |\n", params.CreatorWallet)
	fmt.Fprintf(&b, "| Transaction | `%s` |\n", params.TxHash)
	if params.Twitter != "" {
		fmt.Fprintf(&b, "| Twitter | %s |\n", params.Twitter)
	}
	if params.Website != "" {
		fmt.Fprintf(&b, "| Website | %s |\n", params.Website)
	}
	fmt.Fprintf(&b, "\n[BaseScan](https://basescan.org/token/%s) · [DexScreener](https://dexscreener.com/base/%s)\n",
		params.ContractAddress, params.ContractAddress)
	return b.String()
}
