package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"dailaunch/internal/models"
	"dailaunch/internal/repositories"
	"dailaunch/pkg/clanker"

	"github.com/go-playground/validator/v10"
)

// TokenDeployer is the external deployment service boundary. The real
// implementation is pkg/clanker; tests substitute a mock.
type TokenDeployer interface {
	Deploy(ctx context.Context, params clanker.DeployParams) (*clanker.DeployResult, error)
}

// EventPublisher publishes deployment events to the message queue.
// Best-effort: a publish failure never fails the deployment.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// DeployRequest is the user-supplied portion of a deployment.
type DeployRequest struct {
	Name    string `json:"name" validate:"required"`
	Symbol  string `json:"symbol" validate:"required,max=10"`
	Twitter string `json:"twitter"`
	Website string `json:"website"`
	LogoURL string `json:"logoUrl"`
}

// DeployOutcome is the response payload of a successful deployment.
type DeployOutcome struct {
	ContractAddress string `json:"contractAddress"`
	TxHash          string `json:"txHash"`
	CreatorWallet   string `json:"creatorWallet"`
	GithubRepo      string `json:"githubRepo"`
	BaseScan        string `json:"baseScan"`
	DexScreener     string `json:"dexScreener"`
	FeeInfo         string `json:"feeInfo"`
}

// DeployService runs the end-to-end token deployment:
//
//  1. find or lazily create the User row (generating and encrypting a
//     custodial wallet on first deploy),
//  2. deploy on-chain through the external service with the configured
//     fee split,
//  3. persist the Token row with an empty githubRepo,
//  4. publish the metadata repository on GitHub,
//  5. record the repository URL on the Token row.
//
// The sequence is strictly ordered but not transactional: a User created in
// step 1 survives a failed deploy, and a Token deployed in step 2-3 survives
// a failed publish with githubRepo left empty ("not yet published"). Nothing
// is rolled back. Deployments are not idempotent: repeating a request mints
// a new token.
type DeployService struct {
	users                repositories.UserRepository
	tokens               repositories.TokenRepository
	wallets              *WalletService
	deployer             TokenDeployer
	publisher            RepoPublisher
	events               EventPublisher // optional; nil skips event publishing
	validate             *validator.Validate
	creatorRewardPercent int
}

// NewDeployService creates a DeployService. events may be nil when no
// message queue is configured.
func NewDeployService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	wallets *WalletService,
	deployer TokenDeployer,
	publisher RepoPublisher,
	events EventPublisher,
	creatorRewardPercent int,
) *DeployService {
	return &DeployService{
		users:                users,
		tokens:               tokens,
		wallets:              wallets,
		deployer:             deployer,
		publisher:            publisher,
		events:               events,
		validate:             validator.New(),
		creatorRewardPercent: creatorRewardPercent,
	}
}

// Deploy validates the request and runs the deployment for a verified
// identity. Validation failures return ErrInvalidInput before any external
// call is made.
func (s *DeployService) Deploy(ctx context.Context, identity *VerifiedIdentity, req DeployRequest) (*DeployOutcome, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			if e.Field() == "Symbol" && e.Tag() == "max" {
				return nil, fmt.Errorf("symbol max 10 characters: %w", ErrInvalidInput)
			}
		}
		return nil, fmt.Errorf("name and symbol are required: %w", ErrInvalidInput)
	}

	user, err := s.ensureUser(identity.Login)
	if err != nil {
		return nil, err
	}

	log.Printf("Deploying %s (%s) for @%s...", req.Name, req.Symbol, identity.Login)
	deployResult, err := s.deployer.Deploy(ctx, clanker.DeployParams{
		Name:          req.Name,
		Symbol:        req.Symbol,
		Twitter:       req.Twitter,
		Website:       req.Website,
		CreatorWallet: user.WalletAddress,
		GithubUser:    identity.Login,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Deployed: %s", deployResult.ContractAddress)

	token := &models.Token{
		ContractAddress: deployResult.ContractAddress,
		Name:            req.Name,
		Symbol:          req.Symbol,
		Deployer:        identity.Login,
		CreatorWallet:   user.WalletAddress,
		Twitter:         req.Twitter,
		Website:         req.Website,
		TxHash:          deployResult.TxHash,
		GithubRepo:      "",
	}
	if err := s.tokens.Create(token); err != nil {
		return nil, err
	}

	repoURL, err := s.publisher.PublishTokenRepo(ctx, PublishParams{
		GithubToken:     identity.Token,
		GithubUser:      identity.Login,
		Name:            req.Name,
		Symbol:          req.Symbol,
		ContractAddress: deployResult.ContractAddress,
		CreatorWallet:   user.WalletAddress,
		TxHash:          deployResult.TxHash,
		Twitter:         req.Twitter,
		Website:         req.Website,
		LogoURL:         req.LogoURL,
	})
	if err != nil {
		// The token row persists with githubRepo empty: deployed but not
		// yet published. The dashboard treats that as a pending state.
		return nil, fmt.Errorf("token deployed at %s but metadata publish failed: %w",
			deployResult.ContractAddress, err)
	}

	if err := s.tokens.UpdateRepoURL(token.ID, repoURL); err != nil {
		return nil, err
	}

	s.publishDeployedEvent(token, repoURL)

	return &DeployOutcome{
		ContractAddress: deployResult.ContractAddress,
		TxHash:          deployResult.TxHash,
		CreatorWallet:   user.WalletAddress,
		GithubRepo:      repoURL,
		BaseScan:        "https://basescan.org/token/" + deployResult.ContractAddress,
		DexScreener:     "https://dexscreener.com/base/" + deployResult.ContractAddress,
		FeeInfo: fmt.Sprintf("%d%% of trading fees to creator, %d%% to DaiLaunch",
			s.creatorRewardPercent, 100-s.creatorRewardPercent),
	}, nil
}

// ensureUser returns the User row for a login, creating it with a fresh
// custodial wallet on first deploy. The wallet is never rotated afterwards.
func (s *DeployService) ensureUser(login string) (*models.User, error) {
	user, err := s.users.GetByUsername(login)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	address, privateKey, err := s.wallets.GenerateWallet()
	if err != nil {
		return nil, err
	}
	encrypted, err := s.wallets.Encrypt(privateKey)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		GithubUsername: login,
		WalletAddress:  address,
		EncryptedKey:   encrypted,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DeployService) publishDeployedEvent(token *models.Token, repoURL string) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"contractAddress": token.ContractAddress,
		"name":            token.Name,
		"symbol":          token.Symbol,
		"deployer":        token.Deployer,
		"creatorWallet":   token.CreatorWallet,
		"txHash":          token.TxHash,
		"githubRepo":      repoURL,
	})
	if err != nil {
		log.Printf("Failed to marshal token event: %v", err)
		return
	}
	if err := s.events.Publish("token.deployed", body); err != nil {
		log.Printf("Warning: failed to publish token.deployed for %s: %v", token.ContractAddress, err)
	}
}
