package services

import (
	"context"
	"log"

	"dailaunch/internal/models"
	"dailaunch/internal/repositories"
)

// UserProfile is the /api/user/me payload: the user row joined with their
// deployed tokens and live wallet balance.
type UserProfile struct {
	GithubUsername string         `json:"githubUsername"`
	WalletAddress  string         `json:"walletAddress"`
	BalanceETH     float64        `json:"balanceEth"`
	BalanceUSD     float64        `json:"balanceUsd"`
	Tokens         []models.Token `json:"tokens"`
}

// KeyExport carries a decrypted custodial private key out to its owner.
type KeyExport struct {
	WalletAddress string `json:"walletAddress"`
	PrivateKey    string `json:"privateKey"`
	Warning       string `json:"warning"`
}

// UserService handles per-user read paths: the profile view and the
// private key export.
type UserService struct {
	users   repositories.UserRepository
	tokens  repositories.TokenRepository
	wallets *WalletService
	prices  *PriceService
}

// NewUserService creates a new UserService.
func NewUserService(
	users repositories.UserRepository,
	tokens repositories.TokenRepository,
	wallets *WalletService,
	prices *PriceService,
) *UserService {
	return &UserService{users: users, tokens: tokens, wallets: wallets, prices: prices}
}

// Profile returns the profile for a GitHub login. A balance read failure
// degrades to zero rather than failing the whole profile.
func (s *UserService) Profile(ctx context.Context, login string) (*UserProfile, error) {
	user, err := s.users.GetByUsername(login)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.ListByDeployer(login)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = []models.Token{}
	}

	balance, err := s.prices.WalletBalanceETH(ctx, user.WalletAddress)
	if err != nil {
		log.Printf("Failed to read balance for %s: %v", user.WalletAddress, err)
		balance = 0
	}

	return &UserProfile{
		GithubUsername: user.GithubUsername,
		WalletAddress:  user.WalletAddress,
		BalanceETH:     balance,
		BalanceUSD:     balance * s.prices.EthPriceUSD(ctx),
		Tokens:         tokens,
	}, nil
}

// ExportPrivateKey decrypts and returns the custodial key for a login.
// Callers must have already authenticated the login as the key's owner.
func (s *UserService) ExportPrivateKey(login string) (*KeyExport, error) {
	user, err := s.users.GetByUsername(login)
	if err != nil {
		return nil, err
	}

	privateKey, err := s.wallets.Decrypt(user.EncryptedKey)
	if err != nil {
		return nil, err
	}

	return &KeyExport{
		WalletAddress: user.WalletAddress,
		PrivateKey:    privateKey,
		Warning:       "Never share this key. Anyone holding it controls the wallet and all creator fees.",
	}, nil
}
