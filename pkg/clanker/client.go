// Package clanker is a thin HTTP client for the Clanker token-deployment
// service. Clanker does the actual on-chain work (signing, broadcasting,
// confirmation); this client only submits the deployment request and relays
// the resulting contract address and transaction hash.
package clanker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultTimeout bounds the deploy call. Block confirmation on Base is
// normally seconds, but the service waits for the transaction server-side,
// so the request can legitimately take over a minute.
const defaultTimeout = 2 * time.Minute

// tokenImage is the fixed logo pinned on IPFS used for every deployment.
const tokenImage = "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"

// Config holds the deployment service endpoint and credentials, plus the
// platform side of the fee split.
type Config struct {
	APIURL               string
	APIKey               string
	PlatformWallet       string // receives the non-creator slice of trading fees
	CreatorRewardPercent int    // 0-100; remainder goes to the platform
}

// DeployParams describe one token deployment request.
type DeployParams struct {
	Name          string
	Symbol        string
	Twitter       string
	Website       string
	CreatorWallet string
	GithubUser    string
}

// DeployResult is the on-chain artifact of a successful deployment.
type DeployResult struct {
	ContractAddress string `json:"contractAddress"`
	TxHash          string `json:"txHash"`
}

// Client calls the Clanker deployment API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client with the default 2-minute deploy timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type deployRequest struct {
	Name       string         `json:"name"`
	Symbol     string         `json:"symbol"`
	TokenAdmin string         `json:"tokenAdmin"`
	Image      string         `json:"image"`
	Metadata   metadata       `json:"metadata"`
	Context    requestContext `json:"context"`
	Rewards    rewardsConfig  `json:"rewardsConfig"`
}

type metadata struct {
	Description     string   `json:"description"`
	SocialMediaURLs []string `json:"socialMediaUrls"`
	AuditURLs       []string `json:"auditUrls"`
}

type requestContext struct {
	Interface string `json:"interface"`
	Platform  string `json:"platform"`
	MessageID string `json:"messageId"`
	ID        string `json:"id"`
}

// rewardsConfig is the fee-split configuration passed through verbatim. It is
// pure configuration; nothing here is computed or negotiated.
type rewardsConfig struct {
	CreatorReward            int    `json:"creatorReward"`
	CreatorAdmin             string `json:"creatorAdmin"`
	CreatorRewardRecipient   string `json:"creatorRewardRecipient"`
	InterfaceAdmin           string `json:"interfaceAdmin"`
	InterfaceRewardRecipient string `json:"interfaceRewardRecipient"`
}

type deployResponse struct {
	ContractAddress string `json:"contractAddress"`
	TxHash          string `json:"txHash"`
	Error           string `json:"error"`
}

// Deploy submits a token deployment and blocks until the service reports the
// deployed contract address. The call is attempted exactly once.
func (c *Client) Deploy(ctx context.Context, params DeployParams) (*DeployResult, error) {
	socialURLs := []string{}
	if params.Twitter != "" {
		socialURLs = append(socialURLs, params.Twitter)
	}
	if params.Website != "" {
		socialURLs = append(socialURLs, params.Website)
	}

	reqBody := deployRequest{
		Name:       params.Name,
		Symbol:     params.Symbol,
		TokenAdmin: c.cfg.PlatformWallet,
		Image:      tokenImage,
		Metadata: metadata{
			Description:     fmt.Sprintf("Token deployed via DaiLaunch by @%s", params.GithubUser),
			SocialMediaURLs: socialURLs,
			AuditURLs:       []string{},
		},
		Context: requestContext{
			Interface: "DaiLaunch",
			Platform:  "github",
			ID:        params.GithubUser,
		},
		Rewards: rewardsConfig{
			CreatorReward:            c.cfg.CreatorRewardPercent,
			CreatorAdmin:             params.CreatorWallet,
			CreatorRewardRecipient:   params.CreatorWallet,
			InterfaceAdmin:           c.cfg.PlatformWallet,
			InterfaceRewardRecipient: c.cfg.PlatformWallet,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deploy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIURL+"/tokens/deploy", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clanker deploy failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read deploy response: %w", err)
	}

	var out deployResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode deploy response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != "" {
		msg := out.Error
		if msg == "" {
			msg = string(body)
		}
		return nil, fmt.Errorf("clanker deploy failed: %s", msg)
	}
	if out.ContractAddress == "" {
		return nil, fmt.Errorf("clanker deploy returned no contract address")
	}

	return &DeployResult{
		ContractAddress: out.ContractAddress,
		TxHash:          out.TxHash,
	}, nil
}
