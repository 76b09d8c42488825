// Command dailaunch is the terminal client for the DaiLaunch API. It
// authenticates with the GitHub token from the local `gh` CLI, so `gh auth
// login` is the only setup a user needs.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.dailaunch.online"

// client wraps the API endpoint plus the GitHub credential. The long timeout
// covers deploys, which block server-side until the chain confirms.
type client struct {
	apiURL      string
	githubToken string
	http        *http.Client
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	apiURL := os.Getenv("DAILAUNCH_API")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	c := &client{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		http:   &http.Client{Timeout: 2 * time.Minute},
	}

	command := os.Args[1]
	var err error
	switch command {
	case "deploy":
		err = c.deploy(os.Args[2:])
	case "login":
		err = c.login()
	case "status":
		err = c.status()
	case "exportkey":
		err = c.exportKey()
	case "claim":
		err = c.claim()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`DaiLaunch - deploy tokens on Base from your terminal

Usage:
  dailaunch deploy -name <name> -symbol <symbol> [-twitter <url>] [-website <url>]
  dailaunch login      Open a logged-in dashboard session in the browser
  dailaunch status     Show platform stats and latest tokens
  dailaunch claim      Show your wallet balance and deployed tokens
  dailaunch exportkey  Print your wallet's private key

Authentication uses the GitHub CLI. Run 'gh auth login' first.`)
}

// ghToken reads the GitHub token from the local gh CLI.
func ghToken() (string, error) {
	out, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("could not read GitHub token. Run 'gh auth login' first")
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", fmt.Errorf("gh returned an empty token. Run 'gh auth login' first")
	}
	return token, nil
}

func (c *client) authenticate() error {
	if c.githubToken != "" {
		return nil
	}
	token, err := ghToken()
	if err != nil {
		return err
	}
	c.githubToken = token
	return nil
}

// request performs one API call and decodes the JSON response into out. A
// non-2xx status surfaces the server's error field when present.
func (c *client) request(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.apiURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.githubToken != "" {
		req.Header.Set("x-github-token", c.githubToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (c *client) deploy(args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	name := fs.String("name", "", "token name (required)")
	symbol := fs.String("symbol", "", "token symbol, max 10 characters (required)")
	twitter := fs.String("twitter", "", "twitter/X URL")
	website := fs.String("website", "", "website URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *symbol == "" {
		return fmt.Errorf("-name and -symbol are required")
	}

	if err := c.authenticate(); err != nil {
		return err
	}

	fmt.Printf("Deploying %s (%s) on Base...\n", *name, *symbol)

	var t struct {
		ContractAddress string `json:"contractAddress"`
		TxHash          string `json:"txHash"`
		CreatorWallet   string `json:"creatorWallet"`
		GithubRepo      string `json:"githubRepo"`
		BaseScan        string `json:"baseScan"`
		DexScreener     string `json:"dexScreener"`
		FeeInfo         string `json:"feeInfo"`
	}
	err := c.request(http.MethodPost, "/api/deploy", map[string]string{
		"name":    *name,
		"symbol":  *symbol,
		"twitter": *twitter,
		"website": *website,
	}, &t)
	if err != nil {
		return err
	}

	fmt.Println("\nToken deployed!")
	fmt.Printf("  Contract:    %s\n", t.ContractAddress)
	fmt.Printf("  Tx:          %s\n", t.TxHash)
	fmt.Printf("  Your wallet: %s\n", t.CreatorWallet)
	fmt.Printf("  Repo:        %s\n", t.GithubRepo)
	fmt.Printf("  BaseScan:    %s\n", t.BaseScan)
	fmt.Printf("  DexScreener: %s\n", t.DexScreener)
	fmt.Printf("  Fees:        %s\n", t.FeeInfo)
	return nil
}

func (c *client) login() error {
	if err := c.authenticate(); err != nil {
		return err
	}

	var resp struct {
		LoginURL string `json:"loginUrl"`
		User     struct {
			Login string `json:"login"`
		} `json:"user"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.request(http.MethodPost, "/auth/cli-login", nil, &resp); err != nil {
		return err
	}

	fmt.Printf("Logged in as @%s\n\n", resp.User.Login)
	fmt.Println("Open this URL to access the dashboard:")
	fmt.Printf("  %s\n\n", resp.LoginURL)
	fmt.Printf("The session is valid until %s.\n", resp.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func (c *client) status() error {
	var stats struct {
		TotalTokens    int64   `json:"totalTokens"`
		TotalVolume    float64 `json:"totalVolume"`
		TotalMarketCap float64 `json:"totalMarketCap"`
		DeployedToday  int64   `json:"deployedToday"`
	}
	if err := c.request(http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return err
	}

	fmt.Println("DaiLaunch platform stats")
	fmt.Printf("  Tokens deployed: %d (%d today)\n", stats.TotalTokens, stats.DeployedToday)
	fmt.Printf("  Total volume:    $%.2f\n", stats.TotalVolume)
	fmt.Printf("  Total mcap:      $%.2f\n", stats.TotalMarketCap)

	var page struct {
		Tokens []struct {
			Name            string  `json:"name"`
			Symbol          string  `json:"symbol"`
			ContractAddress string  `json:"contractAddress"`
			MarketCap       float64 `json:"marketCap"`
		} `json:"tokens"`
	}
	if err := c.request(http.MethodGet, "/api/tokens?limit=5&sort=new", nil, &page); err != nil {
		return err
	}

	if len(page.Tokens) > 0 {
		fmt.Println("\nLatest tokens:")
		for _, t := range page.Tokens {
			fmt.Printf("  %-10s %-20s mcap $%-12.0f %s\n", t.Symbol, t.Name, t.MarketCap, t.ContractAddress)
		}
	}
	return nil
}

func (c *client) claim() error {
	if err := c.authenticate(); err != nil {
		return err
	}

	var profile struct {
		GithubUsername string  `json:"githubUsername"`
		WalletAddress  string  `json:"walletAddress"`
		BalanceETH     float64 `json:"balanceEth"`
		BalanceUSD     float64 `json:"balanceUsd"`
		Tokens         []struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"tokens"`
	}
	if err := c.request(http.MethodGet, "/api/user/me", nil, &profile); err != nil {
		return err
	}

	fmt.Printf("Wallet for @%s\n", profile.GithubUsername)
	fmt.Printf("  Address: %s\n", profile.WalletAddress)
	fmt.Printf("  Balance: %.6f ETH ($%.2f)\n", profile.BalanceETH, profile.BalanceUSD)
	if len(profile.Tokens) > 0 {
		fmt.Printf("\nYour tokens (%d):\n", len(profile.Tokens))
		for _, t := range profile.Tokens {
			fmt.Printf("  %s (%s)\n", t.Name, t.Symbol)
		}
	}
	fmt.Println("\nCreator fees accrue to this wallet automatically. Use 'dailaunch exportkey'")
	fmt.Println("to import it into MetaMask and move funds.")
	return nil
}

func (c *client) exportKey() error {
	if err := c.authenticate(); err != nil {
		return err
	}

	var export struct {
		WalletAddress string `json:"walletAddress"`
		PrivateKey    string `json:"privateKey"`
		Warning       string `json:"warning"`
	}
	if err := c.request(http.MethodGet, "/api/user/privatekey", nil, &export); err != nil {
		return err
	}

	fmt.Printf("Wallet:      %s\n", export.WalletAddress)
	fmt.Printf("Private key: %s\n\n", export.PrivateKey)
	fmt.Printf("WARNING: %s\n", export.Warning)
	return nil
}
