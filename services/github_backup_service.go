package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appConfig "github.com/maintroute/maintenance-api/config"
)

// GitHubBackupService stores database files as base64 blobs in a
// repository through the contents API. Each upload is keyed by the
// stored content sha so a re-upload of an existing file updates it
// instead of failing with a conflict.
type GitHubBackupService struct {
	client  *http.Client
	baseURL string
	token   string
	repo    string
	branch  string
}

// NewGitHubBackupService creates a backup service for the configured repository
func NewGitHubBackupService(cfg *appConfig.Config) *GitHubBackupService {
	return &GitHubBackupService{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.github.com",
		token:   cfg.GitHubToken,
		repo:    cfg.GitHubRepo,
		branch:  cfg.GitHubBranch,
	}
}

// SetBaseURL overrides the API endpoint (primarily for testing)
func (g *GitHubBackupService) SetBaseURL(url string) {
	g.baseURL = strings.TrimRight(url, "/")
}

func (g *GitHubBackupService) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// contentResponse is the subset of the contents API response we use
type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// getContent fetches the current remote version of a file, or nil when absent
func (g *GitHubBackupService) getContent(ctx context.Context, name string) (*contentResponse, error) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", g.baseURL, g.repo, name, g.branch)
	req, err := g.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contents request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var content contentResponse
		if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
			return nil, fmt.Errorf("failed to decode contents response: %w", err)
		}
		return &content, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("contents request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// UploadFile creates or updates the remote copy of a database file
func (g *GitHubBackupService) UploadFile(ctx context.Context, name string, data []byte) error {
	// Fetch the existing sha first; the API rejects an update without it
	existing, err := g.getContent(ctx, name)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"message": fmt.Sprintf("Backup %s", name),
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  g.branch,
	}
	if existing != nil {
		payload["sha"] = existing.SHA
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode upload payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/contents/%s", g.baseURL, g.repo, name)
	req, err := g.newRequest(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload of %s returned status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// DownloadFile fetches and decodes the remote copy of a database file
func (g *GitHubBackupService) DownloadFile(ctx context.Context, name string) ([]byte, error) {
	content, err := g.getContent(ctx, name)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrBackupNotFound
	}
	if content.Encoding != "base64" {
		return nil, fmt.Errorf("unexpected encoding %q for %s", content.Encoding, name)
	}

	// The API wraps base64 content across lines
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return data, nil
}

// CheckConnection verifies the token, repository and branch are reachable
func (g *GitHubBackupService) CheckConnection(ctx context.Context) error {
	url := fmt.Sprintf("%s/repos/%s/branches/%s", g.baseURL, g.repo, g.branch)
	req, err := g.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("repository %q or branch %q not found", g.repo, g.branch)
	case http.StatusUnauthorized:
		return fmt.Errorf("token rejected by the backup repository")
	default:
		return fmt.Errorf("connection check returned status %d", resp.StatusCode)
	}
}
