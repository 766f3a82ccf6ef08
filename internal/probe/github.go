package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// GitHub checks repository existence against the GitHub API. A 404 is
// a definitive no; anything other than 200/404 (rate limiting, auth
// failures, outages) is an error, never a guess.
type GitHub struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewGitHub returns a probe against the given API base URL, e.g.
// "https://api.github.com". Token may be empty for anonymous access.
func NewGitHub(baseURL, token string, timeout time.Duration) *GitHub {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GitHub{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (g *GitHub) Known(ctx context.Context, repository string) (bool, error) {
	url := fmt.Sprintf("%s/repos/%s", g.BaseURL, repository)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("probe: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "boardwalk")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe: %s: %w", repository, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("probe: %s: unexpected status %d", repository, resp.StatusCode)
	}
}
