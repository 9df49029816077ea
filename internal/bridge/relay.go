package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrJobNotFound = errors.New("print job not found on relay")

// ParseJobRef accepts either a viewer URL (".../view?id=<id>") or a bare job
// id. For a viewer URL the relay base address is derived from it.
func ParseJobRef(ref string) (baseURL, id string, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", errors.New("job reference is empty")
	}
	if !strings.Contains(ref, "://") {
		return "", ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid viewer url: %w", err)
	}
	id = u.Query().Get("id")
	if id == "" {
		return "", "", fmt.Errorf("viewer url %q has no id parameter", ref)
	}

	path := strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/view")
	return u.Scheme + "://" + u.Host + path, id, nil
}

// FetchMessage loads a job from the relay's JSON API in the same shape the
// viewing page embeds for its script.
func FetchMessage(ctx context.Context, httpClient *http.Client, baseURL, id string) (Message, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/api/print-jobs/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Message{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("fetch job %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Message{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	case resp.StatusCode >= 400:
		return Message{}, fmt.Errorf("fetch job %s: http error: %d", id, resp.StatusCode)
	}

	var body struct {
		Bridge Message `json:"bridge"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Message{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	if body.Bridge.JobID == "" {
		return Message{}, fmt.Errorf("decode job %s: response has no bridge message", id)
	}
	return NewMessage(body.Bridge.JobID, body.Bridge.Directives), nil
}
