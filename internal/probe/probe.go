package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTimeout = 3 * time.Second

var ErrUnreachable = errors.New("dev server not reachable")

// CheckReachable GETs url and fails unless the server answers with a
// non-5xx status. 4xx is accepted: an SPA dev server may 404 on / while still
// serving the app shell on client-side routes.
func CheckReachable(ctx context.Context, url string, timeout time.Duration) (int, error) {
	if strings.TrimSpace(url) == "" {
		return 0, fmt.Errorf("missing url")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w at %s (is the dev server running?): %v", ErrUnreachable, url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024*32))

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, fmt.Errorf("%w at %s: unexpected status %s", ErrUnreachable, url, resp.Status)
	}
	return resp.StatusCode, nil
}
