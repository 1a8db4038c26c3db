package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const fetchRetries = 3

type fetcher struct {
	client *http.Client
}

func newFetcher(timeout time.Duration) *fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// fetch downloads one feed with exponential backoff on transient failures.
// Retry happens only here at the network boundary, never in the parsers.
func (f *fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("feed returned status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)

		return err
	}

	retryBackoff := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fetchRetries)

	if err := backoff.Retry(operation, backoff.WithContext(retryBackoff, ctx)); err != nil {
		return nil, err
	}

	return body, nil
}
