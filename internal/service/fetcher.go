package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"noticeboard/pkg/logger"
	"noticeboard/pkg/metrics"

	"github.com/codeGROOVE-dev/retry"
)

const (
	defaultFetchTimeout  = 15 * time.Second
	defaultFetchAttempts = 3
	maxFetchBody         = 5 << 20
	userAgent            = "noticeboard/1.0 (+lobby display)"
)

// statusError 外部接口返回非 2xx
type statusError struct {
	URL    string
	Status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// fetcher 带重试的外部 GET 请求
type fetcher struct {
	client   *http.Client
	attempts uint
	delay    time.Duration
	logger   *logger.Logger
}

func newFetcher(client *http.Client, logger *logger.Logger) *fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &fetcher{
		client:   client,
		attempts: defaultFetchAttempts,
		delay:    time.Second,
		logger:   logger,
	}
}

// get 请求 url 并返回响应体；4xx 不重试，其余失败按退避重试
func (f *fetcher) get(ctx context.Context, kind, url, accept string) ([]byte, error) {
	var body []byte
	jitter := f.delay
	if jitter <= 0 {
		jitter = time.Millisecond
	}

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("User-Agent", userAgent)
			if accept != "" {
				req.Header.Set("Accept", accept)
			}

			start := time.Now()
			resp, err := f.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			f.logger.Debug("外部请求完成", "kind", kind, "url", url,
				"status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				serr := &statusError{URL: url, Status: resp.StatusCode}
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return retry.Unrecoverable(serr)
				}
				return serr
			}

			body, err = io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
			return err
		},
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(jitter),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Info("外部请求失败，重试", "kind", kind, "url", url, "attempt", n, "error", err)
		}),
	)

	metrics.ExternalFetches.WithLabelValues(kind, metrics.FetchStatus(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return body, nil
}
