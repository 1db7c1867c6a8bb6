// Package collyfetch implements the fetch contract using the Colly
// collector, with optional SOCKS5 proxying for anonymized access.
package collyfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/Stalin-143/monitor/internal/monitor"
)

const defaultTimeout = 30 * time.Second

// Config controls collector behavior shared by all fetches.
type Config struct {
	UserAgent string
}

// Fetcher implements monitor.Fetcher using a cloned Colly collector per
// fetch. The base collector carries the pooled transport; per-resource
// settings (timeout, proxy) come from the FetchConfig on every call.
type Fetcher struct {
	cfg    Config
	base   *colly.Collector
	logger *zap.Logger
}

type fetchResult struct {
	res monitor.FetchResult
	err error
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}
	base := colly.NewCollector(opts...)
	// Monitoring re-fetches the same URL on every check; robots policy is
	// out of scope for this service.
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	})
	return &Fetcher{cfg: cfg, base: base, logger: logger}
}

// Fetch executes a single GET for the URL. Non-2xx responses and transport
// failures are errors; the caller treats both as a rejected check.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, cfg monitor.FetchConfig) (monitor.FetchResult, error) {
	collector := f.base.Clone()
	collector.AllowURLRevisit = true
	collector.IgnoreRobotsTxt = true

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	collector.SetRequestTimeout(timeout)

	if cfg.UseProxy {
		if cfg.ProxyAddress == "" {
			return monitor.FetchResult{}, errors.New("proxy requested but no proxy address configured")
		}
		if err := collector.SetProxy(cfg.ProxyAddress); err != nil {
			return monitor.FetchResult{}, fmt.Errorf("configure proxy %s: %w", cfg.ProxyAddress, err)
		}
		f.logger.Debug("fetching via proxy",
			zap.String("url", rawURL),
			zap.String("proxy", cfg.ProxyAddress),
		)
	}

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}
	start := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{res: monitor.FetchResult{
			Body:       append([]byte{}, r.Body...),
			StatusCode: r.StatusCode,
			Duration:   time.Since(start),
		}})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		if r != nil && r.StatusCode != 0 {
			err = fmt.Errorf("status %d: %w", r.StatusCode, err)
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return monitor.FetchResult{}, fmt.Errorf("visit %s: %w", rawURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return monitor.FetchResult{}, err
		}
		if res.err != nil {
			return monitor.FetchResult{}, res.err
		}
		return res.res, nil
	default:
		return monitor.FetchResult{}, errors.New("no response received")
	}
}
