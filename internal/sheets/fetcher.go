package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL      = "https://docs.google.com"
	DefaultMaxRedirects = 10
	exportPath          = "/spreadsheets/d/%s/export?format=csv&gid=%s"
)

// Config controls how sheets are downloaded
type Config struct {
	BaseURL       string
	SpreadsheetID string
	MaxRedirects  int
	Timeout       time.Duration
	RetryCount    int
	RetryWait     time.Duration
	RetryMaxWait  time.Duration
}

// Observer is notified after every sheet download
type Observer interface {
	ObserveFetch(sheet string, err error, elapsed time.Duration)
}

// Fetcher downloads spreadsheet tabs as CSV
type Fetcher struct {
	client   *resty.Client
	cfg      Config
	logger   *zap.Logger
	observer Observer
}

// NewFetcher creates a Fetcher. Redirects are never followed by the HTTP
// client itself; Fetch follows them up to cfg.MaxRedirects hops.
func NewFetcher(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "text/csv").
		SetLogger(logger.Sugar())

	// Zero keeps the resty defaults (100ms / 2s).
	if cfg.RetryWait > 0 {
		client.SetRetryWaitTime(cfg.RetryWait)
	}
	if cfg.RetryMaxWait > 0 {
		client.SetRetryMaxWaitTime(cfg.RetryMaxWait)
	}

	return &Fetcher{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// WithObserver attaches an observer for fetch outcomes
func (f *Fetcher) WithObserver(o Observer) *Fetcher {
	f.observer = o
	return f
}

// ExportURL returns the CSV export address of a sheet
func (f *Fetcher) ExportURL(ref Ref) string {
	return f.cfg.BaseURL + fmt.Sprintf(exportPath, url.PathEscape(f.cfg.SpreadsheetID), url.QueryEscape(ref.GID))
}

// Fetch downloads and parses one sheet
func (f *Fetcher) Fetch(ctx context.Context, ref Ref) (*Sheet, error) {
	start := time.Now()
	sheet, err := f.fetch(ctx, ref)
	if f.observer != nil {
		f.observer.ObserveFetch(ref.Key, err, time.Since(start))
	}
	return sheet, err
}

func (f *Fetcher) fetch(ctx context.Context, ref Ref) (*Sheet, error) {
	target := f.ExportURL(ref)

	for hops := 0; ; hops++ {
		resp, err := f.client.R().SetContext(ctx).Get(target)
		if err != nil {
			return nil, &FetchError{Sheet: ref.Key, URL: target, Err: err}
		}

		status := resp.StatusCode()
		location := resp.Header().Get("Location")

		switch {
		case status >= 300 && status < 400 && location != "":
			if hops >= f.cfg.MaxRedirects {
				return nil, &RedirectLoopError{Sheet: ref.Key, URL: location, Hops: f.cfg.MaxRedirects}
			}
			next, err := resolveLocation(target, location)
			if err != nil {
				return nil, &FetchError{Sheet: ref.Key, URL: target, Err: err}
			}
			f.logger.Debug("Following redirect",
				zap.String("sheet", ref.Key),
				zap.Int("status", status),
				zap.Int("hop", hops+1),
			)
			target = next
			continue

		case status < 200 || status >= 300:
			return nil, &FetchError{Sheet: ref.Key, URL: target, StatusCode: status}
		}

		header, rows, err := parseCSV(resp.Body())
		if err != nil {
			return nil, &ParseError{Sheet: ref.Key, Err: err}
		}

		f.logger.Debug("Sheet fetched",
			zap.String("sheet", ref.Key),
			zap.String("gid", ref.GID),
			zap.Int("rows", len(rows)),
			zap.Int("redirects", hops),
		)
		return &Sheet{Ref: ref, Header: header, Rows: rows}, nil
	}
}

// FetchAll downloads all sheets concurrently. The first failure cancels the
// remaining downloads and is returned; no partial result is produced. Sheets
// are returned in the order of refs.
func (f *Fetcher) FetchAll(ctx context.Context, refs []Ref) ([]*Sheet, error) {
	result := make([]*Sheet, len(refs))
	g, gctx := errgroup.WithContext(ctx)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			sheet, err := f.Fetch(gctx, ref)
			if err != nil {
				return err
			}
			result[i] = sheet
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	loc, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	return base.ResolveReference(loc).String(), nil
}
