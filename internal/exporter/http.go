package exporter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/flockwatch/internal/logging"
	"github.com/JonMunkholm/flockwatch/internal/pipeline"
)

// HTTPConfig configures an HTTPExporter.
type HTTPConfig struct {
	StateCasesURL      string
	AffectedTotalsURL  string
	ConfirmedTotalsURL string
	Timeout            time.Duration
	MaxBytes           int64
}

// HTTPExporter downloads export documents from fixed URLs.
type HTTPExporter struct {
	client *http.Client
	cfg    HTTPConfig
}

// NewHTTPExporter creates an exporter using its own http.Client.
func NewHTTPExporter(cfg HTTPConfig) *HTTPExporter {
	return &HTTPExporter{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// StateCases downloads the per-state export.
func (e *HTTPExporter) StateCases(ctx context.Context) ([]byte, error) {
	return e.fetch(ctx, e.cfg.StateCasesURL)
}

// PeriodExports downloads both totals exports concurrently. Either failure
// cancels the other download.
func (e *HTTPExporter) PeriodExports(ctx context.Context) (pipeline.PeriodExports, error) {
	var out pipeline.PeriodExports

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := e.fetch(gctx, e.cfg.AffectedTotalsURL)
		out.AffectedTotals = b
		return err
	})
	g.Go(func() error {
		b, err := e.fetch(gctx, e.cfg.ConfirmedTotalsURL)
		out.ConfirmedTotals = b
		return err
	})

	if err := g.Wait(); err != nil {
		return pipeline.PeriodExports{}, err
	}
	return out, nil
}

func (e *HTTPExporter) fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Source: url, Err: err}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: url, Status: resp.StatusCode}
	}

	body, err := readLimited(resp.Body, e.cfg.MaxBytes)
	if err != nil {
		return nil, &FetchError{Source: url, Err: err}
	}

	logging.FromContext(ctx).Debug("export downloaded",
		"url", url,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return body, nil
}

// readLimited reads r fully, failing with ErrTooLarge past limit bytes.
// A limit of zero or less disables the cap.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return b, nil
}
