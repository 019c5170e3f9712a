package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/oneearth/internal/metrics"
	"github.com/five82/oneearth/internal/present"
	"github.com/five82/oneearth/internal/schema"
)

// Report is a one-shot reading of every endpoint, used by the snapshot
// command.
type Report struct {
	Origin    string              `json:"origin" yaml:"origin"`
	FetchedAt time.Time           `json:"fetched_at" yaml:"fetched_at"`
	Hello     string              `json:"hello" yaml:"hello"`
	Latest    schema.LatestMetric `json:"latest" yaml:"latest"`
	Readout   present.Readout     `json:"readout" yaml:"readout"`
	Days      int                 `json:"days" yaml:"days"`
	Min       float64             `json:"min" yaml:"min"`
	Max       float64             `json:"max" yaml:"max"`
	Series    schema.Series       `json:"series" yaml:"series"`
}

// FetchReport reads the latest value and series concurrently. A failing
// hello banner is reported as "API unreachable" rather than as an error.
func FetchReport(ctx context.Context, client metrics.Fetcher, origin string, days int, now func() time.Time) (Report, error) {
	if now == nil {
		now = time.Now
	}
	r := Report{Origin: origin, Days: days}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		latest, err := client.FetchLatest(gctx)
		if err != nil {
			return err
		}
		r.Latest = latest
		return nil
	})
	g.Go(func() error {
		series, err := client.FetchSeries(gctx, days)
		if err != nil {
			return err
		}
		r.Series = series
		return nil
	})
	g.Go(func() error {
		msg, err := client.FetchHello(gctx)
		if err != nil {
			msg = "API unreachable"
		}
		r.Hello = msg
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("fetch report: %w", err)
	}

	r.FetchedAt = now().UTC()
	r.Readout = present.ReadoutOf(r.Latest)
	r.Min, r.Max, _ = present.Range(r.Series)
	return r, nil
}
