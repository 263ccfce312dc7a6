package druid

import (
	"context"
	"sync"

	"github.com/ignite/mbr-dashboard/internal/pkg/logger"
	"github.com/ignite/mbr-dashboard/internal/report"
)

// Collector fans a query out to every regional broker and merges the rows.
// A region that fails contributes nothing: reports degrade to the healthy
// regions rather than failing outright.
type Collector struct {
	clients []*Client
}

// NewCollector creates a collector over the given broker clients.
func NewCollector(clients ...*Client) *Collector {
	return &Collector{clients: clients}
}

// FetchRegion runs the deliverability query against a single region.
func (c *Collector) FetchRegion(ctx context.Context, region, startDate, endDate string) ([]report.MetricRow, error) {
	for _, client := range c.clients {
		if client.Region() != region {
			continue
		}
		rows, err := client.Query(ctx, DeliverabilityQuery(startDate, endDate))
		if err != nil {
			return nil, err
		}
		return convert(rows, region), nil
	}
	return nil, nil
}

// FetchDeliverability runs the full-metric query against all regions
// concurrently. The date range is half-open: startDate inclusive, endDate
// exclusive, both "YYYY-MM-DD 00:00:00".
func (c *Collector) FetchDeliverability(ctx context.Context, startDate, endDate string) []report.MetricRow {
	return c.fetchAll(ctx, DeliverabilityQuery(startDate, endDate))
}

// FetchPulsation runs the daily-monitoring query against all regions
// concurrently.
func (c *Collector) FetchPulsation(ctx context.Context, startDate, endDate string) []report.MetricRow {
	return c.fetchAll(ctx, PulsationQuery(startDate, endDate))
}

func (c *Collector) fetchAll(ctx context.Context, sqlText string) []report.MetricRow {
	type result struct {
		region string
		rows   []sqlRow
		err    error
	}

	results := make(chan result, len(c.clients))
	var wg sync.WaitGroup
	for _, client := range c.clients {
		wg.Add(1)
		go func(cl *Client) {
			defer wg.Done()
			rows, err := cl.Query(ctx, sqlText)
			results <- result{region: cl.Region(), rows: rows, err: err}
		}(client)
	}
	wg.Wait()
	close(results)

	var merged []report.MetricRow
	for res := range results {
		if res.err != nil {
			logger.Warn("druid region fetch failed, continuing without it",
				"region", res.region, "error", res.err)
			continue
		}
		merged = append(merged, convert(res.rows, res.region)...)
	}
	return merged
}

func convert(rows []sqlRow, region string) []report.MetricRow {
	out := make([]report.MetricRow, 0, len(rows))
	for _, r := range rows {
		if r.FromDomain == "" {
			continue
		}
		out = append(out, r.toMetricRow(region))
	}
	return out
}
