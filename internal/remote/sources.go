// ABOUTME: Multi-source fetch: queries several sources in parallel and concatenates results
// ABOUTME: Failing sources are logged and skipped rather than failing the whole call

package remote

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
)

// FetchFromSources fetches kind from every source concurrently. Results are
// concatenated in the order of sources; failures are skipped.
func (c *Client) FetchFromSources(ctx context.Context, kind entity.Kind, sources []string) []entity.Record {
	results := make([][]entity.Record, len(sources))

	var g errgroup.Group
	g.SetLimit(4)
	for i, source := range sources {
		g.Go(func() error {
			recs, err := c.Fetch(ctx, kind, source, nil)
			if err != nil {
				c.logger.Warn("source skipped", "kind", kind, "source", source, "error", err)
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	var merged []entity.Record
	for _, recs := range results {
		merged = append(merged, recs...)
	}
	return merged
}
