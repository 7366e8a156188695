package client

import (
	"context"
	"fmt"
	"time"

	"github.com/seisgo/fdsnws/internal/core/assemble"
	"github.com/seisgo/fdsnws/internal/core/model"
	"github.com/seisgo/fdsnws/internal/core/observability"
	"github.com/seisgo/fdsnws/internal/core/params"
)

// Stubs without a validity window are matched against the full catalogue
// history.
var (
	openWindowStart = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	openWindowEnd   = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// AttachStationMetadata enriches caller-supplied station stubs (identity
// codes only) with server-side channel metadata. All stubs go out as a
// single POST batch; the response is reconciled against the stubs by
// identity code. Ambiguous and unmatched identities are reported as
// warnings, never as errors — partial success is the expected common case.
func (c *Client) AttachStationMetadata(ctx context.Context, stubs []*model.Station) ([]assemble.Warning, error) {
	if len(stubs) == 0 {
		return nil, nil
	}

	batch := make([]params.Query, 0, len(stubs))
	requests := make(map[string]any, len(stubs))
	for _, stub := range stubs {
		b := params.NewStationQuery().
			Network(stub.ID.Network).
			Station(stub.ID.Station).
			Location(stub.ID.Location).
			Channel(stub.ID.Channel).
			Level("channel").
			Format("text")
		if stub.Window.Start.IsZero() {
			b.Start(openWindowStart)
		} else {
			b.Start(stub.Window.Start)
		}
		if stub.Window.End.IsZero() {
			b.End(openWindowEnd)
		} else {
			b.End(stub.Window.End)
		}
		q, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("stub %s: %w", stub.ID, err)
		}
		batch = append(batch, q)
		requests[stub.ID.String()] = q
	}

	res, err := c.DoBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	warnings := assemble.Reconcile(stubs, res.Stations, requests)
	for _, w := range warnings {
		observability.IncReconcileWarning(w.Kind)
		c.log.Warn("reconciliation", "kind", w.Kind, "identity", w.Identity, "detail", w.Message)
	}
	return warnings, nil
}
