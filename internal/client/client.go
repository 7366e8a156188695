// Package client ties the core together: it encodes a validated query,
// performs the single blocking network call, and hands the completed
// response to the dispatcher. Everything else (validation, decoding,
// assembly) lives in the core packages.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/seisgo/fdsnws/internal/core/assemble"
	"github.com/seisgo/fdsnws/internal/core/dispatch"
	"github.com/seisgo/fdsnws/internal/core/httpclient"
	"github.com/seisgo/fdsnws/internal/core/model"
	"github.com/seisgo/fdsnws/internal/core/observability"
	"github.com/seisgo/fdsnws/internal/core/params"
	"github.com/seisgo/fdsnws/internal/core/waveform"
	"github.com/seisgo/fdsnws/internal/core/wire"
	"github.com/seisgo/fdsnws/internal/logger"
	"github.com/seisgo/fdsnws/internal/registry"
)

type Client struct {
	server     string
	base       string
	hc         *http.Client
	log        *slog.Logger
	dispatcher *dispatch.Dispatcher
}

type Option func(*options)

type options struct {
	hc      *http.Client
	log     *slog.Logger
	decoder waveform.Decoder
	verbose bool
}

func WithHTTPClient(hc *http.Client) Option { return func(o *options) { o.hc = hc } }
func WithLogger(l *slog.Logger) Option      { return func(o *options) { o.log = l } }
func WithDecoder(d waveform.Decoder) Option { return func(o *options) { o.decoder = d } }
func WithVerbose(v bool) Option             { return func(o *options) { o.verbose = v } }

// New resolves a registered data-centre label and builds a client for it.
func New(server string, opts ...Option) (*Client, error) {
	base, ok := registry.Lookup(server)
	if !ok {
		return nil, fmt.Errorf("unknown server %q (registered: %v)", server, registry.Labels())
	}
	return NewWithBase(server, base, opts...), nil
}

// NewWithBase builds a client for an explicit base URL, bypassing the
// registry.
func NewWithBase(server, base string, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hc == nil {
		o.hc = httpclient.NewOutbound()
	}
	if o.log == nil {
		zl := logger.Build(logger.Config{Level: "info", Component: "client", Server: server}, nil)
		o.log = logger.NewSlog(&zl)
	}
	return &Client{
		server:     server,
		base:       base,
		hc:         o.hc,
		log:        o.log,
		dispatcher: dispatch.New(o.log, o.decoder, o.verbose),
	}
}

// Do encodes a query as a GET request, performs it, and dispatches the
// response. This is the generic path; the typed helpers below unwrap the
// result field relevant to their kind.
func (c *Client) Do(ctx context.Context, q params.Query) (dispatch.Result, error) {
	u, err := wire.QueryURL(c.base, q)
	if err != nil {
		return dispatch.Result{}, err
	}
	return c.roundTrip(ctx, q, http.MethodGet, u, nil)
}

// DoBatch encodes a batch of queries as one POST request. Every member must
// agree on all non-varying fields; the first member stands in for the batch
// when dispatching the response.
func (c *Client) DoBatch(ctx context.Context, batch []params.Query) (dispatch.Result, error) {
	body, err := wire.EncodePostBody(batch)
	if err != nil {
		return dispatch.Result{}, err
	}
	q := batch[0]
	u := c.base + "/" + q.Protocol() + "/" + string(q.Service()) + "/" + strconv.Itoa(q.MajorVersion()) + "/query"
	return c.roundTrip(ctx, q, http.MethodPost, u, body)
}

func (c *Client) roundTrip(ctx context.Context, q params.Query, method, u string, body []byte) (dispatch.Result, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return dispatch.Result{}, fmt.Errorf("build request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "text/plain")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return dispatch.Result{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return dispatch.Result{}, fmt.Errorf("read body: %w", err)
	}
	observability.ObserveRequest(string(q.Service()), resp.StatusCode, time.Since(start).Seconds())

	prov := assemble.NewProvenance(c.server, u, respBody)
	ctx = logger.WithRequestID(ctx, prov.RequestID)
	c.log.DebugContext(ctx, "response received",
		"service", string(q.Service()),
		"status", resp.StatusCode,
		"bytes", len(respBody))

	res, err := c.dispatcher.Dispatch(q, dispatch.Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, prov)
	if err != nil {
		observability.IncDecodeError(q.Format())
	}
	return res, err
}

// QueryStations runs a station query and returns the assembled entities.
// A no-data response yields an empty, non-nil error-free result.
func (c *Client) QueryStations(ctx context.Context, q *params.StationQuery) ([]*model.Station, error) {
	res, err := c.Do(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Stations, nil
}

// QueryEvents runs an event query with text output and returns the decoded
// catalogue. For the XML format use QueryEventsDocument.
func (c *Client) QueryEvents(ctx context.Context, q *params.EventQuery) ([]*model.Event, error) {
	res, err := c.Do(ctx, q)
	if err != nil {
		return nil, err
	}
	if res.Raw != nil {
		return nil, fmt.Errorf("event response is an XML document; use QueryEventsDocument")
	}
	return res.Events, nil
}

// QueryEventsDocument runs an event query and returns the undecoded XML
// catalogue document for an external QuakeML reader.
func (c *Client) QueryEventsDocument(ctx context.Context, q *params.EventQuery) ([]byte, error) {
	res, err := c.Do(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Raw, nil
}

// FetchWaveforms runs a dataselect query and decodes the binary payload
// through the configured waveform decoder.
func (c *Client) FetchWaveforms(ctx context.Context, q *params.DataselectQuery) ([]waveform.Trace, error) {
	res, err := c.Do(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Traces, nil
}

// FetchWaveformsBulk sends many dataselect selections as one POST request.
func (c *Client) FetchWaveformsBulk(ctx context.Context, batch []*params.DataselectQuery) ([]waveform.Trace, error) {
	qs := make([]params.Query, len(batch))
	for i, q := range batch {
		qs[i] = q
	}
	res, err := c.DoBatch(ctx, qs)
	if err != nil {
		return nil, err
	}
	return res.Traces, nil
}

// FetchTimeseries runs a timeseries query with its processing pipeline.
func (c *Client) FetchTimeseries(ctx context.Context, q *params.TimeseriesQuery) ([]waveform.Trace, error) {
	res, err := c.Do(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Traces, nil
}
