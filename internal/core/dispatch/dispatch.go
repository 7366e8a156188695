// Package dispatch inspects a completed response and routes its body to the
// right decoder. It owns the "no data" vs "error" vs "success with empty
// body" decision; the transport that produced the response lives elsewhere.
package dispatch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/seisgo/fdsnws/internal/core/assemble"
	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
	"github.com/seisgo/fdsnws/internal/core/params"
	"github.com/seisgo/fdsnws/internal/core/stationxml"
	"github.com/seisgo/fdsnws/internal/core/textrec"
	"github.com/seisgo/fdsnws/internal/core/waveform"
)

// Response is the already-completed HTTP exchange handed in by the
// transport: status, declared content type, full body.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Result is the decoded output. Exactly one of the record collections is
// populated for a successful decode; NoData and Failed mark the empty
// outcomes that are not errors.
type Result struct {
	Stations []*model.Station
	Events   []*model.Event
	Traces   []waveform.Trace

	// Raw holds an event-service XML document, which is returned
	// undecoded for an external QuakeML reader.
	Raw []byte

	Status int
	NoData bool

	// Failed marks a known failure status. Per the service contract these
	// are logged, not raised, so the caller can distinguish them from a
	// legitimate empty result.
	Failed bool
}

// Expected content types per declared output encoding. A mismatch is a
// logged warning, never fatal; an absent header is tolerated silently.
var expectedContentType = map[string]string{
	"text":     "text/plain",
	"xml":      "application/xml",
	"miniseed": "application/vnd.fdsn.mseed",
}

// Statuses the services document as failures. They warrant a log line but
// not an error, unlike an undocumented status.
var failureStatuses = map[int]bool{
	400: true, 401: true, 403: true,
	413: true, 414: true,
	500: true, 503: true,
}

// Dispatcher routes responses to decoders. Verbose shifts the failure-status
// log line from warning to informational.
type Dispatcher struct {
	log     *slog.Logger
	decoder waveform.Decoder
	verbose bool
}

func New(log *slog.Logger, decoder waveform.Decoder, verbose bool) *Dispatcher {
	return &Dispatcher{log: log, decoder: decoder, verbose: verbose}
}

// Dispatch decodes one response for the query that produced it.
func (d *Dispatcher) Dispatch(q params.Query, resp Response, prov assemble.Provenance) (Result, error) {
	res := Result{Status: resp.Status}

	if resp.Status == q.NoData() {
		if len(resp.Body) > 0 {
			d.log.Warn("no-data status with a non-empty body; discarding body",
				"status", resp.Status, "bytes", len(resp.Body))
		}
		res.NoData = true
		return res, nil
	}

	if failureStatuses[resp.Status] {
		snippet := bodySnippet(resp.Body)
		if d.verbose {
			d.log.Info("request failed", "status", resp.Status, "body", snippet)
		} else {
			d.log.Warn("request failed", "status", resp.Status, "body", snippet)
		}
		res.Failed = true
		return res, nil
	}

	if resp.Status != 200 {
		return res, &fdsnerr.ProtocolError{Status: resp.Status, Reason: "unexpected status"}
	}

	if len(resp.Body) == 0 {
		return res, &fdsnerr.ProtocolError{
			Status: resp.Status,
			Reason: "empty response but server did not indicate no data",
		}
	}

	format := q.Format()
	if want, ok := expectedContentType[format]; ok && resp.ContentType != "" {
		if !strings.HasPrefix(resp.ContentType, want) {
			d.log.Warn("content type differs from the declared format",
				"got", resp.ContentType, "want", want, "format", format)
		}
	}

	switch format {
	case "text":
		return d.decodeText(q, resp, prov, res)
	case "xml":
		return d.decodeXML(q, resp, prov, res)
	case "isf":
		return res, &fdsnerr.FormatError{
			Schema: "isf",
			Reason: fdsnerr.ErrNotImplemented.Error(),
		}
	case "miniseed":
		return d.decodeBinary(resp, res)
	case "ascii", "geocsv":
		// sample-value listings have no record schema; hand them back
		res.Raw = resp.Body
		return res, nil
	default:
		return res, &fdsnerr.FormatError{Schema: format, Reason: "unknown declared format"}
	}
}

func (d *Dispatcher) decodeText(q params.Query, resp Response, prov assemble.Provenance, res Result) (Result, error) {
	switch q.Service() {
	case params.ServiceEvent:
		recs, err := textrec.DecodeEvents(resp.Body)
		if err != nil {
			return res, err
		}
		res.Events = assemble.EventsFromText(recs, prov)
		return res, nil

	case params.ServiceStation:
		level := "station"
		if sq, ok := q.(*params.StationQuery); ok {
			level = sq.Level()
		}
		switch level {
		case "network":
			recs, err := textrec.DecodeNetworks(resp.Body)
			if err != nil {
				return res, err
			}
			res.Stations = assemble.NetworksFromText(recs, prov)
		case "channel", "response":
			recs, err := textrec.DecodeChannels(resp.Body)
			if err != nil {
				return res, err
			}
			res.Stations = assemble.ChannelsFromText(recs, prov)
		default:
			recs, err := textrec.DecodeStations(resp.Body)
			if err != nil {
				return res, err
			}
			res.Stations = assemble.StationsFromText(recs, prov)
		}
		return res, nil

	default:
		return res, fmt.Errorf("%s service has no text decoding", q.Service())
	}
}

func (d *Dispatcher) decodeXML(q params.Query, resp Response, prov assemble.Provenance, res Result) (Result, error) {
	switch q.Service() {
	case params.ServiceStation:
		doc, err := stationxml.Parse(resp.Body)
		if err != nil {
			return res, err
		}
		level := "station"
		if sq, ok := q.(*params.StationQuery); ok {
			level = sq.Level()
		}
		stations, err := assemble.FromStationXML(doc, level, prov)
		if err != nil {
			return res, err
		}
		res.Stations = stations
		return res, nil

	case params.ServiceEvent:
		// QuakeML decoding belongs to an external reader; hand the
		// document back untouched.
		res.Raw = resp.Body
		return res, nil

	default:
		return res, fmt.Errorf("%s service has no XML decoding", q.Service())
	}
}

func (d *Dispatcher) decodeBinary(resp Response, res Result) (Result, error) {
	if d.decoder == nil {
		return res, fmt.Errorf("no waveform decoder configured")
	}
	traces, err := d.decoder.Decode(resp.Body)
	if err != nil {
		return res, &fdsnerr.FormatError{Schema: "waveform", Reason: err.Error()}
	}
	res.Traces = traces
	return res, nil
}

func bodySnippet(body []byte) string {
	const max = 256
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
