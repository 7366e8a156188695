package dispatch

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/seisgo/fdsnws/internal/core/assemble"
	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
	"github.com/seisgo/fdsnws/internal/core/params"
	"github.com/seisgo/fdsnws/internal/core/waveform"
)

// capture returns a dispatcher whose log lines land in the buffer, so tests
// can assert on what was (and was not) logged.
func capture(t *testing.T, decoder waveform.Decoder, verbose bool) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(log, decoder, verbose), &buf
}

func stationTextQuery(t *testing.T) params.Query {
	t.Helper()
	q, err := params.NewStationQuery().Network("GB").Station("JSA").Format("text").Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return q
}

func TestDispatch_NoDataStatus(t *testing.T) {
	d, buf := capture(t, nil, false)
	q := stationTextQuery(t)

	res, err := d.Dispatch(q, Response{Status: 204}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.NoData || res.Failed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty no-data body should not log: %s", buf.String())
	}
}

func TestDispatch_NoDataWithBodyWarnsAndDiscards(t *testing.T) {
	d, buf := capture(t, nil, false)
	q := stationTextQuery(t)

	res, err := d.Dispatch(q, Response{Status: 204, Body: []byte("surprise")}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.NoData || res.Stations != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !bytes.Contains(buf.Bytes(), []byte("non-empty body")) {
		t.Fatalf("expected a warning about the discarded body, got: %s", buf.String())
	}
}

func TestDispatch_FailureStatusesLoggedNotRaised(t *testing.T) {
	q := stationTextQuery(t)
	for _, status := range []int{400, 401, 403, 413, 414, 500, 503} {
		d, buf := capture(t, nil, false)
		res, err := d.Dispatch(q, Response{Status: status, Body: []byte("denied")}, assemble.Provenance{})
		if err != nil {
			t.Fatalf("status %d: unexpected err: %v", status, err)
		}
		if !res.Failed || res.NoData {
			t.Fatalf("status %d: unexpected result: %+v", status, res)
		}
		if !bytes.Contains(buf.Bytes(), []byte("level=WARN")) {
			t.Fatalf("status %d: expected a warning log, got: %s", status, buf.String())
		}
	}
}

func TestDispatch_VerboseDowngradesFailureLog(t *testing.T) {
	d, buf := capture(t, nil, true)
	q := stationTextQuery(t)

	res, err := d.Dispatch(q, Response{Status: 400, Body: []byte("bad request")}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Failed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !bytes.Contains(buf.Bytes(), []byte("level=INFO")) {
		t.Fatalf("verbose mode should log failures at info: %s", buf.String())
	}
}

func TestDispatch_UndocumentedStatusIsProtocolError(t *testing.T) {
	d, _ := capture(t, nil, false)
	q := stationTextQuery(t)

	_, err := d.Dispatch(q, Response{Status: 418}, assemble.Provenance{})
	var pe *fdsnerr.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("want ProtocolError, got %v", err)
	}
	if pe.Status != 418 {
		t.Fatalf("status = %d, want 418", pe.Status)
	}
}

func TestDispatch_EmptySuccessBodyIsProtocolError(t *testing.T) {
	d, _ := capture(t, nil, false)
	q := stationTextQuery(t)

	_, err := d.Dispatch(q, Response{Status: 200}, assemble.Provenance{})
	var pe *fdsnerr.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("want ProtocolError, got %v", err)
	}
}

func TestDispatch_ContentTypeMismatchWarnsButDecodes(t *testing.T) {
	d, buf := capture(t, nil, false)
	q := stationTextQuery(t)
	body := []byte("GB|JSA|49.1882|-2.1714|39.0|Jersey|2007-09-06T00:00:00|\n")

	res, err := d.Dispatch(q, Response{
		Status:      200,
		ContentType: "application/octet-stream",
		Body:        body,
	}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Stations) != 1 {
		t.Fatalf("body should still decode: %+v", res)
	}
	if !bytes.Contains(buf.Bytes(), []byte("content type differs")) {
		t.Fatalf("expected a content-type warning, got: %s", buf.String())
	}
}

func TestDispatch_MatchingContentTypeWithParameters(t *testing.T) {
	d, buf := capture(t, nil, false)
	q := stationTextQuery(t)
	body := []byte("GB|JSA|49.1882|-2.1714|39.0|Jersey|2007-09-06T00:00:00|\n")

	_, err := d.Dispatch(q, Response{
		Status:      200,
		ContentType: "text/plain; charset=utf-8",
		Body:        body,
	}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("content type differs")) {
		t.Fatalf("prefix match must not warn: %s", buf.String())
	}
}

func TestDispatch_StationTextLevels(t *testing.T) {
	d, _ := capture(t, nil, false)

	netQ, err := params.NewStationQuery().Network("GB").Level("network").Format("text").Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res, err := d.Dispatch(netQ, Response{
		Status: 200,
		Body:   []byte("GB|Great Britain Seismograph Network|1970-01-01T00:00:00||52\n"),
	}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Stations) != 1 || res.Stations[0].ID.Network != "GB" || res.Stations[0].ID.Station != "" {
		t.Fatalf("unexpected network-level result: %+v", res.Stations)
	}

	chaQ, err := params.NewStationQuery().Network("GB").Level("channel").Format("text").Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res, err = d.Dispatch(chaQ, Response{
		Status: 200,
		Body: []byte("GB|JSA|--|BHZ|49.1882|-2.1714|39.0|0.0|0.0|-90.0|" +
			"Guralp CMG-3T|4.8e8|1.0|M/S|50.0|2007-09-06T00:00:00|\n"),
	}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Stations) != 1 || res.Stations[0].ID.Channel != "BHZ" {
		t.Fatalf("unexpected channel-level result: %+v", res.Stations)
	}
}

func TestDispatch_EventText(t *testing.T) {
	d, _ := capture(t, nil, false)
	q, err := params.NewEventQuery().MinMagnitude(5).Format("text").Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	res, err := d.Dispatch(q, Response{
		Status: 200,
		Body:   []byte("ev1|2020-01-01T00:00:00|1.0|2.0|3.0|a|c|c|id|ml|4.0|a|Somewhere\n"),
	}, assemble.Provenance{Server: "IRIS"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].ID != "ev1" {
		t.Fatalf("unexpected result: %+v", res.Events)
	}
}

func TestDispatch_EventXMLReturnsRaw(t *testing.T) {
	d, _ := capture(t, nil, false)
	q, err := params.NewEventQuery().MinMagnitude(5).Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	body := []byte(`<quakeml xmlns="http://quakeml.org/xmlns/quakeml/1.2"></quakeml>`)
	res, err := d.Dispatch(q, Response{Status: 200, Body: body}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !bytes.Equal(res.Raw, body) {
		t.Fatalf("event XML must come back untouched: %q", res.Raw)
	}
	if res.Events != nil {
		t.Fatalf("event XML must not be decoded: %+v", res.Events)
	}
}

func TestDispatch_ISFNotImplemented(t *testing.T) {
	d, _ := capture(t, nil, false)
	q, err := params.NewEventQuery().MinMagnitude(5).Format("isf").Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err = d.Dispatch(q, Response{Status: 200, Body: []byte("BEGIN IMS1.0")}, assemble.Provenance{})
	var fe *fdsnerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("want FormatError, got %v", err)
	}
	if fe.Schema != "isf" {
		t.Fatalf("schema = %q, want isf", fe.Schema)
	}
}

func TestDispatch_BinaryUsesConfiguredDecoder(t *testing.T) {
	var seen []byte
	dec := waveform.DecoderFunc(func(body []byte) ([]waveform.Trace, error) {
		seen = body
		id := model.Identity{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
		return []waveform.Trace{{ID: id, SampleRate: 20}}, nil
	})
	d, _ := capture(t, dec, false)

	q, err := params.NewDataselectQuery().
		Network("IU").Station("ANMO").Channel("BHZ").
		Start(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).
		End(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)).
		Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	body := []byte{0x00, 0x01, 0x02, 0x03}
	res, err := d.Dispatch(q, Response{Status: 200, Body: body}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Traces) != 1 || res.Traces[0].ID.String() != "IU.ANMO.00.BHZ" {
		t.Fatalf("unexpected traces: %+v", res.Traces)
	}
	if !bytes.Equal(seen, body) {
		t.Fatalf("decoder saw %v, want %v", seen, body)
	}
}

func TestDispatch_BinaryWithoutDecoder(t *testing.T) {
	d, _ := capture(t, nil, false)

	q, err := params.NewDataselectQuery().
		Network("IU").Station("ANMO").Channel("BHZ").
		Start(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).
		End(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)).
		Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := d.Dispatch(q, Response{Status: 200, Body: []byte{0x01}}, assemble.Provenance{}); err == nil {
		t.Fatal("expected error when no waveform decoder is configured")
	}
}

func TestDispatch_TimeseriesASCIIReturnsRaw(t *testing.T) {
	d, _ := capture(t, nil, false)
	q, err := params.NewTimeseriesQuery().
		Network("IU").Station("ANMO").Channel("BHZ").
		Start(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).
		End(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)).
		Format("ascii").
		Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	body := []byte("TIMESERIES IU_ANMO_00_BHZ\n1.0\n2.0\n")
	res, err := d.Dispatch(q, Response{Status: 200, Body: body}, assemble.Provenance{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !bytes.Equal(res.Raw, body) {
		t.Fatalf("sample listings must come back raw: %q", res.Raw)
	}
}
