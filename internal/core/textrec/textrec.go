// Package textrec decodes the pipe-delimited text bodies of the event and
// station services into fixed-schema records. Each line decodes
// independently and in order; a single malformed token fails its whole line.
package textrec

import (
	"strconv"
	"strings"
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
)

// Declared column counts per schema. The event schema accepts one extra
// trailing column (event type) appended by a later revision of the format.
const (
	networkArity = 5
	stationArity = 8
	channelArity = 17
	eventArity   = 13
)

// NetworkRecord is one network-level line.
type NetworkRecord struct {
	Code          string
	Description   string
	Start         time.Time
	End           time.Time
	TotalStations int
}

// StationRecord is one station-level line.
type StationRecord struct {
	Network   string
	Station   string
	Latitude  float64
	Longitude float64
	Elevation float64
	SiteName  string
	Start     time.Time
	End       time.Time
}

// ChannelRecord is one channel-level line. Depth is in metres and Dip in
// degrees down from horizontal, exactly as on the wire; the assembler owns
// the unit conversions.
type ChannelRecord struct {
	Network        string
	Station        string
	Location       string
	Channel        string
	Latitude       float64
	Longitude      float64
	Elevation      float64
	Depth          float64
	Azimuth        float64
	Dip            float64
	SensorDesc     string
	Scale          *float64
	ScaleFrequency *float64
	ScaleUnits     string
	SampleRate     float64
	Start          time.Time
	End            time.Time
}

// EventRecord is one event-level line. EventType is only present in the
// 14-column revision of the format.
type EventRecord struct {
	ID            string
	Time          time.Time
	Latitude      float64
	Longitude     float64
	DepthKm       float64
	Author        string
	Catalog       string
	Contributor   string
	ContributorID string
	MagType       string
	Magnitude     float64
	MagAuthor     string
	Region        string
	EventType     string
}

// lines splits a body into decodable lines, skipping blanks and comments
// (a '#' after optional leading whitespace).
func lines(body []byte) []string {
	var out []string
	for _, ln := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(ln, "\r"))
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, strings.TrimSuffix(ln, "\r"))
	}
	return out
}

// row is a cursor over the pipe-separated tokens of one line. The first
// coercion failure is kept and fails the whole line.
type row struct {
	schema string
	line   string
	parts  []string
	err    error
}

func splitRow(schema, line string, arities ...int) (*row, error) {
	parts := strings.Split(line, "|")
	for _, a := range arities {
		if len(parts) == a {
			return &row{schema: schema, line: line, parts: parts}, nil
		}
	}
	return nil, &fdsnerr.FormatError{
		Schema: schema,
		Line:   line,
		Reason: "unexpected column count " + strconv.Itoa(len(parts)),
	}
}

func (r *row) fail(name, reason string) {
	if r.err == nil {
		r.err = &fdsnerr.FormatError{Schema: r.schema, Line: r.line, Reason: name + ": " + reason}
	}
}

func (r *row) str(i int) string {
	return strings.TrimSpace(r.parts[i])
}

func (r *row) float(i int, name string) float64 {
	v, err := strconv.ParseFloat(r.str(i), 64)
	if err != nil {
		r.fail(name, "not a number")
		return 0
	}
	return v
}

func (r *row) optFloat(i int, name string) *float64 {
	s := r.str(i)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(name, "not a number")
		return nil
	}
	return &v
}

func (r *row) int(i int, name string) int {
	v, err := strconv.Atoi(r.str(i))
	if err != nil {
		r.fail(name, "not an integer")
		return 0
	}
	return v
}

// time parses a timestamp token, treating an empty token as "value absent"
// (a zero time) rather than an error.
func (r *row) time(i int, name string) time.Time {
	s := r.str(i)
	if s == "" {
		return time.Time{}
	}
	t, err := model.ParseTime(s)
	if err != nil {
		r.fail(name, "bad timestamp")
		return time.Time{}
	}
	return t
}

// DecodeNetworks decodes a network-level text body.
func DecodeNetworks(body []byte) ([]NetworkRecord, error) {
	var out []NetworkRecord
	for _, ln := range lines(body) {
		r, err := splitRow("network", ln, networkArity)
		if err != nil {
			return nil, err
		}
		rec := NetworkRecord{
			Code:          r.str(0),
			Description:   r.str(1),
			Start:         r.time(2, "starttime"),
			End:           r.time(3, "endtime"),
			TotalStations: r.int(4, "totalstations"),
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeStations decodes a station-level text body.
func DecodeStations(body []byte) ([]StationRecord, error) {
	var out []StationRecord
	for _, ln := range lines(body) {
		r, err := splitRow("station", ln, stationArity)
		if err != nil {
			return nil, err
		}
		rec := StationRecord{
			Network:   r.str(0),
			Station:   r.str(1),
			Latitude:  r.float(2, "latitude"),
			Longitude: r.float(3, "longitude"),
			Elevation: r.float(4, "elevation"),
			SiteName:  r.str(5),
			Start:     r.time(6, "starttime"),
			End:       r.time(7, "endtime"),
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeChannels decodes a channel-level text body.
func DecodeChannels(body []byte) ([]ChannelRecord, error) {
	var out []ChannelRecord
	for _, ln := range lines(body) {
		r, err := splitRow("channel", ln, channelArity)
		if err != nil {
			return nil, err
		}
		rec := ChannelRecord{
			Network:        r.str(0),
			Station:        r.str(1),
			Location:       r.str(2),
			Channel:        r.str(3),
			Latitude:       r.float(4, "latitude"),
			Longitude:      r.float(5, "longitude"),
			Elevation:      r.float(6, "elevation"),
			Depth:          r.float(7, "depth"),
			Azimuth:        r.float(8, "azimuth"),
			Dip:            r.float(9, "dip"),
			SensorDesc:     r.str(10),
			Scale:          r.optFloat(11, "scale"),
			ScaleFrequency: r.optFloat(12, "scalefreq"),
			ScaleUnits:     r.str(13),
			SampleRate:     r.float(14, "samplerate"),
			Start:          r.time(15, "starttime"),
			End:            r.time(16, "endtime"),
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeEvents decodes an event-level text body, accepting both the
// 13-column form and the revision with a trailing event-type column.
func DecodeEvents(body []byte) ([]EventRecord, error) {
	var out []EventRecord
	for _, ln := range lines(body) {
		r, err := splitRow("event", ln, eventArity, eventArity+1)
		if err != nil {
			return nil, err
		}
		rec := EventRecord{
			ID:            r.str(0),
			Time:          r.time(1, "time"),
			Latitude:      r.float(2, "latitude"),
			Longitude:     r.float(3, "longitude"),
			DepthKm:       r.float(4, "depth"),
			Author:        r.str(5),
			Catalog:       r.str(6),
			Contributor:   r.str(7),
			ContributorID: r.str(8),
			MagType:       r.str(9),
			Magnitude:     r.float(10, "magnitude"),
			MagAuthor:     r.str(11),
			Region:        r.str(12),
		}
		if len(r.parts) == eventArity+1 {
			rec.EventType = r.str(13)
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, rec)
	}
	return out, nil
}
