// Package params builds the typed parameter sets for each request kind and
// validates them exhaustively before anything touches the wire. Builders
// accumulate optional fields; Build runs every invariant check atomically and
// either returns an immutable query value or a ValidationErrors listing all
// violations.
package params

import (
	"strconv"
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
)

// Service names the web service a query targets, which selects the URL path
// and the legal parameter vocabulary.
type Service string

const (
	ServiceEvent      Service = "event"
	ServiceStation    Service = "station"
	ServiceDataselect Service = "dataselect"
	ServiceTimeseries Service = "timeseries"
)

// Field is one present query parameter. Fields() returns them in the kind's
// declared order; absent parameters never appear.
type Field struct {
	Name  string
	Value string
}

// Query is implemented by every validated request kind.
type Query interface {
	Service() Service
	// Protocol is the URL path segment in front of the service name,
	// "fdsnws" for the standard services and "irisws" for timeseries.
	Protocol() string
	MajorVersion() int
	// Format is the effective declared output encoding: "xml", "text",
	// "isf" or "miniseed" (binary).
	Format() string
	// NoData is the status code the server uses for an empty result.
	NoData() int
	Fields() []Field
	// SupportsBatch reports whether the kind may be encoded as a POST
	// batch body.
	SupportsBatch() bool
}

// Closed vocabularies.
var (
	nodataValues  = []int{204, 404}
	orderbyValues = []string{"time", "time-asc", "magnitude", "magnitude-asc"}
	levelValues   = []string{"network", "station", "channel", "response"}
	qualityValues = []string{"D", "R", "Q", "M", "B"}
)

// Field values render the way the services expect them: floats without
// trailing zeros, booleans lowercase.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// FormatTime renders a timestamp in the FDSN wire form, dropping the
// fractional part when it is zero. The POST encoder uses the same form for
// batch body lines.
func FormatTime(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000")
}

func formatTime(t time.Time) string { return FormatTime(t) }

func appendField(fs []Field, name, value string) []Field {
	return append(fs, Field{Name: name, Value: value})
}

func appendFloat(fs []Field, name string, v *float64) []Field {
	if v == nil {
		return fs
	}
	return appendField(fs, name, formatFloat(*v))
}

func appendInt(fs []Field, name string, v *int) []Field {
	if v == nil {
		return fs
	}
	return appendField(fs, name, strconv.Itoa(*v))
}

func appendBool(fs []Field, name string, v *bool) []Field {
	if v == nil {
		return fs
	}
	return appendField(fs, name, formatBool(*v))
}

func appendTime(fs []Field, name string, t time.Time) []Field {
	if t.IsZero() {
		return fs
	}
	return appendField(fs, name, formatTime(t))
}

func appendString(fs []Field, name, v string) []Field {
	if v == "" {
		return fs
	}
	return appendField(fs, name, v)
}

// Validation predicates. Each appends to the shared violation list so Build
// reports everything at once.

func checkLatitude(errs *fdsnerr.ValidationErrors, field string, v *float64) {
	if v != nil && (*v < -90 || *v > 90) {
		*errs = append(*errs, fdsnerr.Invalid(field, "latitude %v outside [-90,90]", *v))
	}
}

func checkLongitude(errs *fdsnerr.ValidationErrors, field string, v *float64) {
	if v != nil && (*v < -180 || *v > 180) {
		*errs = append(*errs, fdsnerr.Invalid(field, "longitude %v outside [-180,180]", *v))
	}
}

func checkRadius(errs *fdsnerr.ValidationErrors, field string, v *float64) {
	if v != nil && (*v < 0 || *v > 180) {
		*errs = append(*errs, fdsnerr.Invalid(field, "radius %v outside [0,180]", *v))
	}
}

func checkRange(errs *fdsnerr.ValidationErrors, minField, maxField string, min, max *float64) {
	if min != nil && max != nil && *min > *max {
		*errs = append(*errs, fdsnerr.Invalid(minField, "must not exceed %s (%v > %v)", maxField, *min, *max))
	}
}

func checkTimeOrder(errs *fdsnerr.ValidationErrors, startField, endField string, start, end time.Time) {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		*errs = append(*errs, fdsnerr.Invalid(startField, "must not be after %s", endField))
	}
}

func checkVocab(errs *fdsnerr.ValidationErrors, field, v string, allowed []string) {
	if v == "" {
		return
	}
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	*errs = append(*errs, fdsnerr.Invalid(field, "%q not in %v", v, allowed))
}

func checkNoData(errs *fdsnerr.ValidationErrors, v int) {
	for _, a := range nodataValues {
		if v == a {
			return
		}
	}
	*errs = append(*errs, fdsnerr.Invalid("nodata", "%d not in %v", v, nodataValues))
}

func checkASCII(errs *fdsnerr.ValidationErrors, field, v string) {
	for _, r := range v {
		if r > 127 {
			*errs = append(*errs, fdsnerr.Invalid(field, "non-ASCII character %q", r))
			return
		}
	}
}

// geoConstraints is the box-plus-radial search block shared by the event and
// station kinds.
type geoConstraints struct {
	minLat, maxLat *float64
	minLon, maxLon *float64
	lat, lon       *float64
	minRad, maxRad *float64
}

func (g *geoConstraints) validate(errs *fdsnerr.ValidationErrors) {
	checkLatitude(errs, "minlatitude", g.minLat)
	checkLatitude(errs, "maxlatitude", g.maxLat)
	checkLongitude(errs, "minlongitude", g.minLon)
	checkLongitude(errs, "maxlongitude", g.maxLon)
	checkLatitude(errs, "latitude", g.lat)
	checkLongitude(errs, "longitude", g.lon)
	checkRadius(errs, "minradius", g.minRad)
	checkRadius(errs, "maxradius", g.maxRad)
	checkRange(errs, "minlatitude", "maxlatitude", g.minLat, g.maxLat)
	checkRange(errs, "minlongitude", "maxlongitude", g.minLon, g.maxLon)
	checkRange(errs, "minradius", "maxradius", g.minRad, g.maxRad)

	// a radial search needs its center
	if (g.minRad != nil || g.maxRad != nil) && (g.lat == nil || g.lon == nil) {
		*errs = append(*errs, fdsnerr.Invalid("minradius", "radius search requires both latitude and longitude"))
	}
}

func (g *geoConstraints) fields(fs []Field) []Field {
	fs = appendFloat(fs, "minlatitude", g.minLat)
	fs = appendFloat(fs, "maxlatitude", g.maxLat)
	fs = appendFloat(fs, "minlongitude", g.minLon)
	fs = appendFloat(fs, "maxlongitude", g.maxLon)
	fs = appendFloat(fs, "latitude", g.lat)
	fs = appendFloat(fs, "longitude", g.lon)
	fs = appendFloat(fs, "minradius", g.minRad)
	fs = appendFloat(fs, "maxradius", g.maxRad)
	return fs
}

func formatNoData(v int) string { return strconv.Itoa(v) }

func ptr[T any](v T) *T { return &v }
