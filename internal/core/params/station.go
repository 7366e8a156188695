package params

import (
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
)

var stationFormats = []string{"xml", "text"}

// StationQuery is a validated request against the fdsnws station service.
// Values are immutable once built.
type StationQuery struct {
	sel identitySelection
	win timeWindow

	startBefore time.Time
	startAfter  time.Time
	endBefore   time.Time
	endAfter    time.Time

	geo geoConstraints

	level               string
	includeRestricted   *bool
	includeAvailability *bool
	matchTimeseries     *bool
	updatedAfter        time.Time
	format              string
	nodata              int
}

func (q *StationQuery) Service() Service     { return ServiceStation }
func (q *StationQuery) Protocol() string     { return "fdsnws" }
func (q *StationQuery) MajorVersion() int    { return 1 }
func (q *StationQuery) NoData() int          { return q.nodata }
func (q *StationQuery) SupportsBatch() bool  { return true }
func (q *StationQuery) Identity() model.Identity { return q.sel.identity() }
func (q *StationQuery) Window() model.Window { return model.Window{Start: q.win.start, End: q.win.end} }

// Level is the requested metadata depth, defaulting to station.
func (q *StationQuery) Level() string {
	if q.level == "" {
		return "station"
	}
	return q.level
}

func (q *StationQuery) Format() string {
	if q.format == "" {
		return "xml"
	}
	return q.format
}

func (q *StationQuery) Fields() []Field {
	fs := make([]Field, 0, 16)
	fs = q.sel.fields(fs)
	fs = q.win.fields(fs)
	fs = appendTime(fs, "startbefore", q.startBefore)
	fs = appendTime(fs, "startafter", q.startAfter)
	fs = appendTime(fs, "endbefore", q.endBefore)
	fs = appendTime(fs, "endafter", q.endAfter)
	fs = q.geo.fields(fs)
	fs = appendString(fs, "level", q.level)
	fs = appendBool(fs, "includerestricted", q.includeRestricted)
	fs = appendBool(fs, "includeavailability", q.includeAvailability)
	fs = appendTime(fs, "updatedafter", q.updatedAfter)
	fs = appendBool(fs, "matchtimeseries", q.matchTimeseries)
	fs = appendString(fs, "format", q.format)
	fs = appendField(fs, "nodata", formatNoData(q.nodata))
	return fs
}

// SharedFields is the POST header view: every present field except the
// batch-varying identity and time window.
func (q *StationQuery) SharedFields() []Field {
	fs := make([]Field, 0, 8)
	fs = appendTime(fs, "startbefore", q.startBefore)
	fs = appendTime(fs, "startafter", q.startAfter)
	fs = appendTime(fs, "endbefore", q.endBefore)
	fs = appendTime(fs, "endafter", q.endAfter)
	fs = q.geo.fields(fs)
	fs = appendString(fs, "level", q.level)
	fs = appendBool(fs, "includerestricted", q.includeRestricted)
	fs = appendBool(fs, "includeavailability", q.includeAvailability)
	fs = appendTime(fs, "updatedafter", q.updatedAfter)
	fs = appendBool(fs, "matchtimeseries", q.matchTimeseries)
	fs = appendString(fs, "format", q.format)
	fs = appendField(fs, "nodata", formatNoData(q.nodata))
	return fs
}

// StationQueryBuilder accumulates optional parameters; Build validates the
// whole set at once.
type StationQueryBuilder struct {
	q    StationQuery
	errs fdsnerr.ValidationErrors
}

func NewStationQuery() *StationQueryBuilder {
	return &StationQueryBuilder{q: StationQuery{nodata: 204}}
}

func (b *StationQueryBuilder) Network(v string) *StationQueryBuilder  { b.q.sel.setNetwork(v); return b }
func (b *StationQueryBuilder) Station(v string) *StationQueryBuilder  { b.q.sel.setStation(v); return b }
func (b *StationQueryBuilder) Location(v string) *StationQueryBuilder { b.q.sel.setLocation(v); return b }
func (b *StationQueryBuilder) Channel(v string) *StationQueryBuilder  { b.q.sel.setChannel(v); return b }

// ID supplies the compact "NET.STA.LOC.CHA" code in place of the four
// separate codes.
func (b *StationQueryBuilder) ID(code string) *StationQueryBuilder {
	b.q.sel.setCompact(code)
	return b
}

func (b *StationQueryBuilder) Start(t time.Time) *StationQueryBuilder { b.q.win.start = t; return b }
func (b *StationQueryBuilder) End(t time.Time) *StationQueryBuilder   { b.q.win.end = t; return b }

func (b *StationQueryBuilder) StartString(s string) *StationQueryBuilder {
	b.parseTime("starttime", s, &b.q.win.start)
	return b
}

func (b *StationQueryBuilder) EndString(s string) *StationQueryBuilder {
	b.parseTime("endtime", s, &b.q.win.end)
	return b
}

func (b *StationQueryBuilder) StartBefore(t time.Time) *StationQueryBuilder { b.q.startBefore = t; return b }
func (b *StationQueryBuilder) StartAfter(t time.Time) *StationQueryBuilder  { b.q.startAfter = t; return b }
func (b *StationQueryBuilder) EndBefore(t time.Time) *StationQueryBuilder   { b.q.endBefore = t; return b }
func (b *StationQueryBuilder) EndAfter(t time.Time) *StationQueryBuilder    { b.q.endAfter = t; return b }

func (b *StationQueryBuilder) MinLatitude(v float64) *StationQueryBuilder  { b.q.geo.minLat = ptr(v); return b }
func (b *StationQueryBuilder) MaxLatitude(v float64) *StationQueryBuilder  { b.q.geo.maxLat = ptr(v); return b }
func (b *StationQueryBuilder) MinLongitude(v float64) *StationQueryBuilder { b.q.geo.minLon = ptr(v); return b }
func (b *StationQueryBuilder) MaxLongitude(v float64) *StationQueryBuilder { b.q.geo.maxLon = ptr(v); return b }
func (b *StationQueryBuilder) Latitude(v float64) *StationQueryBuilder     { b.q.geo.lat = ptr(v); return b }
func (b *StationQueryBuilder) Longitude(v float64) *StationQueryBuilder    { b.q.geo.lon = ptr(v); return b }
func (b *StationQueryBuilder) MinRadius(v float64) *StationQueryBuilder    { b.q.geo.minRad = ptr(v); return b }
func (b *StationQueryBuilder) MaxRadius(v float64) *StationQueryBuilder    { b.q.geo.maxRad = ptr(v); return b }

func (b *StationQueryBuilder) Level(v string) *StationQueryBuilder  { b.q.level = v; return b }
func (b *StationQueryBuilder) Format(v string) *StationQueryBuilder { b.q.format = v; return b }
func (b *StationQueryBuilder) NoData(v int) *StationQueryBuilder    { b.q.nodata = v; return b }

func (b *StationQueryBuilder) IncludeRestricted(v bool) *StationQueryBuilder {
	b.q.includeRestricted = ptr(v)
	return b
}

func (b *StationQueryBuilder) IncludeAvailability(v bool) *StationQueryBuilder {
	b.q.includeAvailability = ptr(v)
	return b
}

func (b *StationQueryBuilder) MatchTimeseries(v bool) *StationQueryBuilder {
	b.q.matchTimeseries = ptr(v)
	return b
}

func (b *StationQueryBuilder) UpdatedAfter(t time.Time) *StationQueryBuilder {
	b.q.updatedAfter = t
	return b
}

func (b *StationQueryBuilder) parseTime(field, s string, dst *time.Time) {
	t, err := model.ParseTime(s)
	if err != nil {
		b.errs = append(b.errs, fdsnerr.Invalid(field, "%v", err))
		return
	}
	*dst = t
}

// Build runs every invariant check and returns the immutable query, or a
// ValidationErrors listing each violation.
func (b *StationQueryBuilder) Build() (*StationQuery, error) {
	errs := b.errs
	b.q.sel.validate(&errs)
	b.q.win.validate(&errs)
	b.q.geo.validate(&errs)
	checkVocab(&errs, "level", b.q.level, levelValues)
	checkVocab(&errs, "format", b.q.format, stationFormats)
	checkNoData(&errs, b.q.nodata)
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}
