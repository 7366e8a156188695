package params

import (
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
)

var eventFormats = []string{"xml", "text", "isf"}

// EventQuery is a validated request against the fdsnws event service.
type EventQuery struct {
	win timeWindow
	geo geoConstraints

	minDepth     *float64
	maxDepth     *float64
	minMagnitude *float64
	maxMagnitude *float64
	magType      string

	catalog     string
	contributor string
	eventID     string

	includeAllOrigins    *bool
	includeAllMagnitudes *bool
	includeArrivals      *bool
	updatedAfter         time.Time

	orderBy string
	limit   *int
	offset  *int
	format  string
	nodata  int
}

func (q *EventQuery) Service() Service    { return ServiceEvent }
func (q *EventQuery) Protocol() string    { return "fdsnws" }
func (q *EventQuery) MajorVersion() int   { return 1 }
func (q *EventQuery) NoData() int         { return q.nodata }
func (q *EventQuery) SupportsBatch() bool { return false }

func (q *EventQuery) Format() string {
	if q.format == "" {
		return "xml"
	}
	return q.format
}

func (q *EventQuery) Fields() []Field {
	fs := make([]Field, 0, 16)
	fs = q.win.fields(fs)
	fs = q.geo.fields(fs)
	fs = appendFloat(fs, "mindepth", q.minDepth)
	fs = appendFloat(fs, "maxdepth", q.maxDepth)
	fs = appendFloat(fs, "minmagnitude", q.minMagnitude)
	fs = appendFloat(fs, "maxmagnitude", q.maxMagnitude)
	fs = appendString(fs, "magnitudetype", q.magType)
	fs = appendString(fs, "catalog", q.catalog)
	fs = appendString(fs, "contributor", q.contributor)
	fs = appendString(fs, "eventid", q.eventID)
	fs = appendBool(fs, "includeallorigins", q.includeAllOrigins)
	fs = appendBool(fs, "includeallmagnitudes", q.includeAllMagnitudes)
	fs = appendBool(fs, "includearrivals", q.includeArrivals)
	fs = appendTime(fs, "updatedafter", q.updatedAfter)
	fs = appendString(fs, "orderby", q.orderBy)
	fs = appendInt(fs, "limit", q.limit)
	fs = appendInt(fs, "offset", q.offset)
	fs = appendString(fs, "format", q.format)
	fs = appendField(fs, "nodata", formatNoData(q.nodata))
	return fs
}

type EventQueryBuilder struct {
	q    EventQuery
	errs fdsnerr.ValidationErrors
}

func NewEventQuery() *EventQueryBuilder {
	return &EventQueryBuilder{q: EventQuery{nodata: 204}}
}

func (b *EventQueryBuilder) Start(t time.Time) *EventQueryBuilder { b.q.win.start = t; return b }
func (b *EventQueryBuilder) End(t time.Time) *EventQueryBuilder   { b.q.win.end = t; return b }

func (b *EventQueryBuilder) StartString(s string) *EventQueryBuilder {
	b.parseTime("starttime", s, &b.q.win.start)
	return b
}

func (b *EventQueryBuilder) EndString(s string) *EventQueryBuilder {
	b.parseTime("endtime", s, &b.q.win.end)
	return b
}

func (b *EventQueryBuilder) MinLatitude(v float64) *EventQueryBuilder  { b.q.geo.minLat = ptr(v); return b }
func (b *EventQueryBuilder) MaxLatitude(v float64) *EventQueryBuilder  { b.q.geo.maxLat = ptr(v); return b }
func (b *EventQueryBuilder) MinLongitude(v float64) *EventQueryBuilder { b.q.geo.minLon = ptr(v); return b }
func (b *EventQueryBuilder) MaxLongitude(v float64) *EventQueryBuilder { b.q.geo.maxLon = ptr(v); return b }
func (b *EventQueryBuilder) Latitude(v float64) *EventQueryBuilder     { b.q.geo.lat = ptr(v); return b }
func (b *EventQueryBuilder) Longitude(v float64) *EventQueryBuilder    { b.q.geo.lon = ptr(v); return b }
func (b *EventQueryBuilder) MinRadius(v float64) *EventQueryBuilder    { b.q.geo.minRad = ptr(v); return b }
func (b *EventQueryBuilder) MaxRadius(v float64) *EventQueryBuilder    { b.q.geo.maxRad = ptr(v); return b }

func (b *EventQueryBuilder) MinDepth(v float64) *EventQueryBuilder     { b.q.minDepth = ptr(v); return b }
func (b *EventQueryBuilder) MaxDepth(v float64) *EventQueryBuilder     { b.q.maxDepth = ptr(v); return b }
func (b *EventQueryBuilder) MinMagnitude(v float64) *EventQueryBuilder { b.q.minMagnitude = ptr(v); return b }
func (b *EventQueryBuilder) MaxMagnitude(v float64) *EventQueryBuilder { b.q.maxMagnitude = ptr(v); return b }

func (b *EventQueryBuilder) MagnitudeType(v string) *EventQueryBuilder { b.q.magType = v; return b }
func (b *EventQueryBuilder) Catalog(v string) *EventQueryBuilder       { b.q.catalog = v; return b }
func (b *EventQueryBuilder) Contributor(v string) *EventQueryBuilder   { b.q.contributor = v; return b }
func (b *EventQueryBuilder) EventID(v string) *EventQueryBuilder       { b.q.eventID = v; return b }

func (b *EventQueryBuilder) IncludeAllOrigins(v bool) *EventQueryBuilder {
	b.q.includeAllOrigins = ptr(v)
	return b
}

func (b *EventQueryBuilder) IncludeAllMagnitudes(v bool) *EventQueryBuilder {
	b.q.includeAllMagnitudes = ptr(v)
	return b
}

func (b *EventQueryBuilder) IncludeArrivals(v bool) *EventQueryBuilder {
	b.q.includeArrivals = ptr(v)
	return b
}

func (b *EventQueryBuilder) UpdatedAfter(t time.Time) *EventQueryBuilder { b.q.updatedAfter = t; return b }
func (b *EventQueryBuilder) OrderBy(v string) *EventQueryBuilder         { b.q.orderBy = v; return b }
func (b *EventQueryBuilder) Limit(v int) *EventQueryBuilder              { b.q.limit = ptr(v); return b }
func (b *EventQueryBuilder) Offset(v int) *EventQueryBuilder             { b.q.offset = ptr(v); return b }
func (b *EventQueryBuilder) Format(v string) *EventQueryBuilder          { b.q.format = v; return b }
func (b *EventQueryBuilder) NoData(v int) *EventQueryBuilder             { b.q.nodata = v; return b }

func (b *EventQueryBuilder) parseTime(field, s string, dst *time.Time) {
	t, err := model.ParseTime(s)
	if err != nil {
		b.errs = append(b.errs, fdsnerr.Invalid(field, "%v", err))
		return
	}
	*dst = t
}

func (b *EventQueryBuilder) Build() (*EventQuery, error) {
	errs := b.errs
	b.q.win.validate(&errs)
	b.q.geo.validate(&errs)
	checkRange(&errs, "mindepth", "maxdepth", b.q.minDepth, b.q.maxDepth)
	checkRange(&errs, "minmagnitude", "maxmagnitude", b.q.minMagnitude, b.q.maxMagnitude)
	checkASCII(&errs, "catalog", b.q.catalog)
	checkASCII(&errs, "contributor", b.q.contributor)
	checkASCII(&errs, "eventid", b.q.eventID)
	checkVocab(&errs, "orderby", b.q.orderBy, orderbyValues)
	checkVocab(&errs, "format", b.q.format, eventFormats)
	checkNoData(&errs, b.q.nodata)
	if b.q.limit != nil && *b.q.limit < 1 {
		errs = append(errs, fdsnerr.Invalid("limit", "must be positive"))
	}
	if b.q.offset != nil && *b.q.offset < 1 {
		errs = append(errs, fdsnerr.Invalid("offset", "must be positive"))
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}
