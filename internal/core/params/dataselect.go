package params

import (
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
)

// DataselectQuery is a validated request against the fdsnws dataselect
// service. The response is always binary waveform data.
type DataselectQuery struct {
	sel identitySelection
	win timeWindow

	quality       string
	minimumLength *float64
	longestOnly   *bool
	nodata        int
}

func (q *DataselectQuery) Service() Service    { return ServiceDataselect }
func (q *DataselectQuery) Protocol() string    { return "fdsnws" }
func (q *DataselectQuery) MajorVersion() int   { return 1 }
func (q *DataselectQuery) NoData() int         { return q.nodata }
func (q *DataselectQuery) Format() string      { return "miniseed" }
func (q *DataselectQuery) SupportsBatch() bool { return true }

func (q *DataselectQuery) Identity() model.Identity { return q.sel.identity() }
func (q *DataselectQuery) Window() model.Window {
	return model.Window{Start: q.win.start, End: q.win.end}
}

func (q *DataselectQuery) Fields() []Field {
	fs := make([]Field, 0, 10)
	fs = q.sel.fields(fs)
	fs = q.win.fields(fs)
	fs = appendString(fs, "quality", q.quality)
	fs = appendFloat(fs, "minimumlength", q.minimumLength)
	fs = appendBool(fs, "longestonly", q.longestOnly)
	fs = appendField(fs, "nodata", formatNoData(q.nodata))
	return fs
}

// SharedFields is the POST header view: every present field except the
// batch-varying identity and time window. The POST encoder writes these as
// header lines and requires every batch member to agree on them.
func (q *DataselectQuery) SharedFields() []Field {
	fs := make([]Field, 0, 4)
	fs = appendString(fs, "quality", q.quality)
	fs = appendFloat(fs, "minimumlength", q.minimumLength)
	fs = appendBool(fs, "longestonly", q.longestOnly)
	fs = appendField(fs, "nodata", formatNoData(q.nodata))
	return fs
}

type DataselectQueryBuilder struct {
	q    DataselectQuery
	errs fdsnerr.ValidationErrors
}

func NewDataselectQuery() *DataselectQueryBuilder {
	return &DataselectQueryBuilder{q: DataselectQuery{nodata: 204}}
}

func (b *DataselectQueryBuilder) Network(v string) *DataselectQueryBuilder  { b.q.sel.setNetwork(v); return b }
func (b *DataselectQueryBuilder) Station(v string) *DataselectQueryBuilder  { b.q.sel.setStation(v); return b }
func (b *DataselectQueryBuilder) Location(v string) *DataselectQueryBuilder { b.q.sel.setLocation(v); return b }
func (b *DataselectQueryBuilder) Channel(v string) *DataselectQueryBuilder  { b.q.sel.setChannel(v); return b }

func (b *DataselectQueryBuilder) ID(code string) *DataselectQueryBuilder {
	b.q.sel.setCompact(code)
	return b
}

func (b *DataselectQueryBuilder) Start(t time.Time) *DataselectQueryBuilder { b.q.win.start = t; return b }
func (b *DataselectQueryBuilder) End(t time.Time) *DataselectQueryBuilder   { b.q.win.end = t; return b }

func (b *DataselectQueryBuilder) StartString(s string) *DataselectQueryBuilder {
	b.parseTime("starttime", s, &b.q.win.start)
	return b
}

func (b *DataselectQueryBuilder) EndString(s string) *DataselectQueryBuilder {
	b.parseTime("endtime", s, &b.q.win.end)
	return b
}

func (b *DataselectQueryBuilder) Quality(v string) *DataselectQueryBuilder { b.q.quality = v; return b }
func (b *DataselectQueryBuilder) NoData(v int) *DataselectQueryBuilder     { b.q.nodata = v; return b }

func (b *DataselectQueryBuilder) MinimumLength(seconds float64) *DataselectQueryBuilder {
	b.q.minimumLength = ptr(seconds)
	return b
}

func (b *DataselectQueryBuilder) LongestOnly(v bool) *DataselectQueryBuilder {
	b.q.longestOnly = ptr(v)
	return b
}

func (b *DataselectQueryBuilder) parseTime(field, s string, dst *time.Time) {
	t, err := model.ParseTime(s)
	if err != nil {
		b.errs = append(b.errs, fdsnerr.Invalid(field, "%v", err))
		return
	}
	*dst = t
}

func (b *DataselectQueryBuilder) Build() (*DataselectQuery, error) {
	errs := b.errs
	b.q.sel.validate(&errs)
	b.q.win.validate(&errs)
	checkVocab(&errs, "quality", b.q.quality, qualityValues)
	checkNoData(&errs, b.q.nodata)
	if b.q.minimumLength != nil && *b.q.minimumLength < 0 {
		errs = append(errs, fdsnerr.Invalid("minimumlength", "must not be negative"))
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}
