package params

import (
	"strings"
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
)

var (
	timeseriesFormats = []string{"miniseed", "ascii", "geocsv"}
	taperTypes        = []string{"HANNING", "HAMMING", "COSINE"}
)

// Pipeline step names. Steps are applied by the server in the order the
// caller added them, so they are kept as an ordered sequence, never a map.
const (
	stepTaper      = "taper"
	stepTaperType  = "taper-type"
	stepEnvelope   = "envelope"
	stepLPFilter   = "lpfilter"
	stepHPFilter   = "hpfilter"
	stepBPFilter   = "bpfilter"
	stepDemean     = "demean"
	stepDiff       = "diff"
	stepInt        = "int"
	stepScale      = "scale"
	stepDivScale   = "divscale"
	stepCorrect    = "correct"
	stepFreqLimits = "freqlimits"
	stepAutoLimits = "autolimits"
	stepDecimate   = "decimate"
)

type step struct {
	name string
	nums []float64
	str  string
	flag bool
}

// TimeseriesQuery is a validated request against the irisws timeseries
// service, carrying an ordered server-side processing pipeline. Batching is
// not supported by the service, so SupportsBatch is false.
type TimeseriesQuery struct {
	sel    identitySelection
	win    timeWindow
	steps  []step
	format string
	nodata int
}

func (q *TimeseriesQuery) Service() Service    { return ServiceTimeseries }
func (q *TimeseriesQuery) Protocol() string    { return "irisws" }
func (q *TimeseriesQuery) MajorVersion() int   { return 1 }
func (q *TimeseriesQuery) NoData() int         { return q.nodata }
func (q *TimeseriesQuery) SupportsBatch() bool { return false }

func (q *TimeseriesQuery) Identity() model.Identity { return q.sel.identity() }

func (q *TimeseriesQuery) Format() string {
	if q.format == "" {
		return "miniseed"
	}
	return q.format
}

func (q *TimeseriesQuery) Fields() []Field {
	fs := make([]Field, 0, 8+len(q.steps))
	fs = q.sel.fields(fs)
	fs = q.win.fields(fs)
	fs = q.stepFields(fs)
	fs = appendString(fs, "format", q.format)
	fs = appendField(fs, "nodata", formatNoData(q.nodata))
	return fs
}

// stepFields emits one query key per pipeline entry, preserving insertion
// order. A taper entry folds the next taper-type entry (before any further
// taper) into a single comma-joined value; freqlimits joins its four corner
// frequencies with dashes; everything else stringifies directly.
func (q *TimeseriesQuery) stepFields(fs []Field) []Field {
	consumed := make([]bool, len(q.steps))
	for i, st := range q.steps {
		if consumed[i] {
			continue
		}
		switch st.name {
		case stepTaper:
			v := formatFloat(st.nums[0])
			for j := i + 1; j < len(q.steps); j++ {
				if q.steps[j].name == stepTaper {
					break
				}
				if q.steps[j].name == stepTaperType && !consumed[j] {
					v += "," + q.steps[j].str
					consumed[j] = true
					break
				}
			}
			fs = appendField(fs, stepTaper, v)
		case stepTaperType:
			// unpaired shape; validation rejects this before encoding
			fs = appendField(fs, stepTaperType, st.str)
		case stepFreqLimits:
			parts := make([]string, len(st.nums))
			for j, n := range st.nums {
				parts[j] = formatFloat(n)
			}
			fs = appendField(fs, stepFreqLimits, strings.Join(parts, "-"))
		default:
			fs = appendField(fs, st.name, formatStep(st))
		}
	}
	return fs
}

func formatStep(st step) string {
	if st.str != "" {
		return st.str
	}
	if st.flag {
		return "true"
	}
	parts := make([]string, len(st.nums))
	for i, n := range st.nums {
		parts[i] = formatFloat(n)
	}
	return strings.Join(parts, ",")
}

type TimeseriesQueryBuilder struct {
	q    TimeseriesQuery
	errs fdsnerr.ValidationErrors
}

func NewTimeseriesQuery() *TimeseriesQueryBuilder {
	return &TimeseriesQueryBuilder{q: TimeseriesQuery{nodata: 204}}
}

func (b *TimeseriesQueryBuilder) Network(v string) *TimeseriesQueryBuilder  { b.q.sel.setNetwork(v); return b }
func (b *TimeseriesQueryBuilder) Station(v string) *TimeseriesQueryBuilder  { b.q.sel.setStation(v); return b }
func (b *TimeseriesQueryBuilder) Location(v string) *TimeseriesQueryBuilder { b.q.sel.setLocation(v); return b }
func (b *TimeseriesQueryBuilder) Channel(v string) *TimeseriesQueryBuilder  { b.q.sel.setChannel(v); return b }

func (b *TimeseriesQueryBuilder) ID(code string) *TimeseriesQueryBuilder {
	b.q.sel.setCompact(code)
	return b
}

func (b *TimeseriesQueryBuilder) Start(t time.Time) *TimeseriesQueryBuilder { b.q.win.start = t; return b }
func (b *TimeseriesQueryBuilder) End(t time.Time) *TimeseriesQueryBuilder   { b.q.win.end = t; return b }

func (b *TimeseriesQueryBuilder) StartString(s string) *TimeseriesQueryBuilder {
	b.parseTime("starttime", s, &b.q.win.start)
	return b
}

func (b *TimeseriesQueryBuilder) EndString(s string) *TimeseriesQueryBuilder {
	b.parseTime("endtime", s, &b.q.win.end)
	return b
}

func (b *TimeseriesQueryBuilder) Format(v string) *TimeseriesQueryBuilder { b.q.format = v; return b }
func (b *TimeseriesQueryBuilder) NoData(v int) *TimeseriesQueryBuilder    { b.q.nodata = v; return b }

// Pipeline steps, applied server-side in the order added.

func (b *TimeseriesQueryBuilder) Taper(width float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepTaper, nums: []float64{width}})
}

func (b *TimeseriesQueryBuilder) TaperType(shape string) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepTaperType, str: strings.ToUpper(shape)})
}

func (b *TimeseriesQueryBuilder) Envelope() *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepEnvelope, flag: true})
}

func (b *TimeseriesQueryBuilder) LPFilter(freq float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepLPFilter, nums: []float64{freq}})
}

func (b *TimeseriesQueryBuilder) HPFilter(freq float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepHPFilter, nums: []float64{freq}})
}

func (b *TimeseriesQueryBuilder) BPFilter(low, high float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepBPFilter, nums: []float64{low, high}})
}

func (b *TimeseriesQueryBuilder) Demean() *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepDemean, flag: true})
}

func (b *TimeseriesQueryBuilder) Differentiate() *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepDiff, flag: true})
}

func (b *TimeseriesQueryBuilder) Integrate() *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepInt, flag: true})
}

func (b *TimeseriesQueryBuilder) Scale(factor float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepScale, nums: []float64{factor}})
}

// ScaleAuto asks the server to derive the scale from instrument metadata.
func (b *TimeseriesQueryBuilder) ScaleAuto() *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepScale, str: "AUTO"})
}

func (b *TimeseriesQueryBuilder) DivScale(factor float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepDivScale, nums: []float64{factor}})
}

// Correct enables instrument correction (deconvolution).
func (b *TimeseriesQueryBuilder) Correct() *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepCorrect, flag: true})
}

func (b *TimeseriesQueryBuilder) FreqLimits(f1, f2, f3, f4 float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepFreqLimits, nums: []float64{f1, f2, f3, f4}})
}

func (b *TimeseriesQueryBuilder) AutoLimits(lower, upper float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepAutoLimits, nums: []float64{lower, upper}})
}

func (b *TimeseriesQueryBuilder) Decimate(sampleRate float64) *TimeseriesQueryBuilder {
	return b.addStep(step{name: stepDecimate, nums: []float64{sampleRate}})
}

func (b *TimeseriesQueryBuilder) addStep(st step) *TimeseriesQueryBuilder {
	b.q.steps = append(b.q.steps, st)
	return b
}

func (b *TimeseriesQueryBuilder) parseTime(field, s string, dst *time.Time) {
	t, err := model.ParseTime(s)
	if err != nil {
		b.errs = append(b.errs, fdsnerr.Invalid(field, "%v", err))
		return
	}
	*dst = t
}

func (b *TimeseriesQueryBuilder) Build() (*TimeseriesQuery, error) {
	errs := b.errs
	b.q.sel.validate(&errs)
	b.q.win.validate(&errs)

	if b.q.sel.network == "" {
		errs = append(errs, fdsnerr.Invalid("network", "required"))
	}
	if b.q.sel.station == "" {
		errs = append(errs, fdsnerr.Invalid("station", "required"))
	}
	if b.q.sel.channel == "" {
		errs = append(errs, fdsnerr.Invalid("channel", "required"))
	}
	if b.q.win.start.IsZero() {
		errs = append(errs, fdsnerr.Invalid("starttime", "required"))
	}
	if b.q.win.end.IsZero() {
		errs = append(errs, fdsnerr.Invalid("endtime", "required"))
	}

	checkVocab(&errs, "format", b.q.format, timeseriesFormats)
	checkNoData(&errs, b.q.nodata)
	b.validateSteps(&errs)

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// validateSteps walks the pipeline once, checking per-entry ranges and the
// inter-entry dependencies.
func (b *TimeseriesQueryBuilder) validateSteps(errs *fdsnerr.ValidationErrors) {
	var (
		scaleSet     bool
		scaleAuto    bool
		divScaleSet  bool
		correctSet   bool
		freqLimits   bool
		autoLimits   bool
		taperPending bool
	)
	for _, st := range b.q.steps {
		switch st.name {
		case stepTaper:
			if w := st.nums[0]; w < 0 || w > 1 {
				*errs = append(*errs, fdsnerr.Invalid(stepTaper, "width %v outside [0,1]", w))
			}
			taperPending = true
		case stepTaperType:
			if !taperPending {
				*errs = append(*errs, fdsnerr.Invalid(stepTaperType, "requires a preceding taper width"))
			}
			checkVocab(errs, stepTaperType, st.str, taperTypes)
			taperPending = false
		case stepLPFilter, stepHPFilter:
			if st.nums[0] <= 0 {
				*errs = append(*errs, fdsnerr.Invalid(st.name, "corner frequency must be positive"))
			}
		case stepBPFilter:
			if st.nums[0] <= 0 || st.nums[1] <= 0 {
				*errs = append(*errs, fdsnerr.Invalid(stepBPFilter, "corner frequencies must be positive"))
			} else if st.nums[0] >= st.nums[1] {
				*errs = append(*errs, fdsnerr.Invalid(stepBPFilter, "lower corner must be below upper corner"))
			}
		case stepScale:
			if scaleSet {
				*errs = append(*errs, fdsnerr.Invalid(stepScale, "given more than once"))
			}
			scaleSet = true
			scaleAuto = st.str == "AUTO"
		case stepDivScale:
			divScaleSet = true
			if st.nums[0] == 0 {
				*errs = append(*errs, fdsnerr.Invalid(stepDivScale, "must not be zero"))
			}
		case stepCorrect:
			correctSet = true
		case stepFreqLimits:
			freqLimits = true
			for i := 0; i < 3; i++ {
				if st.nums[i] >= st.nums[i+1] {
					*errs = append(*errs, fdsnerr.Invalid(stepFreqLimits, "corner frequencies must be strictly increasing"))
					break
				}
			}
		case stepAutoLimits:
			autoLimits = true
			if st.nums[0] <= 0 || st.nums[1] <= 0 {
				*errs = append(*errs, fdsnerr.Invalid(stepAutoLimits, "limits must be positive"))
			}
		case stepDecimate:
			if st.nums[0] <= 0 {
				*errs = append(*errs, fdsnerr.Invalid(stepDecimate, "sample rate must be positive"))
			}
		}
	}

	if scaleSet && divScaleSet {
		*errs = append(*errs, fdsnerr.Invalid(stepScale, "mutually exclusive with divscale"))
	}
	// scale=AUTO delegates scaling to the correction path, so combining it
	// with an explicit correct flag is rejected for every request kind.
	if scaleAuto && correctSet {
		*errs = append(*errs, fdsnerr.Invalid(stepScale, "scale=AUTO mutually exclusive with correct"))
	}
	if freqLimits && autoLimits {
		*errs = append(*errs, fdsnerr.Invalid(stepFreqLimits, "mutually exclusive with autolimits"))
	}
	if freqLimits && !correctSet {
		*errs = append(*errs, fdsnerr.Invalid(stepFreqLimits, "deconvolution frequency limits require correct"))
	}
	if autoLimits && !correctSet {
		*errs = append(*errs, fdsnerr.Invalid(stepAutoLimits, "deconvolution frequency limits require correct"))
	}
}
