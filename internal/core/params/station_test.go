package params

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
)

func fieldString(fs []Field) string {
	s := ""
	for i, f := range fs {
		if i > 0 {
			s += "&"
		}
		s += f.Name + "=" + f.Value
	}
	return s
}

func TestStationQuery_FieldOrder(t *testing.T) {
	q, err := NewStationQuery().
		Network("GB").
		Station("JSA").
		Channel("BHZ").
		Level("channel").
		Format("text").
		Build()
	require.NoError(t, err)

	want := "network=GB&station=JSA&channel=BHZ&level=channel&format=text&nodata=204"
	assert.Equal(t, want, fieldString(q.Fields()))
}

func TestStationQuery_LatitudeBounds(t *testing.T) {
	cases := []struct {
		lat float64
		ok  bool
	}{
		{-90, true},
		{90, true},
		{0, true},
		{-90.0001, false},
		{90.0001, false},
		{120, false},
	}
	for _, tc := range cases {
		_, err := NewStationQuery().Latitude(tc.lat).Longitude(0).MaxRadius(10).Build()
		if tc.ok {
			assert.NoError(t, err, "lat %v", tc.lat)
		} else {
			assert.Error(t, err, "lat %v", tc.lat)
		}
	}
}

func TestStationQuery_StartAfterEnd(t *testing.T) {
	_, err := NewStationQuery().
		Start(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)).
		End(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).
		Build()
	require.Error(t, err)

	var ve *fdsnerr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "starttime", ve.Field)
}

func TestStationQuery_RadiusRequiresCenter(t *testing.T) {
	_, err := NewStationQuery().MaxRadius(5).Build()
	assert.Error(t, err)

	_, err = NewStationQuery().MaxRadius(5).Latitude(10).Build()
	assert.Error(t, err, "longitude still missing")

	_, err = NewStationQuery().MaxRadius(5).Latitude(10).Longitude(20).Build()
	assert.NoError(t, err)
}

func TestStationQuery_ClosedVocabularies(t *testing.T) {
	_, err := NewStationQuery().Level("continent").Build()
	assert.Error(t, err)

	_, err = NewStationQuery().Format("csv").Build()
	assert.Error(t, err)

	_, err = NewStationQuery().NoData(500).Build()
	assert.Error(t, err)
}

func TestStationQuery_CompactIDExclusive(t *testing.T) {
	q, err := NewStationQuery().ID("II.AAK.00.BHZ").Build()
	require.NoError(t, err)
	assert.Equal(t, "II.AAK.00.BHZ", q.Identity().String())

	_, err = NewStationQuery().ID("II.AAK.00.BHZ").Network("GB").Build()
	assert.Error(t, err)
}

func TestStationQuery_CompactIDBlankLocation(t *testing.T) {
	q, err := NewStationQuery().ID("GB.JSA..BHZ").Build()
	require.NoError(t, err)
	assert.Contains(t, fieldString(q.Fields()), "location=--")
}

func TestStationQuery_ReportsEveryViolation(t *testing.T) {
	_, err := NewStationQuery().
		Latitude(200).
		MaxRadius(400).
		Level("bogus").
		Build()
	require.Error(t, err)

	var ves fdsnerr.ValidationErrors
	require.True(t, errors.As(err, &ves))
	// latitude range, radius range, missing longitude for the radial
	// search, and the level vocabulary
	assert.Len(t, ves, 4)
}

func TestStationQuery_NonASCIIIdentity(t *testing.T) {
	_, err := NewStationQuery().Network("GÉ").Build()
	assert.Error(t, err)
}

func TestStationQuery_TimeStringNormalization(t *testing.T) {
	a, err := NewStationQuery().StartString("2020-06-01T12:30:00").Build()
	require.NoError(t, err)
	b, err := NewStationQuery().Start(time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC)).Build()
	require.NoError(t, err)
	assert.Equal(t, fieldString(b.Fields()), fieldString(a.Fields()))

	_, err = NewStationQuery().StartString("junk").Build()
	assert.Error(t, err)
}
