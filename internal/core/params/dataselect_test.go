package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
)

func TestDataselectQuery_Fields(t *testing.T) {
	q, err := NewDataselectQuery().
		Network("IU").Station("ANMO").Location("00").Channel("BHZ").
		Start(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)).
		End(time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)).
		Quality("M").
		MinimumLength(30).
		LongestOnly(true).
		Build()
	require.NoError(t, err)

	want := "network=IU&station=ANMO&location=00&channel=BHZ" +
		"&starttime=2020-03-01T00:00:00&endtime=2020-03-02T00:00:00" +
		"&quality=M&minimumlength=30&longestonly=true&nodata=204"
	assert.Equal(t, want, fieldString(q.Fields()))
	assert.Equal(t, "miniseed", q.Format())
	assert.True(t, q.SupportsBatch())
}

func TestDataselectQuery_QualityVocab(t *testing.T) {
	for _, ok := range []string{"D", "R", "Q", "M", "B"} {
		_, err := NewDataselectQuery().Network("IU").Quality(ok).Build()
		require.NoError(t, err, "quality %s", ok)
	}
	_, err := NewDataselectQuery().Network("IU").Quality("X").Build()
	require.Error(t, err)
	var ves fdsnerr.ValidationErrors
	require.ErrorAs(t, err, &ves)
	assert.Equal(t, "quality", ves[0].Field)
}

func TestDataselectQuery_MinimumLengthNotNegative(t *testing.T) {
	_, err := NewDataselectQuery().Network("IU").MinimumLength(-1).Build()
	require.Error(t, err)

	_, err = NewDataselectQuery().Network("IU").MinimumLength(0).Build()
	require.NoError(t, err)
}

func TestDataselectQuery_CompactID(t *testing.T) {
	q, err := NewDataselectQuery().ID("II.AAK.00.BHZ").Build()
	require.NoError(t, err)
	id := q.Identity()
	assert.Equal(t, "II.AAK.00.BHZ", id.String())
}
