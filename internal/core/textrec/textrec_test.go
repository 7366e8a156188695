package textrec

import (
	"errors"
	"testing"
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
)

func TestDecodeNetworks(t *testing.T) {
	body := []byte("#Network|Description|StartTime|EndTime|TotalStations\n" +
		"GB|Great Britain Seismograph Network|1970-01-01T00:00:00|2599-12-31T23:59:59|52\n" +
		"\n" +
		"IU|Global Seismograph Network|1988-01-01T00:00:00||128\n")

	recs, err := DecodeNetworks(body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Code != "GB" || recs[0].TotalStations != 52 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if want := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC); !recs[0].Start.Equal(want) {
		t.Fatalf("start = %v, want %v", recs[0].Start, want)
	}
	// empty end token means "still open", not an error
	if !recs[1].End.IsZero() {
		t.Fatalf("open end should decode to zero time, got %v", recs[1].End)
	}
}

func TestDecodeNetworks_WrongColumnCount(t *testing.T) {
	for _, body := range []string{
		"GB|desc|1970-01-01|2599-12-31\n",       // 4 columns
		"GB|desc|1970-01-01|2599-12-31|52|x\n",  // 6 columns
	} {
		_, err := DecodeNetworks([]byte(body))
		var fe *fdsnerr.FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("want FormatError for %q, got %v", body, err)
		}
		if fe.Schema != "network" {
			t.Fatalf("schema = %q, want network", fe.Schema)
		}
	}
}

func TestDecodeStations_BadTokenFailsLine(t *testing.T) {
	body := []byte("GB|JSA|49.18|-2.17|39.0|Jersey|2007-09-06T00:00:00|\n" +
		"GB|EDI|not-a-number|-3.18|125.0|Edinburgh|2000-01-01T00:00:00|\n")

	_, err := DecodeStations(body)
	var fe *fdsnerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("want FormatError, got %v", err)
	}
	if fe.Schema != "station" {
		t.Fatalf("schema = %q, want station", fe.Schema)
	}
}

func TestDecodeStations(t *testing.T) {
	body := []byte("GB|JSA|49.1882|-2.1714|39.0|Jersey, Channel Islands|2007-09-06T00:00:00|\n")
	recs, err := DecodeStations(body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	r := recs[0]
	if r.Network != "GB" || r.Station != "JSA" || r.SiteName != "Jersey, Channel Islands" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Latitude != 49.1882 || r.Longitude != -2.1714 || r.Elevation != 39.0 {
		t.Fatalf("unexpected coordinates: %+v", r)
	}
}

func TestDecodeChannels(t *testing.T) {
	body := []byte("GB|JSA|--|BHZ|49.1882|-2.1714|39.0|0.0|0.0|-90.0|" +
		"Guralp CMG-3T|4.8e8|1.0|M/S|50.0|2007-09-06T00:00:00|\n")

	recs, err := DecodeChannels(body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	r := recs[0]
	if r.Channel != "BHZ" || r.Location != "--" {
		t.Fatalf("unexpected record: %+v", r)
	}
	// wire units preserved: depth in metres, dip down from horizontal
	if r.Depth != 0.0 || r.Dip != -90.0 {
		t.Fatalf("unexpected depth/dip: %+v", r)
	}
	if r.Scale == nil || *r.Scale != 4.8e8 {
		t.Fatalf("unexpected scale: %+v", r.Scale)
	}
	if r.ScaleFrequency == nil || *r.ScaleFrequency != 1.0 {
		t.Fatalf("unexpected scale frequency: %+v", r.ScaleFrequency)
	}
	if r.SampleRate != 50.0 || r.ScaleUnits != "M/S" {
		t.Fatalf("unexpected rate/units: %+v", r)
	}
}

func TestDecodeChannels_EmptyScaleIsAbsent(t *testing.T) {
	body := []byte("GB|JSA|--|BHZ|49.1882|-2.1714|39.0|0.0|0.0|-90.0|" +
		"Guralp CMG-3T|||M/S|50.0|2007-09-06T00:00:00|\n")

	recs, err := DecodeChannels(body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if recs[0].Scale != nil || recs[0].ScaleFrequency != nil {
		t.Fatalf("blank scale tokens should decode to nil: %+v", recs[0])
	}
}

func TestDecodeEvents_BothColumnCounts(t *testing.T) {
	thirteen := "us7000abcd|2020-03-25T02:49:21.230|48.9862|157.6930|57.8|us|us|us|us7000abcd|mww|7.5|us|Kuril Islands"
	fourteen := thirteen + "|earthquake"

	recs, err := DecodeEvents([]byte(thirteen + "\n" + fourteen + "\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].EventType != "" {
		t.Fatalf("13-column line must leave EventType empty, got %q", recs[0].EventType)
	}
	if recs[1].EventType != "earthquake" {
		t.Fatalf("EventType = %q, want earthquake", recs[1].EventType)
	}
	if recs[0].Magnitude != 7.5 || recs[0].DepthKm != 57.8 || recs[0].MagType != "mww" {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
	// sub-millisecond precision is truncated to the millisecond
	if got := recs[0].Time.Nanosecond(); got != 230_000_000 {
		t.Fatalf("time nanoseconds = %d, want 230000000", got)
	}
}

func TestDecodeEvents_CommentAndBlankLinesSkipped(t *testing.T) {
	body := []byte("#EventID|Time|Latitude|Longitude|Depth/km|Author|Catalog|Contributor|ContributorID|MagType|Magnitude|MagAuthor|EventLocationName\n" +
		"   # indented comment\n" +
		"\r\n" +
		"ev1|2020-01-01T00:00:00|1.0|2.0|3.0|a|c|c|id|ml|4.0|a|Somewhere\n")

	recs, err := DecodeEvents(body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "ev1" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}
