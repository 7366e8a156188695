package params

import (
	"strings"
	"time"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/model"
)

// identitySelection is the network/station/location/channel selection block
// shared by the station, dataselect and timeseries kinds. A caller may set
// the four codes separately, or supply one compact "N.S.L.C" code, never
// both.
type identitySelection struct {
	network  string
	station  string
	location string
	channel  string

	quartetSet bool
	locSet     bool
	compactSet bool
	compactRaw string
	compactErr error
}

func (s *identitySelection) setNetwork(v string) { s.network = v; s.quartetSet = true }
func (s *identitySelection) setStation(v string) { s.station = v; s.quartetSet = true }
func (s *identitySelection) setChannel(v string) { s.channel = v; s.quartetSet = true }

func (s *identitySelection) setLocation(v string) {
	s.location = v
	s.quartetSet = true
	s.locSet = true
}

func (s *identitySelection) setCompact(code string) {
	s.compactSet = true
	s.compactRaw = code
	id, err := model.ParseIdentity(code)
	if err != nil {
		s.compactErr = err
		return
	}
	s.network = id.Network
	s.station = id.Station
	s.location = id.Location
	s.channel = id.Channel
}

func (s *identitySelection) validate(errs *fdsnerr.ValidationErrors) {
	if s.quartetSet && s.compactSet {
		*errs = append(*errs, fdsnerr.Invalid("id", "compact identity code must not be combined with network/station/location/channel"))
	}
	if s.compactErr != nil {
		*errs = append(*errs, fdsnerr.Invalid("id", "%v", s.compactErr))
	}
	checkASCII(errs, "network", s.network)
	checkASCII(errs, "station", s.station)
	checkASCII(errs, "location", s.location)
	checkASCII(errs, "channel", s.channel)
}

func (s *identitySelection) fields(fs []Field) []Field {
	fs = appendString(fs, "network", s.network)
	fs = appendString(fs, "station", s.station)
	// a set-but-empty location is meaningful (blank location code) and is
	// sent as the two-dash placeholder
	if s.location == "" && s.locationExplicit() {
		fs = appendField(fs, "location", "--")
	} else {
		fs = appendString(fs, "location", s.location)
	}
	fs = appendString(fs, "channel", s.channel)
	return fs
}

// locationExplicit reports whether an empty location was deliberately given,
// either via setLocation("") or a compact code with a blank third part
// ("GB.JSA..BHZ").
func (s *identitySelection) locationExplicit() bool {
	if s.locSet {
		return true
	}
	if !s.compactSet {
		return false
	}
	parts := strings.Split(s.compactRaw, ".")
	return len(parts) == 4 && parts[2] == ""
}

// identity returns the selection as a model identity.
func (s *identitySelection) identity() model.Identity {
	return model.Identity{
		Network:  s.network,
		Station:  s.station,
		Location: s.location,
		Channel:  s.channel,
	}
}

// timeWindow is the plain start/end pair shared by all kinds.
type timeWindow struct {
	start time.Time
	end   time.Time
}

func (w *timeWindow) validate(errs *fdsnerr.ValidationErrors) {
	checkTimeOrder(errs, "starttime", "endtime", w.start, w.end)
}

func (w *timeWindow) fields(fs []Field) []Field {
	fs = appendTime(fs, "starttime", w.start)
	fs = appendTime(fs, "endtime", w.end)
	return fs
}
