// Package model defines the domain entities the decoding layer produces:
// identity codes, validity windows, and the minimal station/event shapes.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Identity is the SEED identity quartet. Location may legitimately be the
// empty string; String renders it as-is so "GB.JSA..BHZ" round-trips.
type Identity struct {
	Network  string
	Station  string
	Location string
	Channel  string
}

func (id Identity) String() string {
	return id.Network + "." + id.Station + "." + id.Location + "." + id.Channel
}

// ParseIdentity splits a compact "NET.STA.LOC.CHA" code. Wildcards and
// comma lists are allowed inside each part; the dot count is not.
func ParseIdentity(s string) (Identity, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Identity{}, fmt.Errorf("identity %q: want 4 dot-separated parts, got %d", s, len(parts))
	}
	return Identity{
		Network:  parts[0],
		Station:  parts[1],
		Location: parts[2],
		Channel:  parts[3],
	}, nil
}

// Window is a period of validity. A zero End means the window is open.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Open() bool { return w.End.IsZero() }

// Station is the station-shaped output entity. Depending on the requested
// level only a prefix of the identity is populated (network level sets only
// Network). Channel-scoped orientation fields are nil at coarser levels.
//
// Units follow the entity convention, not the wire convention: Depth is in
// kilometres and Inclination is degrees down from vertical.
type Station struct {
	ID        Identity
	Latitude  *float64
	Longitude *float64
	Elevation *float64
	Depth     *float64
	Azimuth   *float64

	// Inclination is the wire dip (degrees down from horizontal) shifted
	// by +90 at decode time.
	Inclination *float64

	SiteName       string
	SensorDesc     string
	Scale          *float64
	ScaleFrequency *float64
	ScaleUnits     string
	SampleRate     *float64
	TotalStations  *int
	Description    string
	Window         Window
	Meta           map[string]any
}

// NewStation returns a station stub carrying only an identity, the shape a
// caller supplies when asking for reconciliation against server metadata.
func NewStation(id Identity) *Station {
	return &Station{ID: id, Meta: map[string]any{}}
}

// MergeFrom overwrites the receiver's decoded fields with src and unions the
// metadata bags, decoded values taking precedence. Identity is kept.
func (s *Station) MergeFrom(src *Station) {
	id := s.ID
	meta := s.Meta
	*s = *src
	s.ID = id
	if meta == nil {
		s.Meta = src.Meta
		return
	}
	for k, v := range src.Meta {
		meta[k] = v
	}
	s.Meta = meta
}

// Event is the event-shaped output entity decoded from catalogue responses.
type Event struct {
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
	Meta          map[string]any
}

// Metadata keys used for provenance on every decoded entity.
const (
	MetaServer     = "server"
	MetaRequestID  = "request_id"
	MetaRequest    = "request"
	MetaBodyDigest = "body_digest"
	MetaDocument   = "document"
)
