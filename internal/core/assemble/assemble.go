// Package assemble converts decoded text records and filtered StationXML
// nodes into output entities, applying the wire-to-entity unit conversions,
// and reconciles decoded entities against caller-supplied stubs.
package assemble

import (
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/seisgo/fdsnws/internal/core/model"
	"github.com/seisgo/fdsnws/internal/core/stationxml"
	"github.com/seisgo/fdsnws/internal/core/textrec"
)

// Provenance records where a decoded entity came from: the server label,
// a per-request id, the originating request encoding, and a digest of the
// raw response body.
type Provenance struct {
	Server     string
	RequestID  string
	Request    string
	BodyDigest uint64
}

// NewProvenance stamps a fresh request id and digests the raw body.
func NewProvenance(server, request string, body []byte) Provenance {
	return Provenance{
		Server:     server,
		RequestID:  uuid.NewString(),
		Request:    request,
		BodyDigest: xxhash.Sum64(body),
	}
}

func (p Provenance) apply(meta map[string]any) {
	if p.Server != "" {
		meta[model.MetaServer] = p.Server
	}
	if p.RequestID != "" {
		meta[model.MetaRequestID] = p.RequestID
	}
	if p.Request != "" {
		meta[model.MetaRequest] = p.Request
	}
	meta[model.MetaBodyDigest] = p.BodyDigest
}

// Wire-to-entity unit conversions.

// depthKm converts the wire depth (metres) to the entity depth (km).
func depthKm(metres float64) float64 { return metres / 1000 }

// inclination converts the wire dip (degrees down from horizontal) to the
// entity inclination (degrees down from vertical).
func inclination(dip float64) float64 { return dip + 90 }

func ptr[T any](v T) *T { return &v }

// NetworksFromText builds network-scoped entities; descent stops at the
// network level, so only network-scoped fields are populated.
func NetworksFromText(recs []textrec.NetworkRecord, prov Provenance) []*model.Station {
	out := make([]*model.Station, 0, len(recs))
	for _, r := range recs {
		s := &model.Station{
			ID:            model.Identity{Network: r.Code},
			Description:   r.Description,
			TotalStations: ptr(r.TotalStations),
			Window:        model.Window{Start: r.Start, End: r.End},
			Meta:          map[string]any{},
		}
		prov.apply(s.Meta)
		out = append(out, s)
	}
	return out
}

// StationsFromText builds station-scoped entities.
func StationsFromText(recs []textrec.StationRecord, prov Provenance) []*model.Station {
	out := make([]*model.Station, 0, len(recs))
	for _, r := range recs {
		s := &model.Station{
			ID:        model.Identity{Network: r.Network, Station: r.Station},
			Latitude:  ptr(r.Latitude),
			Longitude: ptr(r.Longitude),
			Elevation: ptr(r.Elevation),
			SiteName:  r.SiteName,
			Window:    model.Window{Start: r.Start, End: r.End},
			Meta:      map[string]any{},
		}
		prov.apply(s.Meta)
		out = append(out, s)
	}
	return out
}

// ChannelsFromText builds channel-scoped entities with the unit conversions
// applied.
func ChannelsFromText(recs []textrec.ChannelRecord, prov Provenance) []*model.Station {
	out := make([]*model.Station, 0, len(recs))
	for _, r := range recs {
		s := &model.Station{
			ID: model.Identity{
				Network:  r.Network,
				Station:  r.Station,
				Location: r.Location,
				Channel:  r.Channel,
			},
			Latitude:       ptr(r.Latitude),
			Longitude:      ptr(r.Longitude),
			Elevation:      ptr(r.Elevation),
			Depth:          ptr(depthKm(r.Depth)),
			Azimuth:        ptr(r.Azimuth),
			Inclination:    ptr(inclination(r.Dip)),
			SensorDesc:     r.SensorDesc,
			Scale:          r.Scale,
			ScaleFrequency: r.ScaleFrequency,
			ScaleUnits:     r.ScaleUnits,
			SampleRate:     ptr(r.SampleRate),
			Window:         model.Window{Start: r.Start, End: r.End},
			Meta:           map[string]any{},
		}
		prov.apply(s.Meta)
		out = append(out, s)
	}
	return out
}

// EventsFromText builds event entities. The wire depth for events is already
// in kilometres, so no conversion applies.
func EventsFromText(recs []textrec.EventRecord, prov Provenance) []*model.Event {
	out := make([]*model.Event, 0, len(recs))
	for _, r := range recs {
		e := &model.Event{
			ID:            r.ID,
			Time:          r.Time,
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
			DepthKm:       r.DepthKm,
			Author:        r.Author,
			Catalog:       r.Catalog,
			Contributor:   r.Contributor,
			ContributorID: r.ContributorID,
			MagType:       r.MagType,
			Magnitude:     r.Magnitude,
			MagAuthor:     r.MagAuthor,
			Region:        r.Region,
			EventType:     r.EventType,
			Meta:          map[string]any{},
		}
		prov.apply(e.Meta)
		out = append(out, e)
	}
	return out
}

// FromStationXML walks a parsed document to the requested level and builds
// one entity per node at that level. Each entity's metadata carries the
// document pruned to exactly its own ancestry; the source document is never
// mutated.
func FromStationXML(doc *stationxml.Document, level string, prov Provenance) ([]*model.Station, error) {
	var out []*model.Station
	for ni, net := range doc.Networks {
		if level == "network" {
			sub, err := stationxml.Filter(doc, ni, -1, -1)
			if err != nil {
				return nil, err
			}
			s := &model.Station{
				ID:          model.Identity{Network: net.Code},
				Description: net.Description,
				Window:      parseWindow(net.StartDate, net.EndDate),
				Meta:        map[string]any{model.MetaDocument: sub},
			}
			if net.TotalNumberStations != nil {
				s.TotalStations = ptr(*net.TotalNumberStations)
			}
			prov.apply(s.Meta)
			out = append(out, s)
			continue
		}
		for si, sta := range net.Stations {
			if level == "station" {
				sub, err := stationxml.Filter(doc, ni, si, -1)
				if err != nil {
					return nil, err
				}
				s := &model.Station{
					ID:        model.Identity{Network: net.Code, Station: sta.Code},
					Latitude:  ptr(sta.Latitude),
					Longitude: ptr(sta.Longitude),
					Elevation: ptr(sta.Elevation),
					SiteName:  sta.Site.Name,
					Window:    parseWindow(sta.StartDate, sta.EndDate),
					Meta:      map[string]any{model.MetaDocument: sub},
				}
				prov.apply(s.Meta)
				out = append(out, s)
				continue
			}
			for ci, cha := range sta.Channels {
				sub, err := stationxml.Filter(doc, ni, si, ci)
				if err != nil {
					return nil, err
				}
				s := &model.Station{
					ID: model.Identity{
						Network:  net.Code,
						Station:  sta.Code,
						Location: cha.LocationCode,
						Channel:  cha.Code,
					},
					Latitude:    ptr(cha.Latitude),
					Longitude:   ptr(cha.Longitude),
					Elevation:   ptr(cha.Elevation),
					Depth:       ptr(depthKm(cha.Depth)),
					Azimuth:     ptr(cha.Azimuth),
					Inclination: ptr(inclination(cha.Dip)),
					SiteName:    sta.Site.Name,
					SampleRate:  ptr(cha.SampleRate),
					Window:      parseWindow(cha.StartDate, cha.EndDate),
					Meta:        map[string]any{model.MetaDocument: sub},
				}
				if cha.Sensor != nil {
					s.SensorDesc = cha.Sensor.Description
				}
				if cha.Response != nil && cha.Response.InstrumentSensitivity != nil {
					sens := cha.Response.InstrumentSensitivity
					s.Scale = ptr(sens.Value)
					s.ScaleFrequency = ptr(sens.Frequency)
					s.ScaleUnits = sens.InputUnit
				}
				prov.apply(s.Meta)
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func parseWindow(start, end string) model.Window {
	var w model.Window
	if start != "" {
		if t, err := model.ParseTime(start); err == nil {
			w.Start = t
		}
	}
	if end != "" {
		if t, err := model.ParseTime(end); err == nil {
			w.End = t
		}
	}
	return w
}
