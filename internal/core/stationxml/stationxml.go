// Package stationxml models the hierarchical station metadata document
// (network → station → channel) and prunes it to the sub-tree relevant to a
// single node. Filtering always works on a deep copy: pruning empties
// association lists, and the caller's document must never be touched.
package stationxml

import (
	"encoding/xml"
	"fmt"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
)

// Document is the root of an FDSNStationXML body.
type Document struct {
	XMLName       xml.Name  `xml:"FDSNStationXML"`
	SchemaVersion string    `xml:"schemaVersion,attr"`
	Source        string    `xml:"Source"`
	Sender        string    `xml:"Sender,omitempty"`
	Module        string    `xml:"Module,omitempty"`
	ModuleURI     string    `xml:"ModuleURI,omitempty"`
	Created       string    `xml:"Created"`
	Networks      []Network `xml:"Network"`
}

type Network struct {
	Code                string   `xml:"code,attr"`
	StartDate           string   `xml:"startDate,attr,omitempty"`
	EndDate             string   `xml:"endDate,attr,omitempty"`
	Description         string   `xml:"Description,omitempty"`
	TotalNumberStations *int     `xml:"TotalNumberStations,omitempty"`
	Stations            []Station `xml:"Station"`
}

type Station struct {
	Code      string    `xml:"code,attr"`
	StartDate string    `xml:"startDate,attr,omitempty"`
	EndDate   string    `xml:"endDate,attr,omitempty"`
	Latitude  float64   `xml:"Latitude"`
	Longitude float64   `xml:"Longitude"`
	Elevation float64   `xml:"Elevation"`
	Site      Site      `xml:"Site"`
	Channels  []Channel `xml:"Channel"`
}

type Site struct {
	Name string `xml:"Name"`
}

type Channel struct {
	Code         string    `xml:"code,attr"`
	LocationCode string    `xml:"locationCode,attr"`
	StartDate    string    `xml:"startDate,attr,omitempty"`
	EndDate      string    `xml:"endDate,attr,omitempty"`
	Latitude     float64   `xml:"Latitude"`
	Longitude    float64   `xml:"Longitude"`
	Elevation    float64   `xml:"Elevation"`
	Depth        float64   `xml:"Depth"`
	Azimuth      float64   `xml:"Azimuth"`
	Dip          float64   `xml:"Dip"`
	SampleRate   float64   `xml:"SampleRate"`
	Sensor       *Sensor   `xml:"Sensor,omitempty"`
	Response     *Response `xml:"Response,omitempty"`
}

type Sensor struct {
	Description string `xml:"Description"`
}

type Response struct {
	InstrumentSensitivity *Sensitivity `xml:"InstrumentSensitivity,omitempty"`
}

type Sensitivity struct {
	Value     float64 `xml:"Value"`
	Frequency float64 `xml:"Frequency"`
	InputUnit string  `xml:"InputUnits>Name,omitempty"`
}

// Parse decodes a StationXML body.
func Parse(body []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, &fdsnerr.FormatError{Schema: "stationxml", Reason: err.Error()}
	}
	return &doc, nil
}

// Copy returns a structurally independent deep copy of the document.
func (d *Document) Copy() *Document {
	cp := *d
	cp.Networks = make([]Network, len(d.Networks))
	for i := range d.Networks {
		cp.Networks[i] = d.Networks[i].copy()
	}
	return &cp
}

func (n Network) copy() Network {
	cp := n
	if n.TotalNumberStations != nil {
		v := *n.TotalNumberStations
		cp.TotalNumberStations = &v
	}
	cp.Stations = make([]Station, len(n.Stations))
	for i := range n.Stations {
		cp.Stations[i] = n.Stations[i].copy()
	}
	return cp
}

func (s Station) copy() Station {
	cp := s
	cp.Channels = make([]Channel, len(s.Channels))
	for i := range s.Channels {
		cp.Channels[i] = s.Channels[i].copy()
	}
	return cp
}

func (c Channel) copy() Channel {
	cp := c
	if c.Sensor != nil {
		v := *c.Sensor
		cp.Sensor = &v
	}
	if c.Response != nil {
		r := Response{}
		if c.Response.InstrumentSensitivity != nil {
			sv := *c.Response.InstrumentSensitivity
			r.InstrumentSensitivity = &sv
		}
		cp.Response = &r
	}
	return cp
}

// Filter returns a deep, independent copy of doc pruned to the path of one
// target node. netIdx selects the network; staIdx and chaIdx descend further
// and may be negative to stop at a shallower level. Siblings at every level
// are discarded, bounding the provenance document attached to one entity to
// exactly its own ancestry.
func Filter(doc *Document, netIdx, staIdx, chaIdx int) (*Document, error) {
	if netIdx < 0 || netIdx >= len(doc.Networks) {
		return nil, fmt.Errorf("network index %d out of range (%d networks)", netIdx, len(doc.Networks))
	}
	cp := *doc
	net := doc.Networks[netIdx].copy()

	if staIdx >= 0 {
		if staIdx >= len(net.Stations) {
			return nil, fmt.Errorf("station index %d out of range (%d stations)", staIdx, len(net.Stations))
		}
		sta := net.Stations[staIdx]
		if chaIdx >= 0 {
			if chaIdx >= len(sta.Channels) {
				return nil, fmt.Errorf("channel index %d out of range (%d channels)", chaIdx, len(sta.Channels))
			}
			sta.Channels = []Channel{sta.Channels[chaIdx]}
		}
		net.Stations = []Station{sta}
	}

	cp.Networks = []Network{net}
	return &cp, nil
}
