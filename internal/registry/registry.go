// Package registry maintains the process-wide mapping from data-centre
// labels to service base URLs. The registry is append-only: entries are
// never removed or overwritten, and a duplicate label is rejected, so
// concurrent readers can never observe a partially-written entry.
package registry

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Known data centres seeded at init. Labels are case-insensitive.
var defaults = map[string]string{
	"IRIS":   "https://service.iris.edu",
	"ORFEUS": "https://www.orfeus-eu.org",
	"GEOFON": "https://geofon.gfz-potsdam.de",
	"RESIF":  "https://ws.resif.fr",
	"INGV":   "https://webservices.ingv.it",
	"ETH":    "https://eida.ethz.ch",
	"BGR":    "https://eida.bgr.de",
	"NCEDC":  "https://service.ncedc.org",
	"SCEDC":  "https://service.scedc.caltech.edu",
	"USGS":   "https://earthquake.usgs.gov",
	"EMSC":   "https://www.seismicportal.eu",
	"ISC":    "https://isc-mirror.iris.washington.edu",
	"KOERI":  "https://eida.koeri.boun.edu.tr",
	"NIEP":   "https://eida-sc3.infp.ro",
	"NOA":    "https://eida.gein.noa.gr",
	"LMU":    "https://erde.geophysik.uni-muenchen.de",
	"ICGC":   "https://ws.icgc.cat",
	"IPGP":   "https://ws.ipgp.fr",
}

type Registry struct {
	mu sync.RWMutex
	m  map[string]string
}

// New returns a registry seeded with the known data centres.
func New() *Registry {
	r := &Registry{m: make(map[string]string, len(defaults))}
	for label, base := range defaults {
		r.m[label] = base
	}
	return r
}

// Add inserts a label → base-URL mapping. A duplicate label is rejected,
// whatever its URL; the registry never mutates existing entries.
func (r *Registry) Add(label, base string) error {
	label = canonical(label)
	if label == "" {
		return fmt.Errorf("empty server label")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server %s: %q is not an absolute URL", label, base)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.m[label]; exists {
		return fmt.Errorf("server %s already registered", label)
	}
	r.m[label] = strings.TrimRight(base, "/")
	return nil
}

// Lookup resolves a label to its base URL.
func (r *Registry) Lookup(label string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	base, ok := r.m[canonical(label)]
	return base, ok
}

// Labels returns the registered labels, sorted.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.m))
	for label := range r.m {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// seedFile is the TOML shape LoadFile accepts:
//
//	[servers]
//	LOCAL = "http://localhost:8080"
type seedFile struct {
	Servers map[string]string `toml:"servers"`
}

// LoadFile adds every entry of a TOML seed file. Duplicates of already
// registered labels are rejected like any other duplicate.
func (r *Registry) LoadFile(path string) error {
	var seed seedFile
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return fmt.Errorf("parse registry seed %s: %w", path, err)
	}
	// deterministic insertion order for deterministic error reporting
	labels := make([]string, 0, len(seed.Servers))
	for label := range seed.Servers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if err := r.Add(label, seed.Servers[label]); err != nil {
			return err
		}
	}
	return nil
}

func canonical(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// std is the process-wide registry used by the package-level helpers.
var std = New()

func Add(label, base string) error        { return std.Add(label, base) }
func Lookup(label string) (string, bool)  { return std.Lookup(label) }
func Labels() []string                    { return std.Labels() }
func LoadFile(path string) error          { return std.LoadFile(path) }
