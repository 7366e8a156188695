package assemble

import (
	"fmt"

	"github.com/seisgo/fdsnws/internal/core/model"
)

// Warning kinds reported by reconciliation. Warnings never abort the batch;
// partial success is the expected common case.
const (
	WarnAmbiguous = "ambiguous_match"
	WarnNoMatch   = "no_match"
)

// Warning is a non-fatal reconciliation finding.
type Warning struct {
	Kind     string
	Identity string
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Identity, w.Message)
}

// Reconcile enriches caller-supplied stubs in place with decoded entities,
// matching by exact identity-code equality.
//
// When an identity has several decoded matches (distinct validity windows)
// the one with the most recent start time wins and an ambiguity warning is
// reported. A stub with no match is left untouched and reported. The
// requests map supplies the specific originating request for each identity
// code; when present it replaces the representative request in the merged
// metadata.
func Reconcile(stubs []*model.Station, decoded []*model.Station, requests map[string]any) []Warning {
	byID := make(map[string][]*model.Station, len(decoded))
	for _, d := range decoded {
		key := d.ID.String()
		byID[key] = append(byID[key], d)
	}

	var warnings []Warning
	for _, stub := range stubs {
		key := stub.ID.String()
		matches := byID[key]
		if len(matches) == 0 {
			warnings = append(warnings, Warning{
				Kind:     WarnNoMatch,
				Identity: key,
				Message:  "no server-side metadata matched",
			})
			continue
		}

		best := matches[0]
		for _, m := range matches[1:] {
			if m.Window.Start.After(best.Window.Start) {
				best = m
			}
		}
		if len(matches) > 1 {
			warnings = append(warnings, Warning{
				Kind:     WarnAmbiguous,
				Identity: key,
				Message: fmt.Sprintf("%d matches with distinct validity windows; using the most recent (start %s)",
					len(matches), best.Window.Start.Format("2006-01-02")),
			})
		}

		stub.MergeFrom(best)
		if req, ok := requests[key]; ok {
			stub.Meta[model.MetaRequest] = req
		}
	}
	return warnings
}
