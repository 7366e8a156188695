package wire

import (
	"fmt"
	"strings"

	"github.com/seisgo/fdsnws/internal/core/model"
	"github.com/seisgo/fdsnws/internal/core/params"
)

// Batchable is the view of a query kind that may be encoded as one POST
// body covering many identity codes. The station and dataselect kinds
// implement it; timeseries deliberately does not.
type Batchable interface {
	params.Query
	SharedFields() []params.Field
	Identity() model.Identity
	Window() model.Window
}

// EncodePostBody renders a batch of queries of the same kind as a POST
// body: one header line per shared present field, then one line per member
// with the four identity codes and the time window, space-separated.
//
// Every member must be identical in every field except the identity quartet
// and the window; a mismatch is an argument error, never silently dropped.
func EncodePostBody(batch []params.Query) ([]byte, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	members := make([]Batchable, len(batch))
	for i, q := range batch {
		b, ok := q.(Batchable)
		if !ok || !q.SupportsBatch() {
			return nil, fmt.Errorf("%s queries do not support batching", q.Service())
		}
		if q.Service() != batch[0].Service() {
			return nil, fmt.Errorf("batch mixes %s and %s queries", batch[0].Service(), q.Service())
		}
		members[i] = b
	}

	header := members[0].SharedFields()
	for i, m := range members[1:] {
		if err := sameFields(header, m.SharedFields()); err != nil {
			return nil, fmt.Errorf("batch member %d: %w", i+1, err)
		}
	}

	var sb strings.Builder
	for _, f := range header {
		if err := checkInjection(f.Name, f.Value); err != nil {
			return nil, err
		}
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		sb.WriteString(f.Value)
		sb.WriteByte('\n')
	}

	for i, m := range members {
		id := m.Identity()
		w := m.Window()
		if w.Start.IsZero() || w.End.IsZero() {
			return nil, fmt.Errorf("batch member %d: start and end times are required", i)
		}
		for _, part := range []struct{ field, v string }{
			{"network", id.Network},
			{"station", id.Station},
			{"location", id.Location},
			{"channel", id.Channel},
		} {
			if err := checkInjection(part.field, part.v); err != nil {
				return nil, err
			}
			if strings.ContainsRune(part.v, ' ') {
				return nil, fmt.Errorf("batch member %d: %s %q contains a space", i, part.field, part.v)
			}
		}
		sb.WriteString(id.Network)
		sb.WriteByte(' ')
		sb.WriteString(id.Station)
		sb.WriteByte(' ')
		sb.WriteString(canonicalLocation(id.Location))
		sb.WriteByte(' ')
		sb.WriteString(id.Channel)
		sb.WriteByte(' ')
		sb.WriteString(params.FormatTime(w.Start))
		sb.WriteByte(' ')
		sb.WriteString(params.FormatTime(w.End))
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

// canonicalLocation maps an empty location code to the two-dash placeholder
// the line-oriented body requires; "--" itself passes through unchanged.
func canonicalLocation(loc string) string {
	if strings.TrimSpace(loc) == "" {
		return "--"
	}
	return loc
}

func sameFields(a, b []params.Field) error {
	if len(a) != len(b) {
		return fmt.Errorf("differs from first member in present fields")
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("field %s differs from first member (%q vs %q)", a[i].Name, b[i].Value, a[i].Value)
		}
	}
	return nil
}
