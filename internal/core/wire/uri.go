// Package wire turns validated parameter sets into their transport
// encodings: a GET query string or a batched POST body. Percent-encoding is
// left to the transport layer; this layer only guarantees parameter order
// and rejects raw control characters that could be smuggled into a request
// line.
package wire

import (
	"strconv"
	"strings"

	"github.com/seisgo/fdsnws/internal/core/fdsnerr"
	"github.com/seisgo/fdsnws/internal/core/params"
)

// checkInjection rejects bare CR or LF in any string placed into a request
// line, closing off header injection before the URI is assembled.
func checkInjection(field, v string) error {
	if strings.ContainsAny(v, "\r\n") {
		return fdsnerr.Invalid(field, "contains a raw carriage-return or line-feed")
	}
	return nil
}

// EncodeQuery renders the query string for a GET request: fields in the
// kind's declared order, ampersand-joined, absent fields omitted.
func EncodeQuery(q params.Query) (string, error) {
	var sb strings.Builder
	for i, f := range q.Fields() {
		if err := checkInjection(f.Name, f.Name); err != nil {
			return "", err
		}
		if err := checkInjection(f.Name, f.Value); err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		sb.WriteString(f.Value)
	}
	return sb.String(), nil
}

// QueryURL builds the full request URI:
// {base}/{protocol}/{service}/{major}/query?{query}.
func QueryURL(base string, q params.Query) (string, error) {
	if err := checkInjection("base", base); err != nil {
		return "", err
	}
	enc, err := EncodeQuery(q)
	if err != nil {
		return "", err
	}
	u := strings.TrimRight(base, "/") +
		"/" + q.Protocol() +
		"/" + string(q.Service()) +
		"/" + strconv.Itoa(q.MajorVersion()) +
		"/query"
	if enc == "" {
		return u, nil
	}
	return u + "?" + enc, nil
}
