package container

import (
	"fmt"
	"io"
	"net/http"

	"github.com/vitalvas/servlet/mapping"
)

// MappingReportHandler returns a servlet that writes the mappings visible to
// it as plain text, one "Name=[value]" line per field:
//
//	MatchValue=[/foo2]
//	Pattern=[/foo/bar/*]
//	MatchType=[PATH]
//	ServletName=[H1]
//
// Include and forward mappings follow with an "Include" or "Forward" prefix
// when present. It is meant for diagnostics and tests.
func MappingReportHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		WriteMappingReport(w, r)
	})
}

// WriteMappingReport writes the report of MappingReportHandler to w.
func WriteMappingReport(w io.Writer, r *http.Request) {
	writeMapping(w, "", Mapping(r))

	if m, ok := IncludeMapping(r); ok {
		writeMapping(w, "Include", m)
	}
	if m, ok := ForwardMapping(r); ok {
		writeMapping(w, "Forward", m)
	}
}

func writeMapping(w io.Writer, prefix string, m mapping.Mapping) {
	fmt.Fprintf(w, "%sMatchValue=[%s]\n", prefix, m.MatchValue)
	fmt.Fprintf(w, "%sPattern=[%s]\n", prefix, m.Pattern)
	fmt.Fprintf(w, "%sMatchType=[%s]\n", prefix, m.MatchType)
	fmt.Fprintf(w, "%sServletName=[%s]\n", prefix, m.HandlerName)
}
