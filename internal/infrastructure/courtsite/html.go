package courtsite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

// extractHiddenInputs pulls named hidden-field values out of a document.
// Pure over the document; the result is passed explicitly between steps
// instead of living in shared parser state.
func extractHiddenInputs(doc *goquery.Document, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		value, ok := doc.Find(fmt.Sprintf("input[name='%s']", name)).Attr("value")
		if !ok || value == "" {
			return nil, &reservation.ParseError{What: fmt.Sprintf("hidden input %q", name)}
		}
		out[name] = value
	}
	return out, nil
}

// fragmentText returns the trimmed text content of the element with the
// given id, or "" if absent.
func fragmentText(doc *goquery.Document, id string) string {
	return strings.TrimSpace(doc.Find("#" + id).Text())
}

// decodeRedirect parses the pipe-delimited redirect descriptor ASP.NET
// emits from the confirm POST, e.g.
//
//	1|#||4|pageRedirect||%2freservations%2fthanks.aspx|
//
// and returns the URL-decoded second-to-last segment as a relative path.
func decodeRedirect(body string) (string, error) {
	parts := strings.Split(body, "|")
	if len(parts) < 2 {
		return "", &reservation.ParseError{What: "redirect descriptor"}
	}
	raw := parts[len(parts)-2]
	path, err := url.QueryUnescape(raw)
	if err != nil || path == "" {
		return "", &reservation.ParseError{What: "redirect descriptor path"}
	}
	return path, nil
}
