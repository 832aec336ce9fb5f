package siisync

import (
	"github.com/clbanning/mxj/v2"
)

// parseMarkup turns the raw scraper body into the generic node map the
// collector and extractor operate on. mxj keeps element text either as a
// bare string or, when the element carries attributes, under the reserved
// #text child; the extractor handles both shapes.
func parseMarkup(raw string) (map[string]interface{}, error) {
	m, err := mxj.NewMapXml([]byte(raw))
	if err != nil {
		return nil, &MarkupParseError{Cause: err}
	}
	return map[string]interface{}(m), nil
}
