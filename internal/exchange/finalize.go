package exchange

import (
	"errors"

	"financehub/internal/buffer"
	"financehub/internal/fetcher"
	"financehub/internal/jsondoc"
)

var errEmptyBody = errors.New("response body is empty")

// Finalize parses the accumulated body as JSON and resets the accumulator,
// whether or not parsing succeeds.
func Finalize(acc buffer.Accumulator) (jsondoc.Value, error) {
	defer acc.Reset()

	if acc.Len() == 0 {
		return jsondoc.Value{}, fetcher.NewParseError(errEmptyBody)
	}

	doc, err := jsondoc.Parse(acc.Bytes())
	if err != nil {
		return jsondoc.Value{}, fetcher.NewParseError(err)
	}
	return doc, nil
}
