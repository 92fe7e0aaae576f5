package web

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
)

// maxFormBytes bounds how much of a form body is read. Cart forms are tiny;
// anything near this limit is not a cart form.
const maxFormBytes = 1 << 20

// formField is one name/value pair of a posted form, in submission order.
type formField struct {
	Name  string
	Value string
}

// parseOrderedForm reads an application/x-www-form-urlencoded body
// preserving field order. The standard library's url.Values loses ordering,
// but the cart's bulk update keeps entries in form order, which in turn is
// the cart's insertion order rendered into the page.
func parseOrderedForm(r *http.Request) ([]formField, error) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, _ := strings.Cut(ct, ";")
		if strings.TrimSpace(mt) != "application/x-www-form-urlencoded" {
			return nil, errors.Errorf("unsupported content type %q", mt)
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read form body")
	}

	var fields []formField
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		fields = append(fields, formField{Name: name, Value: value})
	}
	return fields, nil
}
