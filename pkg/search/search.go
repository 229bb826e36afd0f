// Package search filters a tree projection on the client side.
package search

import (
	"strings"

	"github.com/itchyny/gojq"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// Filter returns the containers, sections and items matching query. Plain
// queries match case-insensitively against an item's name, kind and
// description. Queries starting with "." are jq expressions evaluated
// against each item; an item matches when the first result is truthy.
// Sections and containers left without items are dropped. An empty query
// returns containers unchanged; whitespace is matched like any other text.
func Filter(containers []calib.Container, query string) []calib.Container {
	if query == "" {
		return containers
	}
	match := Compile(query)

	out := make([]calib.Container, 0, len(containers))
	for _, c := range containers {
		var sections []calib.Section
		for _, s := range c.Sections {
			var items []calib.Item
			for _, it := range s.Items {
				if match(it) {
					items = append(items, it)
				}
			}
			if len(items) == 0 {
				continue
			}
			s.Items = items
			sections = append(sections, s)
		}
		if len(sections) == 0 {
			continue
		}
		c.Sections = sections
		out = append(out, c)
	}
	return out
}

// Matcher reports whether an item satisfies a query.
type Matcher func(calib.Item) bool

// Compile builds the matcher for query. A jq expression that does not parse
// matches nothing.
func Compile(query string) Matcher {
	if strings.HasPrefix(query, ".") {
		return compileJQ(query)
	}
	needle := strings.ToLower(query)
	return func(it calib.Item) bool {
		if strings.Contains(strings.ToLower(it.Name), needle) ||
			strings.Contains(strings.ToLower(string(it.Kind)), needle) {
			return true
		}
		return it.Description != nil && strings.Contains(strings.ToLower(*it.Description), needle)
	}
}

func compileJQ(query string) Matcher {
	q, err := gojq.Parse(query)
	if err != nil {
		return func(calib.Item) bool { return false }
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return func(calib.Item) bool { return false }
	}
	return func(it calib.Item) bool {
		v, ok := code.Run(Document(it)).Next()
		if !ok {
			return false
		}
		if _, isErr := v.(error); isErr {
			return false
		}
		return v != nil && v != false
	}
}

// Document is the value a jq query sees for an item. Details are keyed by
// label so `.details.Datatype == "UWORD"` works.
func Document(it calib.Item) map[string]any {
	details := make(map[string]any, len(it.Details))
	for _, d := range it.Details {
		details[d.Label] = d.Value
	}
	doc := map[string]any{
		"id":        it.ID.String(),
		"container": it.ID.Container,
		"name":      it.Name,
		"kind":      string(it.Kind),
		"details":   details,
	}
	if it.Description != nil {
		doc["description"] = *it.Description
	} else {
		doc["description"] = nil
	}
	return doc
}
