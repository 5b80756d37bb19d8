package fundcalc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ImportMapping maps reserve-candidate fields to jsonpath expressions
// inside a third-party portfolio export. Root selects the company array;
// the field paths are evaluated relative to each company object.
type ImportMapping struct {
	Root             string // e.g. "$.companies"
	ID               string // e.g. "$.name"
	Invested         string
	CurrentValuation string
	ExitMOIC         string
	PlannedReserve   string
	Cap              string // optional, empty means uncapped
}

// DefaultImportMapping reads the engine's own export shape.
func DefaultImportMapping() ImportMapping {
	return ImportMapping{
		Root:             "$.companies",
		ID:               "$.id",
		Invested:         "$.invested",
		CurrentValuation: "$.currentValuation",
		ExitMOIC:         "$.exitMoic",
		PlannedReserve:   "$.plannedReserve",
		Cap:              "$.cap",
	}
}

// ImportCandidates reads reserve candidates out of an arbitrary JSON
// export using the mapping's jsonpath selectors. A company record missing
// a mapped numeric field fails the import with the offending path named.
func ImportCandidates(r io.Reader, mapping ImportMapping, currency string) ([]ReserveCandidate, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber() // keep amounts exact until they become decimals
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON export: %w", err)
	}

	rows, err := jsonpath.Get(mapping.Root, doc)
	if err != nil {
		return nil, fmt.Errorf("company array not found at %q: %w", mapping.Root, err)
	}
	list, ok := rows.([]any)
	if !ok {
		return nil, fmt.Errorf("value at %q is not an array", mapping.Root)
	}

	out := make([]ReserveCandidate, 0, len(list))
	for i, row := range list {
		id, err := pathString(row, mapping.ID)
		if err != nil {
			return nil, fmt.Errorf("company #%d: %w", i, err)
		}
		c := ReserveCandidate{ID: id}

		fields := []struct {
			path string
			dst  *Money
		}{
			{mapping.Invested, &c.Invested},
			{mapping.CurrentValuation, &c.CurrentValuation},
			{mapping.PlannedReserve, &c.PlannedReserve},
		}
		for _, f := range fields {
			d, err := pathDecimal(row, f.path)
			if err != nil {
				return nil, fmt.Errorf("company %q: %w", id, err)
			}
			*f.dst = M(d, currency)
		}
		if c.ExitMOIC, err = pathDecimal(row, mapping.ExitMOIC); err != nil {
			return nil, fmt.Errorf("company %q: %w", id, err)
		}
		if mapping.Cap != "" {
			if d, err := pathDecimal(row, mapping.Cap); err == nil {
				cap := M(d, currency)
				c.Cap = &cap
			}
			// a missing cap is simply an uncapped candidate
		}
		out = append(out, c)
	}
	return out, nil
}

// pathString evaluates a jsonpath expected to yield a string.
func pathString(obj any, path string) (string, error) {
	v, err := jsonpath.Get(path, obj)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of
	// one answer or a single answer:
	if l, ok := v.([]any); ok && len(l) == 1 {
		v = l[0]
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("path %q: want a string, got %T", path, v)
	}
	return s, nil
}

// pathDecimal evaluates a jsonpath expected to yield a number, accepted
// as a JSON number or a numeric string.
func pathDecimal(obj any, path string) (decimal.Decimal, error) {
	v, err := jsonpath.Get(path, obj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("path %q: %w", path, err)
	}
	if l, ok := v.([]any); ok && len(l) == 1 {
		v = l[0]
	}
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("path %q: invalid number %q: %w", path, n.String(), err)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("path %q: invalid number %q: %w", path, n, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	default:
		return decimal.Zero, fmt.Errorf("path %q: want a number, got %T", path, v)
	}
}
