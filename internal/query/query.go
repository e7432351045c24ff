// Package query translates the flat key-value parameter set of a list
// request into filter, sort, projection and pagination directives, and turns
// those directives into SQL fragments through a per-resource column
// allow-list. Unknown fields and operators never reach the database.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// Filter compares a field against a value.
type Filter struct {
	Field string
	Op    Op
	Value string
}

// SortKey orders results by a field, optionally descending.
type SortKey struct {
	Field string
	Desc  bool
}

// Directives is the resolved instruction set for one list request.
type Directives struct {
	Filters []Filter
	Sort    []SortKey
	Fields  []string
	Page    int
	Limit   int
}

// Offset is the number of records to skip for the requested page.
func (d Directives) Offset() int {
	return (d.Page - 1) * d.Limit
}

var reserved = map[string]struct{}{
	"page":   {},
	"limit":  {},
	"sort":   {},
	"fields": {},
}

var comparisons = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// Parse derives a directive set from request query parameters. Reserved keys
// (page, limit, sort, fields) are stripped from the filters; remaining keys
// become equality filters, with the bracket suffixes gt/gte/lt/lte becoming
// range comparisons. Missing or malformed page/limit fall back to defaults,
// and an absent sort defaults to newest-first.
func Parse(values url.Values) Directives {
	d := Directives{
		Page:  positiveInt(values.Get("page"), DefaultPage),
		Limit: positiveInt(values.Get("limit"), DefaultLimit),
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := reserved[key]; ok {
			continue
		}
		field, op := splitOperator(key)
		if field == "" {
			continue
		}
		for _, value := range values[key] {
			d.Filters = append(d.Filters, Filter{Field: field, Op: op, Value: value})
		}
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == "-" {
				continue
			}
			key := SortKey{Field: part}
			if strings.HasPrefix(part, "-") {
				key.Field = part[1:]
				key.Desc = true
			}
			d.Sort = append(d.Sort, key)
		}
	}
	if len(d.Sort) == 0 {
		d.Sort = []SortKey{{Field: "createdAt", Desc: true}}
	}

	if raw := strings.TrimSpace(values.Get("fields")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				d.Fields = append(d.Fields, part)
			}
		}
	}

	return d
}

// splitOperator decomposes "price[gte]" into ("price", OpGte). Keys with an
// unrecognized bracket operator are dropped entirely rather than passed
// through, so nothing unvetted reaches the store.
func splitOperator(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", OpEq
	}
	op, ok := comparisons[key[open+1:len(key)-1]]
	if !ok {
		return "", OpEq
	}
	return key[:open], op
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
