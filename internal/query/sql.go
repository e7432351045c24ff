package query

import (
	"strings"
)

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// SQL is a translated directive set ready to splice into a SELECT.
type SQL struct {
	Where   string // "" or "col >= ? AND col2 = ?"
	Args    []any
	OrderBy string // always non-empty
	Limit   int
	Offset  int
}

// Translate renders directives against a resource's column allow-list,
// mapping exposed field names to column names. Filters and sort keys naming
// unknown fields are dropped; if no requested sort key survives, the result
// falls back to created_at DESC.
func Translate(d Directives, columns map[string]string) SQL {
	t := SQL{Limit: d.Limit, Offset: d.Offset()}

	var conds []string
	for _, f := range d.Filters {
		col, ok := columns[f.Field]
		if !ok {
			continue
		}
		conds = append(conds, col+" "+sqlOps[f.Op]+" ?")
		t.Args = append(t.Args, f.Value)
	}
	t.Where = strings.Join(conds, " AND ")

	var orders []string
	for _, key := range d.Sort {
		col, ok := columns[key.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		orders = append(orders, col+" "+dir)
	}
	if len(orders) == 0 {
		orders = []string{"created_at DESC"}
	}
	t.OrderBy = strings.Join(orders, ", ")

	return t
}

// Project prunes a response document to the requested field allow-list. An
// empty request keeps the default projection untouched; unknown fields are
// ignored.
func Project(doc map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return doc
	}
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}
