package ontology

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// Operator is a comparison operator usable in query filters.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpGt   Operator = "gt"
	OpLt   Operator = "lt"
	OpGte  Operator = "gte"
	OpLte  Operator = "lte"
	OpIn   Operator = "in"
	OpLike Operator = "like"
)

// Valid reports whether op is a recognized operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte, OpIn, OpLike:
		return true
	}
	return false
}

// Filter is one predicate on a queryable field. Filters in a query are
// conjoined with AND.
type Filter struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// OrderBy sorts results by one field.
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // "asc" or "desc"
}

// QueryOptions configures QueryObjects. The result is a finite, non-lazy
// slice; insertion order is irrelevant unless OrderBy is given.
type QueryOptions struct {
	Filters []Filter  `json:"filters,omitempty"`
	OrderBy []OrderBy `json:"order_by,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}

// WithFilter returns a copy of opts with one more filter appended.
func (o QueryOptions) WithFilter(field string, op Operator, value any) QueryOptions {
	filters := make([]Filter, 0, len(o.Filters)+1)
	filters = append(filters, o.Filters...)
	filters = append(filters, Filter{Field: field, Operator: op, Value: value})
	o.Filters = filters
	return o
}

// applyQueryOptions translates opts onto a bun select. columns whitelists the
// queryable fields for the kind, mapping field names to column names; unknown
// fields and operators fail with a validation error rather than reaching SQL.
func applyQueryOptions(q *bun.SelectQuery, opts QueryOptions, columns map[string]string) (*bun.SelectQuery, error) {
	for _, f := range opts.Filters {
		col, ok := columns[f.Field]
		if !ok {
			return nil, apperror.NewValidation(fmt.Sprintf("field %q is not queryable", f.Field))
		}
		if !f.Operator.Valid() {
			return nil, apperror.NewValidation(fmt.Sprintf("unknown operator %q", f.Operator))
		}
		switch f.Operator {
		case OpEq:
			q = q.Where("? = ?", bun.Ident(col), f.Value)
		case OpNe:
			q = q.Where("? != ?", bun.Ident(col), f.Value)
		case OpGt:
			q = q.Where("? > ?", bun.Ident(col), f.Value)
		case OpLt:
			q = q.Where("? < ?", bun.Ident(col), f.Value)
		case OpGte:
			q = q.Where("? >= ?", bun.Ident(col), f.Value)
		case OpLte:
			q = q.Where("? <= ?", bun.Ident(col), f.Value)
		case OpIn:
			q = q.Where("? IN (?)", bun.Ident(col), bun.In(f.Value))
		case OpLike:
			q = q.Where("? LIKE ?", bun.Ident(col), f.Value)
		}
	}

	for _, ob := range opts.OrderBy {
		col, ok := columns[ob.Field]
		if !ok {
			return nil, apperror.NewValidation(fmt.Sprintf("field %q is not sortable", ob.Field))
		}
		dir := "ASC"
		if ob.Direction == "desc" {
			dir = "DESC"
		}
		q = q.OrderExpr("? ?", bun.Ident(col), bun.Safe(dir))
	}

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	return q, nil
}
