package database

import "strings"

// Filter accumulates WHERE predicates declaratively instead of building SQL
// by string concatenation at call sites. Each predicate is a parameterized
// fragment plus its bind values.
type Filter struct {
	conds []string
	args  []any
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Where adds a predicate unconditionally.
func (f *Filter) Where(cond string, args ...any) *Filter {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
	return f
}

// WhereIf adds a predicate only when ok is true. Typical use: optional
// query-string filters.
func (f *Filter) WhereIf(ok bool, cond string, args ...any) *Filter {
	if ok {
		f.Where(cond, args...)
	}
	return f
}

// Clause renders " WHERE a AND b" or an empty string when no predicates
// were added.
func (f *Filter) Clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// Args returns the bind values in predicate order.
func (f *Filter) Args() []any {
	return f.args
}
