// Package repository defines the option-based query vocabulary shared by
// all persistence stores. Domain packages compose typed options from the
// generic ones here; the database layer translates a built Query into SQL.
package repository

import "fmt"

// Option mutates a Query under construction.
type Option func(*Query)

// Query holds filters, ordering, and pagination for store lookups.
type Query struct {
	filters []Filter
	orders  []Order
	limit   int
	offset  int
}

// Build runs the options over an empty Query.
func Build(options ...Option) Query {
	var q Query
	for _, opt := range options {
		opt(&q)
	}
	return q
}

// Filters returns the WHERE fragments in the order they were added.
func (q Query) Filters() []Filter { return q.filters }

// Orders returns the sort specifications in the order they were added.
func (q Query) Orders() []Order { return q.orders }

// Limit returns the row cap, 0 meaning unbounded.
func (q Query) Limit() int { return q.limit }

// Offset returns the number of rows to skip.
func (q Query) Offset() int { return q.offset }

// Filter is a SQL fragment with placeholder arguments. Equality and IN
// conditions are just pre-built filters.
type Filter struct {
	clause string
	args   []any
}

// Clause returns the SQL fragment.
func (f Filter) Clause() string { return f.clause }

// Args returns the placeholder arguments.
func (f Filter) Args() []any { return f.args }

// Order is a single sort key.
type Order struct {
	column string
	desc   bool
}

// Column returns the sort column.
func (o Order) Column() string { return o.column }

// Descending reports whether the sort is descending.
func (o Order) Descending() bool { return o.desc }

// WithCondition filters on column = value.
func WithCondition(column string, value any) Option {
	return WithWhere(fmt.Sprintf("%s = ?", column), value)
}

// WithConditionIn filters on column IN (values). values must be a slice.
func WithConditionIn(column string, values any) Option {
	return WithWhere(fmt.Sprintf("%s IN ?", column), values)
}

// WithWhere adds a raw SQL condition with placeholder arguments.
func WithWhere(clause string, args ...any) Option {
	return func(q *Query) {
		q.filters = append(q.filters, Filter{clause: clause, args: args})
	}
}

// WithLimit caps the number of results. Zero or negative means no cap.
func WithLimit(n int) Option {
	return func(q *Query) {
		q.limit = n
	}
}

// WithOffset skips the first n results.
func WithOffset(n int) Option {
	return func(q *Query) {
		q.offset = n
	}
}

// WithOrderAsc sorts ascending on a column. Repeated orderings stack.
func WithOrderAsc(column string) Option {
	return func(q *Query) {
		q.orders = append(q.orders, Order{column: column})
	}
}

// WithOrderDesc sorts descending on a column.
func WithOrderDesc(column string) Option {
	return func(q *Query) {
		q.orders = append(q.orders, Order{column: column, desc: true})
	}
}
