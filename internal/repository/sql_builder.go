package repository

import (
	"fmt"
	"strings"
)

// Predicate is a WHERE condition with the arguments its placeholders bind to.
// Placeholder $n always refers to Args[n-1].
type Predicate struct {
	Clause string
	Args   []any
}

// Where renders the clause with its WHERE keyword, or "" when no filter applies.
func (p Predicate) Where() string {
	if p.Clause == "" {
		return ""
	}
	return "WHERE " + p.Clause
}

// NextPlaceholder is the index the next bound argument will receive.
func (p Predicate) NextPlaceholder() int {
	return len(p.Args) + 1
}

// extend resumes accumulation after the predicate's own arguments, so later
// clauses such as LIMIT/OFFSET keep numbering consistent.
func (p Predicate) extend() *sqlBuilder {
	b := newSQLBuilder()
	b.args = append(b.args, p.Args...)
	return b
}

type sqlBuilder struct {
	args  []any
	where []string
}

func newSQLBuilder() *sqlBuilder {
	return &sqlBuilder{args: make([]any, 0)}
}

func (b *sqlBuilder) addArg(value any) int {
	b.args = append(b.args, value)
	return len(b.args)
}

func (b *sqlBuilder) placeholder(idx int) string {
	return fmt.Sprintf("$%d", idx)
}

// bind adds value as the next argument and returns its placeholder.
func (b *sqlBuilder) bind(value any) string {
	return b.placeholder(b.addArg(value))
}

func (b *sqlBuilder) and(clause string) {
	if clause == "" {
		return
	}
	b.where = append(b.where, clause)
}

func (b *sqlBuilder) predicate() Predicate {
	return Predicate{
		Clause: strings.Join(b.where, " AND "),
		Args:   append([]any{}, b.args...),
	}
}
