package repository

import (
	"fmt"
	"strings"

	"github.com/rpattn/influencer-api/internal/domain"
)

type matchKind int

const (
	matchEquals matchKind = iota
	matchContains
)

type filterTarget struct {
	match   matchKind
	columns []string
}

// PredicateBuilder turns a FilterSpec into a parameterized predicate.
type PredicateBuilder struct {
	targets map[domain.FilterName]filterTarget
}

// NewPredicateBuilder maps every filter onto the dataset's columns.
func NewPredicateBuilder(dataset Dataset) *PredicateBuilder {
	dataset = dataset.withDefaults()
	return &PredicateBuilder{
		targets: map[domain.FilterName]filterTarget{
			domain.FilterID:                 {match: matchEquals, columns: []string{domain.ColumnID}},
			domain.FilterUsername:           {match: matchEquals, columns: []string{domain.ColumnUsername}},
			domain.FilterCategory:           {match: matchEquals, columns: []string{columnCategory}},
			domain.FilterLocation:           {match: matchEquals, columns: []string{columnLocation}},
			domain.FilterCategoriesCombined: {match: matchContains, columns: []string{columnCategoriesCombined}},
			domain.FilterLocationsCombined:  {match: matchContains, columns: []string{columnLocationsCombined}},
			domain.FilterSearch:             {match: matchContains, columns: append([]string(nil), dataset.SearchColumns...)},
		},
	}
}

// BuildPredicate builds a predicate against the default dataset.
func BuildPredicate(spec domain.FilterSpec) Predicate {
	return NewPredicateBuilder(DefaultDataset()).Build(spec)
}

// Build emits one clause per present filter, joined with AND. Every value is
// bound as an argument; substring values are wrapped in wildcards first.
func (b *PredicateBuilder) Build(spec domain.FilterSpec) Predicate {
	acc := newSQLBuilder()
	for _, name := range spec.Active() {
		target, ok := b.targets[name]
		if !ok || len(target.columns) == 0 {
			continue
		}
		value, _ := spec.Get(name)
		acc.and(target.clause(acc, value))
	}
	return acc.predicate()
}

func (t filterTarget) clause(acc *sqlBuilder, value string) string {
	operator := "="
	arg := value
	if t.match == matchContains {
		operator = "ILIKE"
		arg = containsPattern(value)
	}

	exprs := make([]string, 0, len(t.columns))
	for _, column := range t.columns {
		exprs = append(exprs, fmt.Sprintf("%s %s %s", quote(column), operator, acc.bind(arg)))
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return "(" + strings.Join(exprs, " OR ") + ")"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern escapes LIKE metacharacters so the value matches literally.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
