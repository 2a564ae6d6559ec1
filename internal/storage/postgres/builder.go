package postgres

import (
	"fmt"
	"strings"

	"github.com/nirvachan/server/internal/domain/constituencies"
	"github.com/nirvachan/server/internal/domain/events"
)

// predicate is one typed (column, operator, value) filter clause.
type predicate struct {
	column string
	op     string
	value  any
}

// conditions accumulates WHERE clauses and their positional arguments,
// compiled once into a parameterized query.
type conditions struct {
	clauses []string
	args    []any
}

// add appends a clause, rewriting each "?" into the next positional
// placeholder in order.
func (c *conditions) add(expr string, values ...any) {
	for _, value := range values {
		c.args = append(c.args, value)
		expr = strings.Replace(expr, "?", fmt.Sprintf("$%d", len(c.args)), 1)
	}
	c.clauses = append(c.clauses, expr)
}

func (c *conditions) addPredicate(p predicate) {
	c.add(fmt.Sprintf("%s %s ?", p.column, p.op), p.value)
}

// where renders the accumulated clauses, or "" when there are none.
func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// next returns the placeholder index for an argument appended after the
// compiled conditions.
func (c *conditions) next(value any) string {
	c.args = append(c.args, value)
	return fmt.Sprintf("$%d", len(c.args))
}

// eventPredicates translates the optional equality and range filters into
// typed predicate triples. The free-text search clause is compound and is
// handled separately by eventConditions.
func eventPredicates(filters events.Filters) []predicate {
	var preds []predicate
	if filters.ConstituencyID != "" {
		preds = append(preds, predicate{column: "e.constituency_id", op: "=", value: filters.ConstituencyID})
	}
	if filters.PartyID != "" {
		preds = append(preds, predicate{column: "e.party_id", op: "=", value: filters.PartyID})
	}
	if filters.Type != "" {
		preds = append(preds, predicate{column: "e.event_type", op: "=", value: filters.Type})
	}
	if filters.Status != "" {
		preds = append(preds, predicate{column: "e.status", op: "=", value: filters.Status})
	}
	if filters.DateFrom != nil {
		preds = append(preds, predicate{column: "e.start_time", op: ">=", value: *filters.DateFrom})
	}
	if filters.DateTo != nil {
		preds = append(preds, predicate{column: "e.start_time", op: "<=", value: *filters.DateTo})
	}
	return preds
}

func eventConditions(filters events.Filters) *conditions {
	cond := &conditions{}
	for _, p := range eventPredicates(filters) {
		cond.addPredicate(p)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		cond.add("(e.title ILIKE ? OR e.description ILIKE ? OR v.name ILIKE ?)", pattern, pattern, pattern)
	}
	return cond
}

// constituencyConditions compiles the optional province and district
// filters. An absent filter adds no clause; an unfiltered listing returns
// every constituency.
func constituencyConditions(filters constituencies.Filters) *conditions {
	cond := &conditions{}
	if filters.Province != "" {
		cond.addPredicate(predicate{column: "province", op: "=", value: filters.Province})
	}
	if filters.District != "" {
		cond.addPredicate(predicate{column: "district", op: "=", value: filters.District})
	}
	return cond
}

// eventOrderBy maps the sort parameter onto an ORDER BY clause. The event
// ID tie-break follows the sort direction so that reversing the sort
// reverses the full ordering exactly.
func eventOrderBy(sort events.Sort) string {
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	column := "e.start_time"
	if sort.Key == events.SortKeyRSVPCount {
		column = "rsvp_count"
	}
	return fmt.Sprintf(" ORDER BY %s %s, e.id %s", column, direction, direction)
}
