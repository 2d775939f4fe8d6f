// Package filter parses list query parameters (field filters, search and
// ordering) against a per-resource whitelist and applies them to a gorm query.
package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Kind int

const (
	String Kind = iota
	Int
	Bool
	Date
)

type Lookup int

const (
	Exact Lookup = iota
	IContains
)

const (
	SearchParam   = "search"
	OrderingParam = "ordering"
	DateLayout    = "2006-01-02"
)

// Field maps a query parameter onto a column.
type Field struct {
	Param  string
	Column string
	Kind   Kind
	Lookup Lookup
}

type Set struct {
	fields       []Field
	searchCols   []string
	ordering     map[string]string
	defaultOrder []string
}

func NewSet(fields ...Field) *Set {
	return &Set{fields: fields, ordering: map[string]string{}}
}

// Search enables ?search= as a case-insensitive substring match over cols.
func (s *Set) Search(cols ...string) *Set {
	s.searchCols = cols
	return s
}

// Orderable whitelists ?ordering= names and the columns they sort by.
func (s *Set) Orderable(names map[string]string) *Set {
	for k, v := range names {
		s.ordering[k] = v
	}
	return s
}

// DefaultOrder is used when ?ordering= is absent, e.g. "created_at DESC".
func (s *Set) DefaultOrder(clauses ...string) *Set {
	s.defaultOrder = clauses
	return s
}

type condition struct {
	sql  string
	args []any
}

// Query is a parsed, validated set of list parameters.
type Query struct {
	conds []condition
	order []string
}

// Parse validates values. On failure it returns a param -> message map.
func (s *Set) Parse(values url.Values) (*Query, map[string]string) {
	q := &Query{}
	errs := map[string]string{}

	for _, f := range s.fields {
		raw, ok := values[f.Param]
		if !ok || len(raw) == 0 || raw[len(raw)-1] == "" {
			continue
		}
		v := raw[len(raw)-1]
		arg, err := convert(f.Kind, v)
		if err != "" {
			errs[f.Param] = err
			continue
		}
		if f.Lookup == IContains {
			q.conds = append(q.conds, condition{sql: "LOWER(" + f.Column + ") LIKE ? ESCAPE '\\'", args: []any{likePattern(v)}})
			continue
		}
		q.conds = append(q.conds, condition{sql: f.Column + " = ?", args: []any{arg}})
	}

	if term := strings.TrimSpace(values.Get(SearchParam)); term != "" && len(s.searchCols) > 0 {
		parts := make([]string, 0, len(s.searchCols))
		args := make([]any, 0, len(s.searchCols))
		pattern := likePattern(term)
		for _, col := range s.searchCols {
			parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		q.conds = append(q.conds, condition{sql: "(" + strings.Join(parts, " OR ") + ")", args: args})
	}

	if raw := strings.TrimSpace(values.Get(OrderingParam)); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			desc := strings.HasPrefix(name, "-")
			col, ok := s.ordering[strings.TrimPrefix(name, "-")]
			if !ok {
				continue
			}
			if desc {
				q.order = append(q.order, col+" DESC")
			} else {
				q.order = append(q.order, col+" ASC")
			}
		}
	}
	if len(q.order) == 0 {
		q.order = append(q.order, s.defaultOrder...)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return q, nil
}

// Where adds a condition that is not driven by the query string.
func (q *Query) Where(sql string, args ...any) *Query {
	q.conds = append(q.conds, condition{sql: sql, args: args})
	return q
}

// Scope applies conditions only; used for counting.
func (q *Query) Scope(db *gorm.DB) *gorm.DB {
	if q == nil {
		return db
	}
	for _, c := range q.conds {
		db = db.Where(c.sql, c.args...)
	}
	return db
}

// Ordered applies ordering on top of Scope.
func (q *Query) Ordered(db *gorm.DB) *gorm.DB {
	db = q.Scope(db)
	if q == nil {
		return db
	}
	for _, o := range q.order {
		db = db.Order(o)
	}
	return db
}

func convert(kind Kind, v string) (any, string) {
	switch kind {
	case Int:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, "Enter a whole number."
		}
		return n, ""
	case Bool:
		switch strings.ToLower(v) {
		case "true", "1":
			return true, ""
		case "false", "0":
			return false, ""
		}
		return nil, "Select a valid choice. Use true or false."
	case Date:
		d, err := time.ParseInLocation(DateLayout, v, time.UTC)
		if err != nil {
			return nil, "Enter a valid date (YYYY-MM-DD)."
		}
		return d, ""
	default:
		return v, ""
	}
}

func likePattern(v string) string {
	v = strings.ToLower(v)
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "%", `\%`)
	v = strings.ReplaceAll(v, "_", `\_`)
	return "%" + v + "%"
}
