package postgresql

import (
	"fmt"
	"strings"
)

// queryBuilder implements QueryBuilder interface
type queryBuilder struct {
	selectCols  []string
	fromTable   string
	whereCond   []string
	whereArgs   []any
	orderByCols []string
	limitVal    *int
	lockClause  string
	argCounter  int
}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder() QueryBuilder {
	return &queryBuilder{
		selectCols:  make([]string, 0),
		whereCond:   make([]string, 0),
		whereArgs:   make([]any, 0),
		orderByCols: make([]string, 0),
	}
}

func (qb *queryBuilder) Select(columns ...string) QueryBuilder {
	qb.selectCols = append(qb.selectCols, columns...)
	return qb
}

func (qb *queryBuilder) From(table string) QueryBuilder {
	qb.fromTable = table
	return qb
}

// Where appends an AND condition. `?` placeholders are rewritten to
// PostgreSQL positional parameters in the order they are added.
func (qb *queryBuilder) Where(condition string, args ...any) QueryBuilder {
	for range args {
		qb.argCounter++
		condition = strings.Replace(condition, "?", fmt.Sprintf("$%d", qb.argCounter), 1)
	}
	qb.whereCond = append(qb.whereCond, condition)
	qb.whereArgs = append(qb.whereArgs, args...)
	return qb
}

func (qb *queryBuilder) OrderBy(column string, desc ...bool) QueryBuilder {
	order := "ASC"
	if len(desc) > 0 && desc[0] {
		order = "DESC"
	}
	qb.orderByCols = append(qb.orderByCols, fmt.Sprintf("%s %s", column, order))
	return qb
}

func (qb *queryBuilder) Limit(limit int) QueryBuilder {
	qb.limitVal = &limit
	return qb
}

// ForUpdate takes row-level exclusive locks on every selected row.
func (qb *queryBuilder) ForUpdate() QueryBuilder {
	qb.lockClause = "FOR UPDATE"
	return qb
}

func (qb *queryBuilder) Build() (string, []any) {
	var query strings.Builder

	query.WriteString("SELECT ")
	if len(qb.selectCols) == 0 {
		query.WriteString("*")
	} else {
		query.WriteString(strings.Join(qb.selectCols, ", "))
	}

	if qb.fromTable != "" {
		query.WriteString(" FROM ")
		query.WriteString(qb.fromTable)
	}

	if len(qb.whereCond) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(qb.whereCond, " AND "))
	}

	if len(qb.orderByCols) > 0 {
		query.WriteString(" ORDER BY ")
		query.WriteString(strings.Join(qb.orderByCols, ", "))
	}

	args := qb.whereArgs
	if qb.limitVal != nil {
		qb.argCounter++
		query.WriteString(fmt.Sprintf(" LIMIT $%d", qb.argCounter))
		args = append(args, *qb.limitVal)
	}

	if qb.lockClause != "" {
		query.WriteString(" ")
		query.WriteString(qb.lockClause)
	}

	return query.String(), args
}

func (qb *queryBuilder) Reset() QueryBuilder {
	*qb = queryBuilder{
		selectCols:  make([]string, 0),
		whereCond:   make([]string, 0),
		whereArgs:   make([]any, 0),
		orderByCols: make([]string, 0),
	}
	return qb
}
