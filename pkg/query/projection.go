// Package query builds parameterized PostgreSQL statements from a mapping of
// view property names to table columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified columns (alias.column)
// for one table and its joins.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	byName  map[string]string
	list    []string
	joins   []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
		byName:  make(map[string]string),
	}
}

// Project maps column of the base table to viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	return p.ProjectJoined(p.alias, column, viewName)
}

// Join appends a join clause, e.g. "JOIN public.x s ON s.id = t.x_id".
func (p *ProjectionMap) Join(clause string) *ProjectionMap {
	p.joins = append(p.joins, clause)
	return p
}

// ProjectJoined maps a column of a joined table, qualified by its alias.
func (p *ProjectionMap) ProjectJoined(alias, column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", alias, column)
	p.columns[viewName] = qualified
	p.byName[strings.ToLower(viewName)] = qualified
	p.byName[strings.ToLower(column)] = qualified
	p.list = append(p.list, qualified)
	return p
}

// Table returns "schema.table alias".
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// From returns Table followed by any join clauses.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.Table()
	}
	return p.Table() + " " + strings.Join(p.joins, " ")
}

// Column returns the qualified column for viewName, or viewName itself when
// unmapped. Only code-supplied names belong here; use Lookup for client input.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Lookup resolves a view property or column name, case-insensitively.
func (p *ProjectionMap) Lookup(name string) (string, bool) {
	col, ok := p.byName[strings.ToLower(name)]
	return col, ok
}

// Columns returns the projected columns as a select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.list, ", ")
}
