package persistence

import (
	"fmt"
	"strings"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"gorm.io/gorm/clause"
)

const (
	sqlTrue  = "1 = 1"
	sqlFalse = "1 = 0"
)

// RenderDomain translates d into a WHERE fragment over m's table. Columns
// and tables are passed as clause values so the dialect quotes them.
// Conditions on fields m does not have behave as if the field were unset.
func RenderDomain(reg *orgscope.Registry, m *orgscope.Model, d orgscope.Domain) (string, []any, error) {
	switch n := d.(type) {
	case orgscope.Condition:
		return renderCondition(reg, m, n)
	case orgscope.Or:
		return renderJunction(reg, m, n, " OR ", sqlFalse)
	case orgscope.And:
		return renderJunction(reg, m, n, " AND ", sqlTrue)
	default:
		return "", nil, fmt.Errorf("unsupported domain node %T", d)
	}
}

func renderJunction(reg *orgscope.Registry, m *orgscope.Model, children []orgscope.Domain, sep, empty string) (string, []any, error) {
	if len(children) == 0 {
		return empty, nil, nil
	}
	parts := make([]string, 0, len(children))
	var vars []any
	for _, child := range children {
		sql, childVars, err := RenderDomain(reg, m, child)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		vars = append(vars, childVars...)
	}
	return "(" + strings.Join(parts, sep) + ")", vars, nil
}

func renderCondition(reg *orgscope.Registry, m *orgscope.Model, c orgscope.Condition) (string, []any, error) {
	f, ok := m.Field(c.Field)
	if !ok {
		if c.Operator == orgscope.OpUnset {
			return sqlTrue, nil, nil
		}
		return sqlFalse, nil, nil
	}
	if c.Operator == orgscope.OpIn && len(c.IDs) == 0 {
		return sqlFalse, nil, nil
	}
	if c.Operator != orgscope.OpUnset && c.Operator != orgscope.OpIn {
		return "", nil, fmt.Errorf("unsupported operator %q", c.Operator)
	}

	self := clause.Column{Table: m.Table, Name: "id"}

	switch f.Type {
	case orgscope.FieldTypeMany2one:
		col := clause.Column{Table: m.Table, Name: f.Name}
		if c.Operator == orgscope.OpUnset {
			return "? IS NULL", []any{col}, nil
		}
		return "? IN ?", []any{col, c.IDs}, nil

	case orgscope.FieldTypeMany2many:
		rel := clause.Table{Name: f.Relation}
		owner := clause.Column{Table: f.Relation, Name: f.Column1}
		if c.Operator == orgscope.OpUnset {
			return "NOT EXISTS (SELECT 1 FROM ? WHERE ? = ?)", []any{rel, owner, self}, nil
		}
		target := clause.Column{Table: f.Relation, Name: f.Column2}
		return "EXISTS (SELECT 1 FROM ? WHERE ? = ? AND ? IN ?)", []any{rel, owner, self, target, c.IDs}, nil

	case orgscope.FieldTypeOne2many:
		comodel, ok := reg.Model(f.Comodel)
		if !ok {
			return "", nil, fmt.Errorf("unknown comodel %q of %s.%s", f.Comodel, m.Name, f.Name)
		}
		tbl := clause.Table{Name: comodel.Table}
		inverse := clause.Column{Table: comodel.Table, Name: f.InverseName}
		if c.Operator == orgscope.OpUnset {
			return "NOT EXISTS (SELECT 1 FROM ? WHERE ? = ?)", []any{tbl, inverse, self}, nil
		}
		target := clause.Column{Table: comodel.Table, Name: "id"}
		return "EXISTS (SELECT 1 FROM ? WHERE ? = ? AND ? IN ?)", []any{tbl, inverse, self, target, c.IDs}, nil

	default:
		return "", nil, fmt.Errorf("field %s.%s of type %s cannot be compared with records", m.Name, f.Name, f.Type)
	}
}
