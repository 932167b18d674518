package orgscope

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Operator is the comparison performed by a Condition
type Operator string

const (
	// OpUnset matches when the field holds no record
	OpUnset Operator = "unset"
	// OpIn matches when the field references one of the given ids
	OpIn Operator = "in"
)

// FieldGetter returns the ids a record currently references through field.
// An empty slice means the field is unset.
type FieldGetter func(field string) []uuid.UUID

// Domain is a filter predicate over records
type Domain interface {
	// Match evaluates the predicate against one record
	Match(get FieldGetter) bool
	// Fields lists the fields the predicate reads
	Fields() []string
	String() string
}

// Condition is a single field comparison
type Condition struct {
	Field    string
	Operator Operator
	IDs      []uuid.UUID
}

// Match implements Domain
func (c Condition) Match(get FieldGetter) bool {
	values := get(c.Field)
	switch c.Operator {
	case OpUnset:
		return len(values) == 0
	case OpIn:
		for _, v := range values {
			if slices.Contains(c.IDs, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Fields implements Domain
func (c Condition) Fields() []string {
	return []string{c.Field}
}

func (c Condition) String() string {
	if c.Operator == OpUnset {
		return "(" + c.Field + " unset)"
	}
	ids := make([]string, len(c.IDs))
	for i, id := range c.IDs {
		ids[i] = id.String()
	}
	return "(" + c.Field + " in [" + strings.Join(ids, ", ") + "])"
}

// Or is an explicit disjunction
type Or []Domain

// Match implements Domain
func (o Or) Match(get FieldGetter) bool {
	for _, d := range o {
		if d.Match(get) {
			return true
		}
	}
	return false
}

// Fields implements Domain
func (o Or) Fields() []string {
	return collectFields(o)
}

func (o Or) String() string {
	return joinDomains(o, " | ")
}

// And is an explicit conjunction
type And []Domain

// Match implements Domain
func (a And) Match(get FieldGetter) bool {
	for _, d := range a {
		if !d.Match(get) {
			return false
		}
	}
	return true
}

// Fields implements Domain
func (a And) Fields() []string {
	return collectFields(a)
}

func (a And) String() string {
	return joinDomains(a, " & ")
}

func collectFields(children []Domain) []string {
	var fields []string
	for _, d := range children {
		for _, f := range d.Fields() {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

func joinDomains(children []Domain, sep string) string {
	parts := make([]string, len(children))
	for i, d := range children {
		parts[i] = d.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Unset builds "field holds no record"
func Unset(field string) Condition {
	return Condition{Field: field, Operator: OpUnset}
}

// In builds "field references one of ids"
func In(field string, ids ...uuid.UUID) Condition {
	return Condition{Field: field, Operator: OpIn, IDs: append([]uuid.UUID(nil), ids...)}
}

// ScopeDomain builds the compatibility predicate for records referenced from
// a record whose operating units are scope: the target's company must be
// unset, or be one of the scope owner ids.
func ScopeDomain(scope ScopeInput) Domain {
	ids := ToScopeIDs(scope)
	if len(ids) == 0 {
		return Unset(FieldCompany)
	}
	return Or{
		Unset(FieldCompany),
		In(FieldCompany, ids...),
	}
}

// CompanyDomain builds the usual company-compatibility predicate: the
// target's company is unset or among companyIDs. Hosts pass the active
// company together with its parents.
func CompanyDomain(companyIDs ...uuid.UUID) Domain {
	if len(companyIDs) == 0 {
		return Unset(FieldCompany)
	}
	return Or{
		Unset(FieldCompany),
		In(FieldCompany, companyIDs...),
	}
}
