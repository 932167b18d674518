// Package orgscope enforces operating-unit consistency between records and
// the records they reference through relational fields.
//
// A write onto a record set is intercepted by a Guard. When one of the written
// fields is the operating unit itself, or a relational field flagged with the
// check_operating_unit marker, the Checker resolves each record's scope,
// builds a compatibility Domain for every referenced record, and reports all
// violations at once as a ConsistencyError before the write is delegated.
//
// Storage, field metadata and translations are supplied by the host through
// the Env and Writer interfaces.
package orgscope

import (
	"fmt"
	"slices"

	"github.com/erp/operatingunit/internal/domain/shared"
	"github.com/google/uuid"
)

// Well-known model and field names of the scoping scheme
const (
	ModelOperatingUnit = "operating.unit"
	ModelCompany       = "res.company"

	FieldOperatingUnit  = "operating_unit_id"
	FieldOperatingUnits = "operating_unit_ids"
	FieldCompany        = "company_id"
)

// Ref identifies a single record
type Ref struct {
	Model string
	ID    uuid.UUID
}

// IsZero reports whether the reference points at nothing
func (r Ref) IsZero() bool {
	return r.ID == uuid.Nil
}

// Set returns the reference as a record set (empty when r is zero)
func (r Ref) Set() RecordSet {
	if r.IsZero() {
		return RecordSet{Model: r.Model}
	}
	return RecordSet{Model: r.Model, IDs: []uuid.UUID{r.ID}}
}

// RecordSet is an ordered, duplicate-free set of records of one model
type RecordSet struct {
	Model string
	IDs   []uuid.UUID
}

// NewRecordSet builds a record set, dropping nil and duplicate ids while
// keeping the first-seen order.
func NewRecordSet(model string, ids ...uuid.UUID) RecordSet {
	rs := RecordSet{Model: model}
	for _, id := range ids {
		if id == uuid.Nil || slices.Contains(rs.IDs, id) {
			continue
		}
		rs.IDs = append(rs.IDs, id)
	}
	return rs
}

// Len returns the number of records in the set
func (rs RecordSet) Len() int {
	return len(rs.IDs)
}

// IsEmpty reports whether the set holds no record
func (rs RecordSet) IsEmpty() bool {
	return len(rs.IDs) == 0
}

// At returns the i-th record of the set
func (rs RecordSet) At(i int) Ref {
	return Ref{Model: rs.Model, ID: rs.IDs[i]}
}

// Records returns every record of the set in order
func (rs RecordSet) Records() []Ref {
	refs := make([]Ref, len(rs.IDs))
	for i, id := range rs.IDs {
		refs[i] = Ref{Model: rs.Model, ID: id}
	}
	return refs
}

// Contains reports whether id is a member of the set
func (rs RecordSet) Contains(id uuid.UUID) bool {
	return slices.Contains(rs.IDs, id)
}

// Equal reports whether both sets hold the same model and the same ids,
// regardless of order.
func (rs RecordSet) Equal(other RecordSet) bool {
	if rs.Model != other.Model || len(rs.IDs) != len(other.IDs) {
		return false
	}
	for _, id := range rs.IDs {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Subtract returns the members of rs that are not in other, in rs order
func (rs RecordSet) Subtract(other RecordSet) RecordSet {
	out := RecordSet{Model: rs.Model}
	for _, id := range rs.IDs {
		if !other.Contains(id) {
			out.IDs = append(out.IDs, id)
		}
	}
	return out
}

// Values is a pending batch write of field name to new value
type Values map[string]any

// RelationValue converts a pending relational value into a record set of
// comodel. Accepted shapes are nil, uuid.UUID, *uuid.UUID, uuid.NullUUID,
// []uuid.UUID, string, []string, Ref and RecordSet.
func RelationValue(comodel string, v any) (RecordSet, error) {
	switch val := v.(type) {
	case nil:
		return RecordSet{Model: comodel}, nil
	case uuid.UUID:
		return NewRecordSet(comodel, val), nil
	case *uuid.UUID:
		if val == nil {
			return RecordSet{Model: comodel}, nil
		}
		return NewRecordSet(comodel, *val), nil
	case uuid.NullUUID:
		if !val.Valid {
			return RecordSet{Model: comodel}, nil
		}
		return NewRecordSet(comodel, val.UUID), nil
	case []uuid.UUID:
		return NewRecordSet(comodel, val...), nil
	case string:
		if val == "" {
			return RecordSet{Model: comodel}, nil
		}
		id, err := uuid.Parse(val)
		if err != nil {
			return RecordSet{}, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Invalid record id %q for model %q", val, comodel))
		}
		return NewRecordSet(comodel, id), nil
	case []string:
		ids := make([]uuid.UUID, 0, len(val))
		for _, raw := range val {
			id, err := uuid.Parse(raw)
			if err != nil {
				return RecordSet{}, shared.NewDomainError(shared.CodeInvalidInput,
					fmt.Sprintf("Invalid record id %q for model %q", raw, comodel))
			}
			ids = append(ids, id)
		}
		return NewRecordSet(comodel, ids...), nil
	case Ref:
		return NewRecordSet(comodel, val.ID), nil
	case RecordSet:
		return NewRecordSet(comodel, val.IDs...), nil
	default:
		return RecordSet{}, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Unsupported value of type %T for a relation to %q", v, comodel))
	}
}
