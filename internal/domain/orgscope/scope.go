package orgscope

import (
	"context"

	"github.com/google/uuid"
)

// ScopeInputKind tags the shape held by a ScopeInput
type ScopeInputKind int

const (
	ScopeInputIdentifiers ScopeInputKind = iota
	ScopeInputRecord
	ScopeInputRecordSet
)

// ScopeInput is the operating-unit scope handed to the domain builder: a
// plain id list, a single record, or a record set.
type ScopeInput struct {
	kind   ScopeInputKind
	ids    []uuid.UUID
	record Ref
	set    RecordSet
}

// Identifiers wraps a list of scope owner ids
func Identifiers(ids ...uuid.UUID) ScopeInput {
	return ScopeInput{kind: ScopeInputIdentifiers, ids: ids}
}

// SingleRecord wraps one scope owner record
func SingleRecord(ref Ref) ScopeInput {
	return ScopeInput{kind: ScopeInputRecord, record: ref}
}

// FromRecordSet wraps a set of scope owner records
func FromRecordSet(rs RecordSet) ScopeInput {
	return ScopeInput{kind: ScopeInputRecordSet, set: rs}
}

// ToScopeIDs normalizes a scope input to its id list. Identifier lists pass
// through unchanged; a record set collapses to its ids; a single record is
// wrapped into a one-element list, or none when it is empty.
func ToScopeIDs(s ScopeInput) []uuid.UUID {
	switch s.kind {
	case ScopeInputIdentifiers:
		return s.ids
	case ScopeInputRecordSet:
		return s.set.IDs
	case ScopeInputRecord:
		if s.record.IsZero() {
			return nil
		}
		return []uuid.UUID{s.record.ID}
	default:
		panic("orgscope: unknown scope input kind")
	}
}

// ResolveScope returns the operating units rec belongs to. An operating unit
// is its own scope; other records use operating_unit_ids when the model has
// it and operating_unit_id otherwise. Models with neither resolve to an empty
// scope. Pending values take precedence over stored ones.
func ResolveScope(ctx context.Context, env Env, model *Model, rec Ref, pending Values) (ScopeInput, error) {
	switch model.ScopeCapability() {
	case ScopeSelf:
		return SingleRecord(rec), nil
	case ScopeMany:
		rs, err := relationOf(ctx, env, model, rec, FieldOperatingUnits, pending)
		if err != nil {
			return ScopeInput{}, err
		}
		return FromRecordSet(rs), nil
	case ScopeSingle:
		rs, err := relationOf(ctx, env, model, rec, FieldOperatingUnit, pending)
		if err != nil {
			return ScopeInput{}, err
		}
		switch rs.Len() {
		case 0:
			return SingleRecord(Ref{Model: ModelOperatingUnit}), nil
		case 1:
			return SingleRecord(rs.At(0)), nil
		default:
			return FromRecordSet(rs), nil
		}
	default:
		return FromRecordSet(RecordSet{Model: ModelOperatingUnit}), nil
	}
}

// relationOf reads a relational field of rec, preferring the pending value
func relationOf(ctx context.Context, env Env, model *Model, rec Ref, name string, pending Values) (RecordSet, error) {
	f, ok := model.Field(name)
	if !ok || !f.Relational {
		return RecordSet{}, nil
	}
	if v, ok := pending[name]; ok {
		return RelationValue(f.Comodel, v)
	}
	rs, err := env.ReadRelation(ctx, rec, name)
	if err != nil {
		return RecordSet{}, err
	}
	rs.Model = f.Comodel
	return rs, nil
}
