package orgscope

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// memEnv is an in-memory host used by the package tests
type memEnv struct {
	reg     *Registry
	values  map[Ref]map[string][]uuid.UUID
	names   map[uuid.UUID]string
	parents map[uuid.UUID]uuid.UUID
	current Ref

	reads    int
	filters  int
	writes   []memWrite
	writeErr error
}

type memWrite struct {
	rs   RecordSet
	vals Values
}

func newMemEnv(reg *Registry) *memEnv {
	return &memEnv{
		reg:     reg,
		values:  make(map[Ref]map[string][]uuid.UUID),
		names:   make(map[uuid.UUID]string),
		parents: make(map[uuid.UUID]uuid.UUID),
	}
}

// add creates a record with a display name
func (e *memEnv) add(model, name string) Ref {
	ref := Ref{Model: model, ID: uuid.New()}
	e.names[ref.ID] = name
	e.values[ref] = make(map[string][]uuid.UUID)
	return ref
}

func (e *memEnv) set(rec Ref, field string, targets ...Ref) {
	ids := make([]uuid.UUID, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.ID)
	}
	e.values[rec][field] = ids
}

func (e *memEnv) Registry() *Registry { return e.reg }

func (e *memEnv) ReadRelation(_ context.Context, rec Ref, field string) (RecordSet, error) {
	e.reads++
	m, ok := e.reg.Model(rec.Model)
	if !ok {
		return RecordSet{}, errors.New("unknown model")
	}
	f, ok := m.Field(field)
	if !ok {
		return RecordSet{}, errors.New("unknown field")
	}
	return NewRecordSet(f.Comodel, e.values[rec][field]...), nil
}

func (e *memEnv) Filter(_ context.Context, rs RecordSet, d Domain) (RecordSet, error) {
	e.filters++
	out := RecordSet{Model: rs.Model}
	for _, id := range rs.IDs {
		rec := Ref{Model: rs.Model, ID: id}
		get := func(field string) []uuid.UUID { return e.values[rec][field] }
		if d.Match(get) {
			out.IDs = append(out.IDs, id)
		}
	}
	return out, nil
}

func (e *memEnv) CompanyDomain(_ context.Context, _ string, company Ref) (Domain, error) {
	if company.IsZero() {
		return CompanyDomain(), nil
	}
	ids := []uuid.UUID{company.ID}
	for id := company.ID; ; {
		parent, ok := e.parents[id]
		if !ok {
			break
		}
		ids = append(ids, parent)
		id = parent
	}
	return CompanyDomain(ids...), nil
}

func (e *memEnv) CurrentCompany(context.Context) (Ref, error) {
	return e.current, nil
}

func (e *memEnv) DisplayNames(_ context.Context, rs RecordSet) ([]string, error) {
	names := make([]string, len(rs.IDs))
	for i, id := range rs.IDs {
		names[i] = e.names[id]
	}
	return names, nil
}

func (e *memEnv) Write(_ context.Context, rs RecordSet, vals Values) error {
	if e.writeErr != nil {
		return e.writeErr
	}
	e.writes = append(e.writes, memWrite{rs: rs, vals: vals})
	m, _ := e.reg.Model(rs.Model)
	for _, id := range rs.IDs {
		rec := Ref{Model: rs.Model, ID: id}
		for name, v := range vals {
			f, ok := m.Field(name)
			if !ok || !f.Relational {
				continue
			}
			target, err := RelationValue(f.Comodel, v)
			if err != nil {
				return err
			}
			e.values[rec][name] = target.IDs
		}
	}
	return nil
}

// testRegistry models a small ERP:
//
//	res.company      parent_id, partner_id (checked)
//	operating.unit   company_id, partner_id (checked)
//	res.partner      company_id, operating_unit_id
//	sale.order       partner_id (checked), property_partner_id (checked, company dependent),
//	                 tag_partner_ids (checked many2many), operating_unit_id, company_id, auto-check on
//	res.users        operating_unit_ids, partner_id (checked), auto-check on
//	hr.branch        company_id (self reference, checked), operating_unit_id
func testRegistry() *Registry {
	order := NewModel("sale.order", "sale_order",
		&Field{Name: "name", Description: "Order Reference", Type: FieldTypeChar},
		&Field{Name: "partner_id", Description: "Customer", Type: FieldTypeMany2one, Comodel: "res.partner", CheckOperatingUnit: true},
		&Field{Name: "property_partner_id", Description: "Invoicing Partner", Type: FieldTypeMany2one, Comodel: "res.partner", CheckOperatingUnit: true, CompanyDependent: true},
		&Field{Name: "tag_partner_ids", Description: "Followers", Type: FieldTypeMany2many, Comodel: "res.partner", CheckOperatingUnit: true},
		&Field{Name: "company_ref_id", Description: "Company Ref", Type: FieldTypeMany2one, Comodel: ModelCompany, CheckOperatingUnit: true},
		&Field{Name: FieldOperatingUnit, Description: "Operating Unit", Type: FieldTypeMany2one, Comodel: ModelOperatingUnit},
		&Field{Name: FieldCompany, Description: "Company", Type: FieldTypeMany2one, Comodel: ModelCompany},
	)
	order.CheckAuto = true

	users := NewModel("res.users", "res_users",
		&Field{Name: "name", Description: "Name", Type: FieldTypeChar},
		&Field{Name: FieldCompany, Description: "Company", Type: FieldTypeMany2one, Comodel: ModelCompany},
		&Field{Name: FieldOperatingUnits, Description: "Operating Units", Type: FieldTypeMany2many, Comodel: ModelOperatingUnit},
		&Field{Name: "partner_id", Description: "Related Partner", Type: FieldTypeMany2one, Comodel: "res.partner", CheckOperatingUnit: true},
	)
	users.CheckAuto = true

	reg := NewRegistry()
	reg.MustRegister(
		NewModel(ModelCompany, "res_company",
			&Field{Name: "name", Description: "Company Name", Type: FieldTypeChar},
			&Field{Name: "parent_id", Description: "Parent Company", Type: FieldTypeMany2one, Comodel: ModelCompany},
			&Field{Name: "partner_id", Description: "Partner", Type: FieldTypeMany2one, Comodel: "res.partner", CheckOperatingUnit: true},
		),
		NewModel(ModelOperatingUnit, "operating_unit",
			&Field{Name: "name", Description: "Name", Type: FieldTypeChar},
			&Field{Name: FieldCompany, Description: "Company", Type: FieldTypeMany2one, Comodel: ModelCompany},
			&Field{Name: "partner_id", Description: "Partner", Type: FieldTypeMany2one, Comodel: "res.partner", CheckOperatingUnit: true},
		),
		NewModel("res.partner", "res_partner",
			&Field{Name: "name", Description: "Name", Type: FieldTypeChar},
			&Field{Name: FieldCompany, Description: "Company", Type: FieldTypeMany2one, Comodel: ModelCompany},
			&Field{Name: FieldOperatingUnit, Description: "Operating Unit", Type: FieldTypeMany2one, Comodel: ModelOperatingUnit},
		),
		order,
		users,
		NewModel("hr.branch", "hr_branch",
			&Field{Name: "name", Description: "Name", Type: FieldTypeChar},
			&Field{Name: FieldCompany, Description: "Company", Type: FieldTypeMany2one, Comodel: "hr.branch", CheckOperatingUnit: true},
			&Field{Name: FieldOperatingUnit, Description: "Operating Unit", Type: FieldTypeMany2one, Comodel: ModelOperatingUnit},
		),
	)
	if err := reg.Validate(); err != nil {
		panic(err)
	}
	return reg
}

// fixture is the standard data set: company Acme with operating units OU1
// and OU2, sale order a1 in OU1 and partner b1.
type fixture struct {
	env  *memEnv
	acme Ref
	ou1  Ref
	ou2  Ref
	a1   Ref
	b1   Ref
}

func newFixture() *fixture {
	env := newMemEnv(testRegistry())
	fx := &fixture{env: env}
	fx.acme = env.add(ModelCompany, "Acme")
	fx.ou1 = env.add(ModelOperatingUnit, "OU1")
	fx.ou2 = env.add(ModelOperatingUnit, "OU2")
	env.set(fx.ou1, FieldCompany, fx.acme)
	env.set(fx.ou2, FieldCompany, fx.acme)

	fx.a1 = env.add("sale.order", "A1")
	env.set(fx.a1, FieldOperatingUnit, fx.ou1)
	env.set(fx.a1, FieldCompany, fx.acme)

	fx.b1 = env.add("res.partner", "B1")
	return fx
}
