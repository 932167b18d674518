package orgscope

import (
	"context"
	"fmt"
	"slices"

	"github.com/erp/operatingunit/internal/domain/shared"
)

// Checker is the consistency evaluator. It holds no per-pass state and is
// safe to share.
type Checker struct {
	reporter *Reporter
}

// CheckerOption configures a Checker
type CheckerOption func(*Checker)

// WithPrinter renders reports through printer
func WithPrinter(printer PrinterFunc) CheckerOption {
	return func(c *Checker) {
		c.reporter = NewReporter(printer)
	}
}

// NewChecker creates a Checker
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{reporter: NewReporter(nil)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check validates the stored values of rs. With no field names, or when
// operating_unit_id is among them, every field of the model is considered.
// All violations are collected before a single ConsistencyError is returned.
func (c *Checker) Check(ctx context.Context, env Env, rs RecordSet, fieldNames ...string) error {
	return c.check(ctx, env, rs, fieldNames, nil)
}

// CheckedFields splits the applicable fields into regular and
// company-dependent ones. Only relational fields carrying the
// check_operating_unit marker whose comodel exposes an operating unit apply.
func (c *Checker) CheckedFields(reg *Registry, model *Model, fieldNames []string) (regular, property []*Field, err error) {
	if len(fieldNames) == 0 || slices.Contains(fieldNames, FieldOperatingUnit) {
		fieldNames = model.FieldNames()
	}
	for _, name := range fieldNames {
		f, ok := model.Field(name)
		if !ok {
			return nil, nil, &InvalidFieldError{Model: model.Name, Field: name}
		}
		if !f.Checked() {
			continue
		}
		comodel, ok := reg.Model(f.Comodel)
		if !ok || !comodel.ExposesScope() {
			continue
		}
		if f.CompanyDependent {
			property = append(property, f)
		} else {
			regular = append(regular, f)
		}
	}
	return regular, property, nil
}

func (c *Checker) check(ctx context.Context, env Env, rs RecordSet, fieldNames []string, pending Values) error {
	reg := env.Registry()
	model, ok := reg.Model(rs.Model)
	if !ok {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown model %q", rs.Model))
	}

	regular, property, err := c.CheckedFields(reg, model, fieldNames)
	if err != nil {
		return err
	}
	if len(regular) == 0 && len(property) == 0 {
		return nil
	}

	var (
		violations    []Violation
		company       Ref
		companyLoaded bool
	)
	for _, rec := range rs.Records() {
		scope, err := ResolveScope(ctx, env, model, rec, pending)
		if err != nil {
			return fmt.Errorf("resolve scope of %s %s: %w", rec.Model, rec.ID, err)
		}
		scopeDomain := ScopeDomain(scope)

		for _, f := range regular {
			v, err := c.evaluate(ctx, env, model, rec, f, scopeDomain, pending)
			if err != nil {
				return err
			}
			if v != nil {
				violations = append(violations, *v)
			}
		}

		if len(property) == 0 {
			continue
		}
		if !companyLoaded {
			company, err = env.CurrentCompany(ctx)
			if err != nil {
				return fmt.Errorf("current company: %w", err)
			}
			companyLoaded = true
		}
		for _, f := range property {
			d, err := env.CompanyDomain(ctx, f.Comodel, company)
			if err != nil {
				return fmt.Errorf("company domain for %s: %w", f.Comodel, err)
			}
			v, err := c.evaluate(ctx, env, model, rec, f, d, pending)
			if err != nil {
				return err
			}
			if v != nil {
				violations = append(violations, *v)
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	cerr, err := c.reporter.Report(ctx, env, violations, pending)
	if err != nil {
		return fmt.Errorf("render consistency report: %w", err)
	}
	return cerr
}

// evaluate returns the violation of rec.f against d, or nil
func (c *Checker) evaluate(ctx context.Context, env Env, model *Model, rec Ref, f *Field, d Domain, pending Values) (*Violation, error) {
	corecords, err := relationOf(ctx, env, model, rec, f.Name, pending)
	if err != nil {
		return nil, fmt.Errorf("read %s.%s of %s: %w", model.Name, f.Name, rec.ID, err)
	}
	if corecords.IsEmpty() {
		return nil, nil
	}
	matched, err := env.Filter(ctx, corecords, d)
	if err != nil {
		return nil, fmt.Errorf("filter %s by %s: %w", corecords.Model, d, err)
	}
	bad := corecords.Subtract(matched)
	if bad.IsEmpty() {
		return nil, nil
	}
	return &Violation{Record: rec, Field: f.Name, Corecords: bad}, nil
}
