package orgscope

import (
	"context"
	"sort"
)

// Guard intercepts batch writes and runs the consistency check before the
// write reaches the host.
type Guard struct {
	env     Env
	writer  Writer
	checker *Checker
}

// NewGuard wraps writer; a nil checker uses NewChecker()
func NewGuard(env Env, writer Writer, checker *Checker) *Guard {
	if checker == nil {
		checker = NewChecker()
	}
	return &Guard{env: env, writer: writer, checker: checker}
}

// NeedsCheck reports whether writing vals onto model touches a scope-relevant
// field: operating_unit_id itself, or a relational field carrying the
// check_operating_unit marker. Unknown fields yield an InvalidFieldError.
func (g *Guard) NeedsCheck(model string, vals Values) (bool, error) {
	m, ok := g.env.Registry().Model(model)
	needs := false
	for _, name := range sortedFieldNames(vals) {
		if !ok {
			return false, &InvalidFieldError{Model: model, Field: name}
		}
		f, exists := m.Field(name)
		if !exists {
			return false, &InvalidFieldError{Model: model, Field: name}
		}
		if name == FieldOperatingUnit || f.Checked() {
			needs = true
		}
	}
	return needs, nil
}

// ShouldCheck reports whether writing vals onto model runs the consistency
// check: a scope-relevant field is written and the model has auto-check on.
func (g *Guard) ShouldCheck(model string, vals Values) (bool, error) {
	needs, err := g.NeedsCheck(model, vals)
	if err != nil || !needs {
		return false, err
	}
	return g.env.Registry().CheckAuto(model), nil
}

// Write validates and persists vals onto rs. Empty record sets succeed
// without touching the host. The check only fires when ShouldCheck holds;
// the write then proceeds unless the check failed.
func (g *Guard) Write(ctx context.Context, rs RecordSet, vals Values) error {
	_, err := g.WriteChecked(ctx, rs, vals)
	return err
}

// WriteChecked is Write that also reports whether the consistency check ran
func (g *Guard) WriteChecked(ctx context.Context, rs RecordSet, vals Values) (bool, error) {
	if rs.IsEmpty() {
		return false, nil
	}

	checked, err := g.ShouldCheck(rs.Model, vals)
	if err != nil {
		return false, err
	}
	if checked {
		if err := g.checker.check(ctx, g.env, rs, nil, vals); err != nil {
			return true, err
		}
	}

	return checked, g.writer.Write(ctx, rs, vals)
}

func sortedFieldNames(vals Values) []string {
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
