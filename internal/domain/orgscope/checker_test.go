package orgscope

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Check(t *testing.T) {
	ctx := context.Background()
	checker := NewChecker()

	t.Run("no checked relations is a no-op", func(t *testing.T) {
		fx := newFixture()
		partner := fx.env.add("res.partner", "P")

		err := checker.Check(ctx, fx.env, partner.Set())

		require.NoError(t, err)
		assert.Zero(t, fx.env.reads)
	})

	t.Run("only operating_unit_id requested widens to every field", func(t *testing.T) {
		fx := newFixture()
		fx.env.set(fx.b1, FieldCompany, fx.ou2)
		fx.env.set(fx.a1, "partner_id", fx.b1)

		err := checker.Check(ctx, fx.env, fx.a1.Set(), FieldOperatingUnit)

		_, ok := AsConsistencyError(err)
		assert.True(t, ok)
	})

	t.Run("restricting to an unchecked field skips the check", func(t *testing.T) {
		fx := newFixture()
		fx.env.set(fx.b1, FieldCompany, fx.ou2)
		fx.env.set(fx.a1, "partner_id", fx.b1)

		require.NoError(t, checker.Check(ctx, fx.env, fx.a1.Set(), "name"))
	})

	t.Run("unknown field name is rejected", func(t *testing.T) {
		fx := newFixture()

		err := checker.Check(ctx, fx.env, fx.a1.Set(), "bogus")

		assert.True(t, IsInvalidField(err))
	})

	t.Run("comodels outside the scoping scheme are ignored", func(t *testing.T) {
		fx := newFixture()
		other := fx.env.add(ModelCompany, "Other")
		fx.env.set(fx.a1, "company_ref_id", other)

		require.NoError(t, checker.Check(ctx, fx.env, fx.a1.Set()))
	})

	t.Run("collects every violation across records and fields", func(t *testing.T) {
		fx := newFixture()
		a2 := fx.env.add("sale.order", "A2")
		fx.env.set(a2, FieldOperatingUnit, fx.ou2)
		b2 := fx.env.add("res.partner", "B2")
		fx.env.set(b2, FieldCompany, fx.ou1)
		fx.env.set(fx.b1, FieldCompany, fx.ou2)

		fx.env.set(fx.a1, "partner_id", fx.b1)
		fx.env.set(fx.a1, "tag_partner_ids", fx.b1, b2)
		fx.env.set(a2, "partner_id", b2)

		err := checker.Check(ctx, fx.env, NewRecordSet("sale.order", fx.a1.ID, a2.ID))

		cerr, ok := AsConsistencyError(err)
		require.True(t, ok)
		require.Len(t, cerr.Violations, 3)
		assert.Equal(t, Violation{Record: fx.a1, Field: "partner_id", Corecords: fx.b1.Set()}, cerr.Violations[0])
		assert.Equal(t, Violation{Record: fx.a1, Field: "tag_partner_ids", Corecords: fx.b1.Set()}, cerr.Violations[1])
		assert.Equal(t, Violation{Record: a2, Field: "partner_id", Corecords: b2.Set()}, cerr.Violations[2])
	})

	t.Run("is idempotent on unchanged data", func(t *testing.T) {
		fx := newFixture()
		fx.env.set(fx.b1, FieldCompany, fx.ou2)
		fx.env.set(fx.a1, "partner_id", fx.b1)

		first := checker.Check(ctx, fx.env, fx.a1.Set())
		second := checker.Check(ctx, fx.env, fx.a1.Set())

		require.Error(t, first)
		require.Error(t, second)
		assert.Equal(t, first.Error(), second.Error())
		c1, _ := AsConsistencyError(first)
		c2, _ := AsConsistencyError(second)
		assert.Equal(t, c1.Violations, c2.Violations)
	})
}

func TestChecker_ScopeRules(t *testing.T) {
	ctx := context.Background()
	checker := NewChecker()

	t.Run("empty scope accepts only records without company", func(t *testing.T) {
		fx := newFixture()
		fx.env.set(fx.a1, FieldOperatingUnit)
		fx.env.set(fx.a1, "partner_id", fx.b1)
		require.NoError(t, checker.Check(ctx, fx.env, fx.a1.Set()))

		fx.env.set(fx.b1, FieldCompany, fx.ou1)
		_, ok := AsConsistencyError(checker.Check(ctx, fx.env, fx.a1.Set()))
		assert.True(t, ok)
	})

	t.Run("operating units are their own scope", func(t *testing.T) {
		fx := newFixture()
		fx.env.set(fx.ou1, "partner_id", fx.b1)

		fx.env.set(fx.b1, FieldCompany, fx.ou1)
		require.NoError(t, checker.Check(ctx, fx.env, fx.ou1.Set()))

		fx.env.set(fx.b1, FieldCompany, fx.ou2)
		cerr, ok := AsConsistencyError(checker.Check(ctx, fx.env, fx.ou1.Set()))
		require.True(t, ok)
		assert.Equal(t, fx.ou1, cerr.Violations[0].Record)
	})

	t.Run("records with several operating units accept any of them", func(t *testing.T) {
		fx := newFixture()
		user := fx.env.add("res.users", "Alice")
		fx.env.set(user, FieldOperatingUnits, fx.ou1, fx.ou2)
		fx.env.set(user, "partner_id", fx.b1)

		fx.env.set(fx.b1, FieldCompany, fx.ou2)
		require.NoError(t, checker.Check(ctx, fx.env, user.Set()))

		fx.env.set(fx.b1, FieldCompany, fx.acme)
		_, ok := AsConsistencyError(checker.Check(ctx, fx.env, user.Set()))
		assert.True(t, ok)
	})

	t.Run("company dependent fields use the current company", func(t *testing.T) {
		fx := newFixture()
		holding := fx.env.add(ModelCompany, "Holding")
		fx.env.parents[fx.acme.ID] = holding.ID
		fx.env.current = fx.acme
		fx.env.set(fx.a1, "property_partner_id", fx.b1)

		// The operating unit would reject this partner; the property rule does not.
		fx.env.set(fx.b1, FieldCompany, holding)
		require.NoError(t, checker.Check(ctx, fx.env, fx.a1.Set()))

		other := fx.env.add(ModelCompany, "Other")
		fx.env.set(fx.b1, FieldCompany, other)
		cerr, ok := AsConsistencyError(checker.Check(ctx, fx.env, fx.a1.Set()))
		require.True(t, ok)
		assert.Equal(t, "property_partner_id", cerr.Violations[0].Field)
	})

	t.Run("company dependent fields ignore the record scope", func(t *testing.T) {
		fx := newFixture()
		fx.env.current = fx.acme
		fx.env.set(fx.a1, "property_partner_id", fx.b1)
		fx.env.set(fx.b1, FieldCompany, fx.ou1)

		_, ok := AsConsistencyError(checker.Check(ctx, fx.env, fx.a1.Set()))
		assert.True(t, ok, "an operating unit id is not a company of the current company chain")
	})
}

func TestChecker_ReportCap(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	fx.env.set(fx.b1, FieldCompany, fx.ou2)

	ids := make([]uuid.UUID, 0, 7)
	for i := 0; i < 7; i++ {
		order := fx.env.add("sale.order", fmt.Sprintf("SO%d", i))
		fx.env.set(order, FieldOperatingUnit, fx.ou1)
		fx.env.set(order, FieldCompany, fx.acme)
		fx.env.set(order, "partner_id", fx.b1)
		ids = append(ids, order.ID)
	}

	err := NewChecker().Check(ctx, fx.env, NewRecordSet("sale.order", ids...))

	cerr, ok := AsConsistencyError(err)
	require.True(t, ok)
	assert.Len(t, cerr.Violations, 7)

	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, MsgHeader, lines[0])
	for i, line := range lines[1:] {
		assert.Equal(t, fmt.Sprintf(`- "SO%d" belongs to company "Acme" and "Customer" (partner_id: "B1") belongs to another company.`, i), line)
	}
	assert.NotContains(t, err.Error(), "SO5")
	assert.NotContains(t, err.Error(), "more")
}
