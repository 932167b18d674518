package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRecordNotFound is returned when a record referenced by a Ref is missing
var ErrRecordNotFound = gorm.ErrRecordNotFound

// Store is the GORM-backed host of the consistency checker. It reads and
// writes rows through the descriptors of its registry and implements both
// orgscope.Env and orgscope.Writer.
type Store struct {
	db  *gorm.DB
	reg *orgscope.Registry
}

var (
	_ orgscope.Env    = (*Store)(nil)
	_ orgscope.Writer = (*Store)(nil)
)

// NewStore creates a store over db
func NewStore(db *gorm.DB, reg *orgscope.Registry) *Store {
	return &Store{db: db, reg: reg}
}

// WithTx returns a store bound to tx
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx, reg: s.reg}
}

// Registry implements orgscope.Env
func (s *Store) Registry() *orgscope.Registry {
	return s.reg
}

func (s *Store) model(name string) (*orgscope.Model, error) {
	m, ok := s.reg.Model(name)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", name)
	}
	return m, nil
}

func (s *Store) field(m *orgscope.Model, name string) (*orgscope.Field, error) {
	f, ok := m.Field(name)
	if !ok {
		return nil, &orgscope.InvalidFieldError{Model: m.Name, Field: name}
	}
	return f, nil
}

// ReadRelation implements orgscope.Env
func (s *Store) ReadRelation(ctx context.Context, rec orgscope.Ref, field string) (orgscope.RecordSet, error) {
	m, err := s.model(rec.Model)
	if err != nil {
		return orgscope.RecordSet{}, err
	}
	f, err := s.field(m, field)
	if err != nil {
		return orgscope.RecordSet{}, err
	}
	if !f.Relational {
		return orgscope.RecordSet{}, fmt.Errorf("%s.%s is not relational", m.Name, f.Name)
	}

	db := s.db.WithContext(ctx)
	var ids []uuid.UUID

	switch f.Type {
	case orgscope.FieldTypeMany2one:
		var values []uuid.NullUUID
		if err := db.Table(m.Table).Where("id = ?", rec.ID).Pluck(f.Name, &values).Error; err != nil {
			return orgscope.RecordSet{}, fmt.Errorf("read %s.%s: %w", m.Name, f.Name, err)
		}
		if len(values) == 0 {
			return orgscope.RecordSet{}, fmt.Errorf("%s %s: %w", m.Name, rec.ID, ErrRecordNotFound)
		}
		if values[0].Valid {
			ids = append(ids, values[0].UUID)
		}

	case orgscope.FieldTypeMany2many:
		err := db.Table(f.Relation).
			Where(f.Column1+" = ?", rec.ID).
			Order(f.Column2).
			Pluck(f.Column2, &ids).Error
		if err != nil {
			return orgscope.RecordSet{}, fmt.Errorf("read %s.%s: %w", m.Name, f.Name, err)
		}

	case orgscope.FieldTypeOne2many:
		comodel, err := s.model(f.Comodel)
		if err != nil {
			return orgscope.RecordSet{}, err
		}
		err = db.Table(comodel.Table).
			Where(f.InverseName+" = ?", rec.ID).
			Order("created_at, id").
			Pluck("id", &ids).Error
		if err != nil {
			return orgscope.RecordSet{}, fmt.Errorf("read %s.%s: %w", m.Name, f.Name, err)
		}
	}

	return orgscope.NewRecordSet(f.Comodel, ids...), nil
}

// Filter implements orgscope.Env. Archived rows are included: there is no
// active filter on the query.
func (s *Store) Filter(ctx context.Context, rs orgscope.RecordSet, d orgscope.Domain) (orgscope.RecordSet, error) {
	if rs.IsEmpty() {
		return rs, nil
	}
	m, err := s.model(rs.Model)
	if err != nil {
		return orgscope.RecordSet{}, err
	}
	where, vars, err := RenderDomain(s.reg, m, d)
	if err != nil {
		return orgscope.RecordSet{}, err
	}

	var matched []uuid.UUID
	err = s.db.WithContext(ctx).
		Table(m.Table).
		Where("id IN ?", rs.IDs).
		Where(where, vars...).
		Pluck("id", &matched).Error
	if err != nil {
		return orgscope.RecordSet{}, fmt.Errorf("filter %s: %w", m.Name, err)
	}

	keep := make(map[uuid.UUID]struct{}, len(matched))
	for _, id := range matched {
		keep[id] = struct{}{}
	}
	out := orgscope.RecordSet{Model: rs.Model}
	for _, id := range rs.IDs {
		if _, ok := keep[id]; ok {
			out.IDs = append(out.IDs, id)
		}
	}
	return out, nil
}

// CompanyDomain implements orgscope.Env: records of no company, of company,
// or of one of its parent companies are compatible.
func (s *Store) CompanyDomain(ctx context.Context, _ string, company orgscope.Ref) (orgscope.Domain, error) {
	if company.IsZero() {
		return orgscope.CompanyDomain(), nil
	}
	chain, err := s.CompanyChain(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	return orgscope.CompanyDomain(chain...), nil
}

// CompanyChain returns id followed by its ancestors, nearest first
func (s *Store) CompanyChain(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	companies, err := s.model(orgscope.ModelCompany)
	if err != nil {
		return nil, err
	}
	chain := []uuid.UUID{id}
	seen := map[uuid.UUID]bool{id: true}
	for current := id; ; {
		var parents []uuid.NullUUID
		err := s.db.WithContext(ctx).
			Table(companies.Table).
			Where("id = ?", current).
			Pluck("parent_id", &parents).Error
		if err != nil {
			return nil, fmt.Errorf("read parent of company %s: %w", current, err)
		}
		if len(parents) == 0 || !parents[0].Valid || seen[parents[0].UUID] {
			return chain, nil
		}
		current = parents[0].UUID
		seen[current] = true
		chain = append(chain, current)
	}
}

// CurrentCompany implements orgscope.Env. The company set on the context
// wins; otherwise the acting user's company is used.
func (s *Store) CurrentCompany(ctx context.Context) (orgscope.Ref, error) {
	if id := logger.GetCompanyID(ctx); id != uuid.Nil {
		return orgscope.Ref{Model: orgscope.ModelCompany, ID: id}, nil
	}
	userID := logger.GetUserID(ctx)
	if userID == uuid.Nil {
		return orgscope.Ref{}, nil
	}
	users, ok := s.reg.Model("res.users")
	if !ok || !users.HasField(orgscope.FieldCompany) {
		return orgscope.Ref{}, nil
	}
	company, err := s.ReadRelation(ctx, orgscope.Ref{Model: users.Name, ID: userID}, orgscope.FieldCompany)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return orgscope.Ref{}, nil
		}
		return orgscope.Ref{}, err
	}
	if company.IsEmpty() {
		return orgscope.Ref{}, nil
	}
	return company.At(0), nil
}

// DisplayNames implements orgscope.Env. Missing records get an empty name.
func (s *Store) DisplayNames(ctx context.Context, rs orgscope.RecordSet) ([]string, error) {
	names := make([]string, len(rs.IDs))
	if rs.IsEmpty() {
		return names, nil
	}
	m, err := s.model(rs.Model)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.WithContext(ctx).
		Table(m.Table).
		Select([]string{"id", m.RecName}).
		Where("id IN ?", rs.IDs).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("read names of %s: %w", m.Name, err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]string, len(rs.IDs))
	for rows.Next() {
		var (
			id   uuid.UUID
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan name of %s: %w", m.Name, err)
		}
		byID[id] = name.String
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range rs.IDs {
		names[i] = byID[id]
	}
	return names, nil
}

// IDs lists every record of model, archived ones included, oldest first
func (s *Store) IDs(ctx context.Context, model string) (orgscope.RecordSet, error) {
	m, err := s.model(model)
	if err != nil {
		return orgscope.RecordSet{}, err
	}
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Table(m.Table).Order("created_at, id").Pluck("id", &ids).Error; err != nil {
		return orgscope.RecordSet{}, fmt.Errorf("list %s: %w", m.Name, err)
	}
	return orgscope.NewRecordSet(model, ids...), nil
}

// Write implements orgscope.Writer. Column values are updated in one
// statement; many2many values replace the join rows. Both happen in one
// transaction (a savepoint when the store is already bound to one).
func (s *Store) Write(ctx context.Context, rs orgscope.RecordSet, vals orgscope.Values) error {
	if rs.IsEmpty() || len(vals) == 0 {
		return nil
	}
	m, err := s.model(rs.Model)
	if err != nil {
		return err
	}

	columns := map[string]any{}
	links := map[*orgscope.Field]orgscope.RecordSet{}

	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, err := s.field(m, name)
		if err != nil {
			return err
		}
		switch f.Type {
		case orgscope.FieldTypeMany2one:
			target, err := orgscope.RelationValue(f.Comodel, vals[name])
			if err != nil {
				return err
			}
			switch target.Len() {
			case 0:
				columns[f.Name] = nil
			case 1:
				columns[f.Name] = target.IDs[0]
			default:
				return fmt.Errorf("%s.%s holds a single record, got %d", m.Name, f.Name, target.Len())
			}
		case orgscope.FieldTypeMany2many:
			target, err := orgscope.RelationValue(f.Comodel, vals[name])
			if err != nil {
				return err
			}
			links[f] = target
		case orgscope.FieldTypeOne2many:
			return fmt.Errorf("%s.%s is written through %s.%s", m.Name, f.Name, f.Comodel, f.InverseName)
		default:
			columns[f.Name] = vals[name]
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(columns) > 0 {
			columns["updated_at"] = time.Now()
			if err := tx.Table(m.Table).Where("id IN ?", rs.IDs).Updates(columns).Error; err != nil {
				return fmt.Errorf("update %s: %w", m.Name, err)
			}
		}
		for f, target := range links {
			if err := replaceLinks(tx, f, rs.IDs, target.IDs); err != nil {
				return fmt.Errorf("update %s.%s: %w", m.Name, f.Name, err)
			}
		}
		return nil
	})
}

func replaceLinks(tx *gorm.DB, f *orgscope.Field, owners, targets []uuid.UUID) error {
	err := tx.Exec("DELETE FROM ? WHERE ? IN ?",
		clause.Table{Name: f.Relation}, clause.Column{Name: f.Column1}, owners).Error
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(owners)*len(targets))
	for _, owner := range owners {
		for _, target := range targets {
			rows = append(rows, map[string]any{f.Column1: owner, f.Column2: target})
		}
	}
	return tx.Table(f.Relation).Create(rows).Error
}
