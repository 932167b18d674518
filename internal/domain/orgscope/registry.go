package orgscope

import (
	"fmt"
	"sort"
	"sync"

	"github.com/erp/operatingunit/internal/domain/shared"
)

// FieldType is the storage kind of a field
type FieldType string

const (
	FieldTypeChar      FieldType = "char"
	FieldTypeText      FieldType = "text"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeFloat     FieldType = "float"
	FieldTypeDate      FieldType = "date"
	FieldTypeMany2one  FieldType = "many2one"
	FieldTypeOne2many  FieldType = "one2many"
	FieldTypeMany2many FieldType = "many2many"
)

// IsRelational reports whether values of this type reference other records
func (t FieldType) IsRelational() bool {
	switch t {
	case FieldTypeMany2one, FieldTypeOne2many, FieldTypeMany2many:
		return true
	default:
		return false
	}
}

// Field is the static descriptor of one field of a model
type Field struct {
	Name        string
	Description string // human-readable label used in reports
	Type        FieldType

	Relational         bool
	Comodel            string // target model of a relational field
	CompanyDependent   bool   // value varies per company context
	CheckOperatingUnit bool   // validate scope compatibility on write

	// Storage hints for x2many fields
	Relation    string // many2many join table
	Column1     string // join column pointing at this model
	Column2     string // join column pointing at the comodel
	InverseName string // one2many inverse many2one on the comodel
}

// Checked reports whether the field opted into scope checking
func (f *Field) Checked() bool {
	return f.Relational && f.CheckOperatingUnit
}

// ScopeCapability tells how a model exposes its operating units
type ScopeCapability int

const (
	// ScopeNone models carry no operating unit
	ScopeNone ScopeCapability = iota
	// ScopeSingle models carry operating_unit_id
	ScopeSingle
	// ScopeMany models carry operating_unit_ids
	ScopeMany
	// ScopeSelf is the operating unit model itself
	ScopeSelf
)

func (c ScopeCapability) String() string {
	switch c {
	case ScopeSingle:
		return "single"
	case ScopeMany:
		return "many"
	case ScopeSelf:
		return "self"
	default:
		return "none"
	}
}

// Model is the descriptor table of one record type
type Model struct {
	Name      string
	Table     string
	RecName   string // field used as display label, defaults to "name"
	CheckAuto bool   // run the consistency check automatically on write

	fields map[string]*Field
	order  []string
}

// NewModel creates a model descriptor with the given fields, kept in
// declaration order.
func NewModel(name, table string, fields ...*Field) *Model {
	m := &Model{
		Name:    name,
		Table:   table,
		RecName: "name",
		fields:  make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		m.AddField(f)
	}
	return m
}

// AddField appends a field, replacing any field with the same name
func (m *Model) AddField(f *Field) {
	if f.Type.IsRelational() {
		f.Relational = true
	}
	if _, exists := m.fields[f.Name]; !exists {
		m.order = append(m.order, f.Name)
	}
	m.fields[f.Name] = f
}

// Field looks up a field descriptor by name
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// HasField reports whether the model defines the named field
func (m *Model) HasField(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// FieldNames returns all field names in declaration order
func (m *Model) FieldNames() []string {
	return append([]string(nil), m.order...)
}

// ScopeCapability reports how the model participates in the scoping scheme
func (m *Model) ScopeCapability() ScopeCapability {
	switch {
	case m.Name == ModelOperatingUnit:
		return ScopeSelf
	case m.HasField(FieldOperatingUnits):
		return ScopeMany
	case m.HasField(FieldOperatingUnit):
		return ScopeSingle
	default:
		return ScopeNone
	}
}

// ExposesScope reports whether the model carries operating_unit_id or
// operating_unit_ids.
func (m *Model) ExposesScope() bool {
	return m.HasField(FieldOperatingUnit) || m.HasField(FieldOperatingUnits)
}

// Registry holds the model descriptors. It is populated once at startup and
// only read afterwards.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds a model descriptor. The check_operating_unit marker is only
// valid metadata on relational fields.
func (r *Registry) Register(m *Model) error {
	if m.Name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Model name cannot be empty")
	}
	for _, name := range m.order {
		f := m.fields[name]
		if f.CheckOperatingUnit && !f.Relational {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Field %q on model %q: check_operating_unit is only valid on relational fields", name, m.Name))
		}
		if f.Relational && f.Comodel == "" {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Relational field %q on model %q has no comodel", name, m.Name))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[m.Name]; exists {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Model %q is already registered", m.Name))
	}
	r.models[m.Name] = m
	return nil
}

// MustRegister registers every model and panics on the first error
func (r *Registry) MustRegister(models ...*Model) *Registry {
	for _, m := range models {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

// Validate checks that every relational field targets a registered model
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.namesLocked() {
		m := r.models[name]
		for _, fname := range m.order {
			f := m.fields[fname]
			if !f.Relational {
				continue
			}
			if _, ok := r.models[f.Comodel]; !ok {
				return shared.NewDomainError(shared.CodeInvalidInput,
					fmt.Sprintf("Field %q on model %q targets unknown model %q", fname, m.Name, f.Comodel))
			}
		}
	}
	return nil
}

// Model looks up a model descriptor
func (r *Registry) Model(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Names returns the registered model names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetCheckAuto flips the automatic-check toggle of a model. The toggle is
// written under the registry lock; concurrent readers go through
// Registry.CheckAuto, not the Model field.
func (r *Registry) SetCheckAuto(model string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[model]
	if !ok {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown model %q", model))
	}
	m.CheckAuto = enabled
	return nil
}

// CheckAuto reports whether writes on model are checked automatically.
// Unknown models are never checked.
func (r *Registry) CheckAuto(model string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[model]
	return ok && m.CheckAuto
}
