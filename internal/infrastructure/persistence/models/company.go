package models

import "github.com/google/uuid"

// CompanyModel is a legal entity; parent companies form a tree
type CompanyModel struct {
	NamedModel
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	PartnerID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "res_company"
}

// NewCompany creates an active company row
func NewCompany(name string, parent uuid.UUID) *CompanyModel {
	return &CompanyModel{
		NamedModel: NamedModel{Name: name, Active: true},
		ParentID:   ref(parent),
	}
}

// OperatingUnitModel is an organizational subdivision of a company
type OperatingUnitModel struct {
	NamedModel
	Code      string     `gorm:"type:varchar(32);not null;uniqueIndex:uq_operating_unit_code"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_operating_unit_code"`
	PartnerID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OperatingUnitModel) TableName() string {
	return "operating_unit"
}

// NewOperatingUnit creates an active operating unit row
func NewOperatingUnit(name, code string, company uuid.UUID) *OperatingUnitModel {
	return &OperatingUnitModel{
		NamedModel: NamedModel{Name: name, Active: true},
		Code:       code,
		CompanyID:  ref(company),
	}
}

// PartnerModel is a contact. CompanyID holds either a company or an
// operating unit id, which is how partners get restricted to a unit.
type PartnerModel struct {
	NamedModel
	Email           string     `gorm:"type:varchar(200)"`
	CompanyID       *uuid.UUID `gorm:"type:uuid;index"`
	OperatingUnitID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "res_partner"
}

// NewPartner creates an active partner row owned by owner (may be uuid.Nil)
func NewPartner(name string, owner uuid.UUID) *PartnerModel {
	return &PartnerModel{
		NamedModel: NamedModel{Name: name, Active: true},
		CompanyID:  ref(owner),
	}
}

// UserModel is an ERP user; its operating units live in a join table
type UserModel struct {
	NamedModel
	Login     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index"`
	PartnerID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "res_users"
}

// NewUser creates an active user row working for company
func NewUser(name, login string, company uuid.UUID) *UserModel {
	return &UserModel{
		NamedModel: NamedModel{Name: name, Active: true},
		Login:      login,
		CompanyID:  ref(company),
	}
}

// UserOperatingUnitModel links users to the operating units they work in
type UserOperatingUnitModel struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OperatingUnitID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (UserOperatingUnitModel) TableName() string {
	return "res_users_operating_unit_rel"
}
