package models

import "github.com/google/uuid"

// ProductTemplateModel is a sellable product. PropertySupplierID is company
// dependent: it is validated against the acting company, not the unit.
type ProductTemplateModel struct {
	NamedModel
	DefaultCode        string     `gorm:"type:varchar(64)"`
	CompanyID          *uuid.UUID `gorm:"type:uuid;index"`
	OperatingUnitID    *uuid.UUID `gorm:"type:uuid;index"`
	PropertySupplierID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProductTemplateModel) TableName() string {
	return "product_template"
}

// SaleOrderModel is a sales order placed through one operating unit
type SaleOrderModel struct {
	BaseModel
	Name             string     `gorm:"type:varchar(64);not null"`
	State            string     `gorm:"type:varchar(20);not null;default:'draft'"`
	PartnerID        *uuid.UUID `gorm:"type:uuid;index"`
	PartnerInvoiceID *uuid.UUID `gorm:"type:uuid"`
	CompanyID        *uuid.UUID `gorm:"type:uuid;index"`
	OperatingUnitID  *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (SaleOrderModel) TableName() string {
	return "sale_order"
}

// NewSaleOrder creates a draft order in unit, owned by company
func NewSaleOrder(name string, company, unit uuid.UUID) *SaleOrderModel {
	return &SaleOrderModel{
		Name:            name,
		State:           "draft",
		CompanyID:       ref(company),
		OperatingUnitID: ref(unit),
	}
}

// SaleOrderFollowerModel links orders to the partners following them
type SaleOrderFollowerModel struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartnerID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (SaleOrderFollowerModel) TableName() string {
	return "sale_order_follower_rel"
}

// SaleOrderLineModel is one line of a sales order
type SaleOrderLineModel struct {
	BaseModel
	Name            string     `gorm:"type:varchar(200);not null"`
	OrderID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID       *uuid.UUID `gorm:"type:uuid"`
	CompanyID       *uuid.UUID `gorm:"type:uuid;index"`
	OperatingUnitID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (SaleOrderLineModel) TableName() string {
	return "sale_order_line"
}
