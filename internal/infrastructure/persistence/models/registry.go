package models

import (
	"fmt"

	"github.com/erp/operatingunit/internal/domain/orgscope"
)

// Model names of the catalogue besides the ones orgscope defines
const (
	ModelPartner         = "res.partner"
	ModelUsers           = "res.users"
	ModelProductTemplate = "product.template"
	ModelSaleOrder       = "sale.order"
	ModelSaleOrderLine   = "sale.order.line"
)

// Rows returns every row model, in migration order
func Rows() []any {
	return []any{
		&CompanyModel{},
		&OperatingUnitModel{},
		&PartnerModel{},
		&UserModel{},
		&UserOperatingUnitModel{},
		&ProductTemplateModel{},
		&SaleOrderModel{},
		&SaleOrderFollowerModel{},
		&SaleOrderLineModel{},
	}
}

func m2o(name, description, comodel string) *orgscope.Field {
	return &orgscope.Field{Name: name, Description: description, Type: orgscope.FieldTypeMany2one, Comodel: comodel}
}

func checked(f *orgscope.Field) *orgscope.Field {
	f.CheckOperatingUnit = true
	return f
}

func char(name, description string) *orgscope.Field {
	return &orgscope.Field{Name: name, Description: description, Type: orgscope.FieldTypeChar}
}

// Catalog describes the row models to the consistency checker. The
// auto-check toggle is on for the transactional documents; configuration
// can enable it for more models.
func Catalog() (*orgscope.Registry, error) {
	company := orgscope.NewModel(orgscope.ModelCompany, CompanyModel{}.TableName(),
		char("name", "Company Name"),
		m2o("parent_id", "Parent Company", orgscope.ModelCompany),
		checked(m2o("partner_id", "Partner", ModelPartner)),
	)

	unit := orgscope.NewModel(orgscope.ModelOperatingUnit, OperatingUnitModel{}.TableName(),
		char("name", "Name"),
		char("code", "Code"),
		m2o(orgscope.FieldCompany, "Company", orgscope.ModelCompany),
		checked(m2o("partner_id", "Partner", ModelPartner)),
	)

	partner := orgscope.NewModel(ModelPartner, PartnerModel{}.TableName(),
		char("name", "Name"),
		char("email", "Email"),
		m2o(orgscope.FieldCompany, "Company", orgscope.ModelCompany),
		m2o(orgscope.FieldOperatingUnit, "Operating Unit", orgscope.ModelOperatingUnit),
	)

	users := orgscope.NewModel(ModelUsers, UserModel{}.TableName(),
		char("name", "Name"),
		char("login", "Login"),
		m2o(orgscope.FieldCompany, "Company", orgscope.ModelCompany),
		checked(m2o("partner_id", "Related Partner", ModelPartner)),
		&orgscope.Field{
			Name:        orgscope.FieldOperatingUnits,
			Description: "Operating Units",
			Type:        orgscope.FieldTypeMany2many,
			Comodel:     orgscope.ModelOperatingUnit,
			Relation:    UserOperatingUnitModel{}.TableName(),
			Column1:     "user_id",
			Column2:     "operating_unit_id",
		},
	)
	users.CheckAuto = true

	product := orgscope.NewModel(ModelProductTemplate, ProductTemplateModel{}.TableName(),
		char("name", "Name"),
		char("default_code", "Internal Reference"),
		m2o(orgscope.FieldCompany, "Company", orgscope.ModelCompany),
		m2o(orgscope.FieldOperatingUnit, "Operating Unit", orgscope.ModelOperatingUnit),
		&orgscope.Field{
			Name:               "property_supplier_id",
			Description:        "Vendor",
			Type:               orgscope.FieldTypeMany2one,
			Comodel:            ModelPartner,
			CompanyDependent:   true,
			CheckOperatingUnit: true,
		},
	)
	product.CheckAuto = true

	order := orgscope.NewModel(ModelSaleOrder, SaleOrderModel{}.TableName(),
		char("name", "Order Reference"),
		char("state", "Status"),
		checked(m2o("partner_id", "Customer", ModelPartner)),
		checked(m2o("partner_invoice_id", "Invoice Address", ModelPartner)),
		m2o(orgscope.FieldCompany, "Company", orgscope.ModelCompany),
		m2o(orgscope.FieldOperatingUnit, "Operating Unit", orgscope.ModelOperatingUnit),
		&orgscope.Field{
			Name:               "follower_partner_ids",
			Description:        "Followers",
			Type:               orgscope.FieldTypeMany2many,
			Comodel:            ModelPartner,
			CheckOperatingUnit: true,
			Relation:           SaleOrderFollowerModel{}.TableName(),
			Column1:            "order_id",
			Column2:            "partner_id",
		},
		&orgscope.Field{
			Name:        "order_line_ids",
			Description: "Order Lines",
			Type:        orgscope.FieldTypeOne2many,
			Comodel:     ModelSaleOrderLine,
			InverseName: "order_id",
		},
	)
	order.CheckAuto = true

	line := orgscope.NewModel(ModelSaleOrderLine, SaleOrderLineModel{}.TableName(),
		char("name", "Description"),
		m2o("order_id", "Order Reference", ModelSaleOrder),
		checked(m2o("product_id", "Product", ModelProductTemplate)),
		m2o(orgscope.FieldCompany, "Company", orgscope.ModelCompany),
		m2o(orgscope.FieldOperatingUnit, "Operating Unit", orgscope.ModelOperatingUnit),
	)
	line.CheckAuto = true

	reg := orgscope.NewRegistry()
	for _, m := range []*orgscope.Model{company, unit, partner, users, product, order, line} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("model catalogue: %w", err)
	}
	return reg, nil
}
