// Package models contains the GORM row models of the records whose operating
// unit consistency is enforced, and the descriptor catalogue that tells the
// checker how those rows relate.
//
// Structure:
// - base.go: BaseModel shared by every row
// - company.go: res.company, operating.unit, res.partner, res.users
// - trade.go: product.template, sale.order, sale.order.line
// - registry.go: field descriptors for every row model
package models
