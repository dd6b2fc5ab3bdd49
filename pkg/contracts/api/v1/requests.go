// Package api contains API contract definitions for Salesboard.
// Version v1 represents the current stable API version.
package api

import (
	"salesboard/pkg/contracts/domain"
)

// ReportRequest selects a product, a date and the window radius.
type ReportRequest struct {
	Product string `json:"product" query:"product" validate:"required"`
	Date    string `json:"date" query:"date" validate:"required,datetime=2006-01-02"`
	Days    int    `json:"days" query:"days" validate:"min=0,max=7"`
}

// ProductsResponse lists the product catalog.
type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Default  string           `json:"default,omitempty"`
}
