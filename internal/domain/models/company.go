// internal/domain/models/company.go
package models

// Company is the tenant a user signed in to. Every dashboard call to the
// backend is scoped by CompanyID.
type Company struct {
	CompanyID   string `json:"company_id"`
	Name        string `json:"company_name,omitempty"`
	Email       string `json:"company_email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Country     string `json:"country,omitempty"`
	Industry    string `json:"industry,omitempty"`
	CompanyCode string `json:"company_code,omitempty"`
}
