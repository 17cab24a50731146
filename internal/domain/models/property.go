// internal/domain/models/property.go
package models

// PropertySummary is the read-only slice of a backend property shown on the
// dashboard property page.
type PropertySummary struct {
	ID              string `json:"id"`
	Name            string `json:"property_name"`
	Address         string `json:"property_address"`
	Status          string `json:"property_status"`
	Category        string `json:"category"`
	TransactionType string `json:"transaction_type"`
	Units           int    `json:"units,omitempty"`
	Occupied        int    `json:"occupied,omitempty"`
	Vacant          int    `json:"vacant,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	Country         string `json:"country,omitempty"`
}
