package types

// Customer is the snapshot of the ordering customer embedded on orders,
// KOTs and invoices. Phone is the only hard requirement at order intake.
type Customer struct {
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          *string  `json:"email,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Classification string   `json:"classification,omitempty"`
}

// RestaurantDetails is the outlet identity block copied from configuration
// onto every invoice at creation time.
type RestaurantDetails struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	LicenseID string `json:"license_id,omitempty"`
}
