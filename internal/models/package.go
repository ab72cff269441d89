package models

// CreditPackage is one purchasable tier. Static configuration, not persisted.
type CreditPackage struct {
	ID          string  `json:"id"`
	Price       float64 `json:"price"`
	Credits     int     `json:"credits"`
	DisplayName string  `json:"name"`
}

// DefaultCreditPackages is the fixed three-tier catalog.
func DefaultCreditPackages() []CreditPackage {
	return []CreditPackage{
		{ID: "basic", Price: 22, Credits: 1000, DisplayName: "Basic"},
		{ID: "pro", Price: 55, Credits: 3000, DisplayName: "Pro"},
		{ID: "enterprise", Price: 110, Credits: 7000, DisplayName: "Enterprise"},
	}
}
