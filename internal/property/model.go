package property

import "gorm.io/gorm"

// Property types and statuses.
const (
	TypeHouse      = "HOUSE"
	TypeCondo      = "CONDO"
	TypeTownhouse  = "TOWNHOUSE"
	TypeLand       = "LAND"
	TypeCommercial = "COMMERCIAL"

	StatusAvailable = "AVAILABLE"
	StatusPending   = "PENDING"
	StatusSold      = "SOLD"
	StatusOffMarket = "OFF_MARKET"
)

type Property struct {
	gorm.Model
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	SquareFt  int     `json:"squareFt"`

	// Listing photo URLs, stored as JSONB
	Photos []string `json:"photos" gorm:"type:jsonb;serializer:json"`

	Interests []PropertyInterest `json:"interests,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

// PropertyInterest links a lead to a property with an interest level.
type PropertyInterest struct {
	gorm.Model
	PropertyID uint   `json:"propertyId" gorm:"index"`
	LeadID     uint   `json:"leadId" gorm:"index"`
	Level      string `json:"level"`
	Notes      string `json:"notes"`
}

// Interest levels.
const (
	LevelLow    = "LOW"
	LevelMedium = "MEDIUM"
	LevelHigh   = "HIGH"
)
