package models

import "time"

// PropertyStatus is an open enumeration; values outside the known set normalize to StatusUnknown.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
	StatusReserved  PropertyStatus = "reserved"
	StatusRented    PropertyStatus = "rented"
	StatusUnknown   PropertyStatus = "unknown"
)

// PropertyRecord is a property row as stored upstream. Price and address are kept raw
// because the hosted schema stores them as text / JSON.
type PropertyRecord struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Title        *string    `json:"title"`
	Price        *string    `json:"price"`
	Status       *string    `json:"status" gorm:"index"`
	PropertyType *string    `json:"type" gorm:"column:type"`
	Bedrooms     *int       `json:"bedrooms"`
	Bathrooms    *int       `json:"bathrooms"`
	Area         *float64   `json:"area"`
	Address      *string    `json:"address"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	CreatedAt    *time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt    *time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (PropertyRecord) TableName() string { return "properties" }

// Property is a normalized property: every numeric field is safe for arithmetic.
type Property struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Price     float64        `json:"price"`
	Status    PropertyStatus `json:"status"`
	Type      string         `json:"type"`
	Bedrooms  *int           `json:"bedrooms"`
	Bathrooms *int           `json:"bathrooms"`
	Area      *float64       `json:"area"`
	Address   string         `json:"address"`
	Latitude  *float64       `json:"latitude"`
	Longitude *float64       `json:"longitude"`
	CreatedAt *time.Time     `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at"`
}

// IsSold reports whether the property counts as a sale.
func (p Property) IsSold() bool {
	return p.Status == StatusSold
}
