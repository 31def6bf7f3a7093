package domain

import "time"

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

type Product struct {
	ID          int64
	StoreID     int64
	StoreName   string
	Title       string
	Description string
	Price       float64
	ImageURL    string
	Stock       int
	Status      ProductStatus
	CreatedAt   time.Time
}

func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
