package domain

import "github.com/google/uuid"

// Product is catalog data. This service never mutates products; they are
// provisioned out of band and referenced by cart lines.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price Money
	Image string // optional image URL, empty when absent
}

// ProductListing is a catalog entry joined with its current availability.
type ProductListing struct {
	Product
	Available int
}
