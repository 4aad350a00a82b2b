package domain

// ProductSummary is the slice of catalog data orders need.
type ProductSummary struct {
	ID    string
	Name  string
	Image string
	Price float64
}
