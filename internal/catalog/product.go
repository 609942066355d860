package catalog

// Rating is the upstream review summary for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is an immutable catalog record. Rating is optional upstream.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating,omitempty"`
}

// Rate returns the average rating, treating a missing rating as 0.
func (p Product) Rate() float64 {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Rate
}

// ReviewCount returns the number of ratings, treating a missing rating as 0.
func (p Product) ReviewCount() int {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Count
}
