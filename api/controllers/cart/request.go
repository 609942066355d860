package cart

// AddItemRequest adds one unit of a catalog product.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gte=1"`
}

// SetQuantityRequest sets a line quantity. Zero or less removes the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}
