package cart

import (
	"slices"

	"github.com/angelmondragon/shophub/internal/catalog"
	"github.com/shopspring/decimal"
)

// Line is one product and its quantity. Quantity is always at least 1.
type Line struct {
	ProductID int             `json:"product_id"`
	Product   catalog.Product `json:"product"`
	Quantity  int             `json:"quantity"`
}

// Cart is a session's cart aggregate. At most one line exists per product.
type Cart struct {
	Lines      []Line          `json:"lines"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Discount   decimal.Decimal `json:"discount"`
}

func (c *Cart) index(productID int) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool { return l.ProductID == productID })
}

// Add increments the line for p, or appends a new line with quantity 1.
func (c *Cart) Add(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, Line{ProductID: p.ID, Product: p, Quantity: 1})
}

// Remove deletes the line for productID and reports whether one existed.
func (c *Cart) Remove(productID int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Lines = slices.Delete(c.Lines, i, i+1)
	return true
}

// SetQuantity sets the line quantity; a quantity below 1 removes the line.
func (c *Cart) SetQuantity(productID, qty int) bool {
	if qty < 1 {
		return c.Remove(productID)
	}
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Lines[i].Quantity = qty
	return true
}

func (c *Cart) Increment(productID int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Lines[i].Quantity++
	return true
}

// Decrement lowers the quantity by one but never below 1; it does not remove the line.
func (c *Cart) Decrement(productID int) bool {
	i := c.index(productID)
	if i < 0 || c.Lines[i].Quantity <= 1 {
		return false
	}
	c.Lines[i].Quantity--
	return true
}

// Clear empties the cart and drops any coupon.
func (c *Cart) Clear() {
	c.Lines = nil
	c.CouponCode = ""
	c.Discount = decimal.Zero
}

// Subtract removes the quantities in ordered from c. Lines that reach zero are
// dropped. The coupon goes only when ordered carried the same one.
func (c *Cart) Subtract(ordered Cart) bool {
	changed := false
	for _, o := range ordered.Lines {
		i := c.index(o.ProductID)
		if i < 0 {
			continue
		}
		changed = true
		if c.Lines[i].Quantity <= o.Quantity {
			c.Lines = slices.Delete(c.Lines, i, i+1)
			continue
		}
		c.Lines[i].Quantity -= o.Quantity
	}
	if c.CouponCode != "" && c.CouponCode == ordered.CouponCode {
		c.CouponCode = ""
		c.Discount = decimal.Zero
		changed = true
	}
	if c.IsEmpty() {
		c.Lines = nil
	}
	return changed
}

// ApplyDiscount records a coupon and its flat discount amount.
func (c *Cart) ApplyDiscount(code string, amount decimal.Decimal) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	c.CouponCode = code
	c.Discount = amount
}

func (c *Cart) Contains(productID int) bool {
	return c.index(productID) >= 0
}

func (c *Cart) Line(productID int) (Line, bool) {
	i := c.index(productID)
	if i < 0 {
		return Line{}, false
	}
	return c.Lines[i], true
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
