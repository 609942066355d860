package checkout

import (
	"strings"

	"github.com/angelmondragon/shophub/pkg/enums"
	"github.com/angelmondragon/shophub/pkg/types"
)

// PlaceOrderInput is the checkout form.
type PlaceOrderInput struct {
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method" validate:"required,oneof=card upi cod"`
	Card            *CardDetails          `json:"card,omitempty"`
	UPI             *UPIDetails           `json:"upi,omitempty"`
}

type CardDetails struct {
	Number string `json:"number" validate:"required,cardnumber"`
	Name   string `json:"name" validate:"required,personname"`
	Expiry string `json:"expiry" validate:"required,expiry"`
	CVV    string `json:"cvv" validate:"required,cvv"`
}

type UPIDetails struct {
	ID string `json:"id" validate:"required,upi"`
}

// normalize trims the form and drops details that do not belong to the chosen method.
func (in PlaceOrderInput) normalize() PlaceOrderInput {
	out := in
	out.ShippingAddress = in.ShippingAddress.Normalize()
	out.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if out.PaymentMethod != string(enums.PaymentMethodCard) {
		out.Card = nil
	}
	if out.PaymentMethod != string(enums.PaymentMethodUPI) {
		out.UPI = nil
	}
	if out.Card != nil {
		card := *out.Card
		card.Number = strings.Join(strings.Fields(card.Number), "")
		card.Name = strings.TrimSpace(card.Name)
		card.Expiry = strings.TrimSpace(card.Expiry)
		card.CVV = strings.TrimSpace(card.CVV)
		out.Card = &card
	}
	if out.UPI != nil {
		upi := UPIDetails{ID: strings.TrimSpace(out.UPI.ID)}
		out.UPI = &upi
	}
	return out
}
