package enums

// PaymentStatus is the processor's verdict on a charge.
type PaymentStatus string

const (
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDeclined PaymentStatus = "declined"
)

func (p PaymentStatus) String() string {
	return string(p)
}
