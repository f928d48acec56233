package models

import "time"

// PaymentMethod enumerates how a ride was paid for.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodWallet   PaymentMethod = "WALLET" // debits the passenger wallet
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// Payment is an opaque payment record attached to a completed ride and to
// the paying passenger's history. No gateway is involved; the record is
// stored exactly as supplied.
type Payment struct {
	Method   PaymentMethod `json:"method"`
	Amount   float64       `json:"amount"`
	Currency string        `json:"currency"` // 3-letter ISO code
	Date     time.Time     `json:"date"`
}

// PaymentInput is the request shape for a payment record.
type PaymentInput struct {
	Method   string  `json:"method" validate:"required,oneof=CASH CARD WALLET TRANSFER"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,len=3"`
}

// ToPayment converts the input into a Payment record stamped with now.
func (in PaymentInput) ToPayment() Payment {
	return Payment{
		Method:   PaymentMethod(in.Method),
		Amount:   in.Amount,
		Currency: in.Currency,
		Date:     time.Now(),
	}
}
