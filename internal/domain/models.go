package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidNumber = errors.New("el número debe empezar con '+' y tener un formato válido")
	ErrInvalidDay    = errors.New("el día de pago debe ser un número entre 1 y 31")
)

// Client is one billing record, keyed by its phone-shaped Number.
// JSON tags keep the on-disk document compatible with the historical
// pagos.json layout.
type Client struct {
	Number     string    `json:"-"`
	Name       string    `json:"nombre"`
	BillingDay int       `json:"diaPago"`
	Amount     string    `json:"monto"`
	Flag       string    `json:"bandera"`
	Suspended  bool      `json:"suspendido,omitempty"`
	ChatID     int64     `json:"chatId,omitempty"`
	Payments   []Payment `json:"pagos"`
}

type Payment struct {
	Amount    string `json:"monto"`
	Date      string `json:"fecha"` // YYYY-MM-DD, submission date
	Confirmed bool   `json:"confirmado"`
	ProofRef  string `json:"idComprobante,omitempty"`
}

// UserState tracks per-sender conversational flags. Created lazily on
// first contact, never deleted.
type UserState struct {
	ID                      string `json:"-"`
	AwaitingPaymentResponse bool   `json:"awaitingPaymentResponse"`
	PendingClientName       string `json:"paymentClientName"`
	PendingClientNumber     string `json:"paymentClientNumber"`
}

// Derivado is a named escalation/grouping reference, independent of the
// billing ledger. Keyed by lowercase name.
type Derivado struct {
	Name      string   `json:"nombre"`
	CreatedAt string   `json:"fechaCreacion"` // YYYY-MM-DD
	Clients   []string `json:"clientesAsociados"`
}

// ValidateNumber checks the phone-number shape used as ledger key.
func ValidateNumber(number string) error {
	if !strings.HasPrefix(number, "+") || len(number) < 5 {
		return ErrInvalidNumber
	}
	return nil
}

// ValidateBillingDay checks the day-of-month range.
func ValidateBillingDay(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	return nil
}

// LastUnconfirmed returns the index of the most recent unconfirmed
// payment, or -1.
func (c *Client) LastUnconfirmed() int {
	for i := len(c.Payments) - 1; i >= 0; i-- {
		if !c.Payments[i].Confirmed {
			return i
		}
	}
	return -1
}
