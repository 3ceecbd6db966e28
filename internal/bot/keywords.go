package bot

import "strings"

// Fixed vocabulary that marks a caption or message as a payment proof.
var paymentKeywords = []string{
	"comprobante",
	"transferencia",
	"pago",
	"pagué",
	"pague",
	"recibo",
	"depósito",
	"deposito",
	"voucher",
	"boleta",
	"abono",
	"captura",
	"yape",
}

// IsPaymentProof reports whether text signals a payment-proof
// submission. Pure predicate, case-insensitive substring match.
func IsPaymentProof(text string) bool {
	if text == "" {
		return false
	}
	low := strings.ToLower(text)
	for _, kw := range paymentKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}
