package funding

import "strings"

// PaymentMethod enumerates supported funding channels.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCryptoBTC    PaymentMethod = "crypto_btc"
	MethodCryptoETH    PaymentMethod = "crypto_eth"
	MethodCryptoUSDT   PaymentMethod = "crypto_usdt"
	MethodCryptoUSDC   PaymentMethod = "crypto_usdc"
	MethodPayPal       PaymentMethod = "paypal"
	MethodCard         PaymentMethod = "card"
	MethodInternal     PaymentMethod = "internal"
)

// IsCrypto reports whether the method is a cryptocurrency variant.
func (m PaymentMethod) IsCrypto() bool {
	return strings.HasPrefix(string(m), "crypto_")
}

// Valid reports whether the method is one of the supported channels.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodCryptoBTC, MethodCryptoETH, MethodCryptoUSDT,
		MethodCryptoUSDC, MethodPayPal, MethodCard, MethodInternal:
		return true
	default:
		return false
	}
}

// Label is the human-readable method name used in transaction descriptions.
func (m PaymentMethod) Label() string {
	return strings.ReplaceAll(string(m), "_", " ")
}
