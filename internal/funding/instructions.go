package funding

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// Charset excludes easily confused characters (I, O, l, 0, 1).
const addressChars = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

// GenerateDepositAddress produces a placeholder deposit address for a crypto
// payment method. These are mock addresses; a production deployment derives
// them from the payment processor.
func GenerateDepositAddress(method PaymentMethod) string {
	switch method {
	case MethodCryptoBTC:
		return "1" + randomString(33)
	case MethodCryptoETH, MethodCryptoUSDC:
		return "0x" + randomString(40)
	case MethodCryptoUSDT:
		return "T" + randomString(33)
	default:
		return ""
	}
}

func randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = addressChars[rand.IntN(len(addressChars))]
	}
	return string(b)
}

// Instructions returns the method-specific payment instruction payload
// handed to the user alongside a created deposit.
func Instructions(method PaymentMethod, depositAddress string, amount decimal.Decimal) map[string]any {
	switch method {
	case MethodCryptoBTC:
		return map[string]any{
			"type":     "crypto",
			"currency": "Bitcoin",
			"address":  depositAddress,
			"network":  "Bitcoin Network",
			"note":     "Send only BTC to this address. Minimum 3 confirmations required.",
		}
	case MethodCryptoETH:
		return map[string]any{
			"type":     "crypto",
			"currency": "Ethereum",
			"address":  depositAddress,
			"network":  "ERC-20",
			"note":     "Send only ETH to this address. Minimum 12 confirmations required.",
		}
	case MethodCryptoUSDT:
		return map[string]any{
			"type":     "crypto",
			"currency": "USDT",
			"address":  depositAddress,
			"network":  "TRC-20 / ERC-20",
			"note":     "Send only USDT to this address.",
		}
	case MethodCryptoUSDC:
		return map[string]any{
			"type":     "crypto",
			"currency": "USDC",
			"address":  depositAddress,
			"network":  "ERC-20",
			"note":     "Send only USDC to this address.",
		}
	case MethodBankTransfer:
		return map[string]any{
			"type":          "bank",
			"bankName":      "Varlixo International Bank",
			"accountNumber": "1234567890",
			"accountName":   "Varlixo Holdings Ltd",
			"routingNumber": "021000021",
			"swiftCode":     "VARLIXXX",
			"note":          fmt.Sprintf("Include your deposit reference in the transfer memo. Amount: $%s", amount.String()),
		}
	case MethodPayPal:
		return map[string]any{
			"type":  "paypal",
			"email": "payments@varlixo.com",
			"note":  "Send as Friends & Family to avoid fees.",
		}
	case MethodCard:
		return map[string]any{
			"type": "card",
			"note": "Card payments are processed through our secure payment gateway.",
		}
	case MethodInternal:
		return map[string]any{
			"type": "internal",
			"note": "Internal transfer from another Varlixo account.",
		}
	default:
		return map[string]any{"note": "Contact support for instructions."}
	}
}
