package utils

import (
	"crypto/md5" //nolint:gosec // the gateway protocol mandates MD5
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/govalues/decimal"
)

// The digests below are a wire contract with the payment gateway: field order,
// upper-case hex and two-decimal amounts must not change.

// FormatAmount renders an amount with exactly two decimals, a dot separator and no grouping.
func FormatAmount(amount decimal.Decimal) string {
	return amount.Round(2).Pad(2).String()
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// CheckoutHash signs an outgoing checkout request.
func CheckoutHash(merchantID, orderID string, amount decimal.Decimal, currency, merchantSecret string) string {
	return md5Upper(merchantID + orderID + FormatAmount(amount) + currency + md5Upper(merchantSecret))
}

// NotifyHash computes the digest the gateway attaches to a notify callback.
// Amount and currency are used exactly as received.
func NotifyHash(merchantID, orderID, payhereAmount, payhereCurrency, statusCode, merchantSecret string) string {
	return md5Upper(merchantID + orderID + payhereAmount + payhereCurrency + statusCode + md5Upper(merchantSecret))
}

// VerifyNotify reports whether received matches the expected notify digest.
// Any failure, including a missing secret, yields the same false result.
func VerifyNotify(received, merchantID, orderID, payhereAmount, payhereCurrency, statusCode, merchantSecret string) bool {
	if merchantSecret == "" || received == "" {
		return false
	}
	expected := NotifyHash(merchantID, orderID, payhereAmount, payhereCurrency, statusCode, merchantSecret)
	got := strings.ToUpper(strings.TrimSpace(received))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
