package membership

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
)

const (
	receiptDigits = 7
	maxReceipt    = 9999999
)

var ErrReceiptsExhausted = apperr.Conflict("Receipt numbers are exhausted for this prefix. Please supply a receipt number")

// FormatReceipt renders n as PREFIX-NNNNNNN.
func FormatReceipt(prefix string, n int) string {
	return fmt.Sprintf("%s-%0*d", prefix, receiptDigits, n)
}

// NextReceipt returns the receipt that follows last. It starts over at 1
// when last is empty or does not match PREFIX-NNNNNNN, and fails once the
// seven digits are used up.
func NextReceipt(prefix, last string) (string, error) {
	digits, ok := strings.CutPrefix(last, prefix+"-")
	if !ok || len(digits) != receiptDigits {
		return FormatReceipt(prefix, 1), nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil || strings.ContainsAny(digits, "+-") {
		return FormatReceipt(prefix, 1), nil
	}
	if n >= maxReceipt {
		return "", ErrReceiptsExhausted
	}
	return FormatReceipt(prefix, n+1), nil
}

// receiptPattern is the POSIX regex matching generated receipts for prefix.
func receiptPattern(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix) + "-[0-9]{" + strconv.Itoa(receiptDigits) + "}$"
}
