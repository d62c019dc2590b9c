package canon

import (
	"math"
	"strconv"
	"strings"
)

// maxSafeInt is the largest float64 magnitude at which every integer is
// exactly representable (2^53). Integral values beyond it stay Float and
// serialize through the shortest round-trip path.
const maxSafeInt = 1 << 53

// integralFloat reports whether f denotes an integral value that fits an
// int64 without precision loss, and returns it. Negative zero is integral
// and normalizes to 0 here.
func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	if math.Abs(f) > maxSafeInt {
		return 0, false
	}
	return int64(f), true
}

// formatFloat renders a float64 in canonical form: the shortest decimal
// representation that round-trips to the same bits. Plain decimal notation
// is used for 1e-6 <= |f| < 1e21; exponent notation outside that range,
// with no exponent sign padding or leading zeros.
func formatFloat(f float64, path string) (string, error) {
	if math.IsNaN(f) {
		return "", &CanonicalizationError{Path: path, Reason: "NaN is not representable"}
	}
	if math.IsInf(f, 0) {
		return "", &CanonicalizationError{Path: path, Reason: "Infinity is not representable"}
	}
	if f == 0 {
		// Covers negative zero.
		return "0", nil
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return cleanExponent(strconv.FormatFloat(f, 'e', -1, 64)), nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// cleanExponent rewrites Go's exponent form ("1.5e-07", "1e+21") into
// canonical form ("1.5e-7", "1e+21"): the exponent keeps its sign but
// drops leading zeros.
func cleanExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return s
	}
	mantissa, exp := s[:i], s[i+1:]
	sign := ""
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		sign = string(exp[0])
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}
