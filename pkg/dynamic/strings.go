package dynamic

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
)

// PropertyKey converts v to the string used when it names an object property,
// following the runtime's ToString rules. Numbers use the shortest digits that
// round-trip and switch to exponent form outside [1e-7, 1e21).
func PropertyKey(v Value) string {
	switch x := v.(type) {
	case nil, Undefined:
		return "undefined"
	case Null:
		return "null"
	case String:
		return string(x)
	case Number:
		return formatNumber(float64(x))
	case Boolean:
		return strconv.FormatBool(bool(x))
	case ByteBuffer:
		return base64.StdEncoding.EncodeToString(x)
	case *Array:
		parts := make([]string, 0, x.Len())
		for _, e := range x.Values() {
			switch e.(type) {
			case Null, Undefined:
				parts = append(parts, "")
			default:
				parts = append(parts, PropertyKey(e))
			}
		}
		return strings.Join(parts, ",")
	case *Object:
		return "[object Object]"
	case *Host:
		return "[object " + TypeName(x.Unwrap()) + "]"
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f < 0:
		return "-" + formatNumber(-f)
	}

	// Shortest round-trip digits d.ddddde±x, split into digits and exponent.
	e := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expStr, _ := strings.Cut(e, "e")
	digits := strings.Replace(mant, ".", "", 1)
	exp, _ := strconv.Atoi(expStr)

	k := len(digits)
	n := exp + 1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}
	abs := n - 1
	if abs < 0 {
		abs = -abs
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(abs)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(abs)
}
