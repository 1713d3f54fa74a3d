// Package amount converts human-readable amount strings like "1.5 NEAR" or
// "100 Tgas" into integer strings in the base denomination (yoctoNEAR or gas
// units). All arithmetic is exact big.Int decimal scaling; amounts routinely
// exceed 2^53 so floating point is never used.
package amount

import (
	"math/big"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// Decimal places per unit token.
const (
	DecimalsNEAR = 24
	DecimalsTGas = 12
	DecimalsGGas = 9
)

// unitDecimals maps a lower-cased unit token to its decimal scale.
//
//nolint:gochecknoglobals // Fixed unit table
var unitDecimals = map[string]int{
	"near":      DecimalsNEAR,
	"tgas":      DecimalsTGas,
	"ggas":      DecimalsGGas,
	"gas":       0,
	"yoctonear": 0,
}

// Parse converts an amount string with an optional unit token into an integer
// string in the base denomination. The numeric portion may contain "," and
// "_" separators. Without a unit token the value is scaled to an integer
// as-is.
func Parse(s string) (string, error) {
	num, unit := splitUnit(strings.TrimSpace(s))
	if num == "" {
		return "", nlerr.WithDetails(nlerr.ErrInvalidAmount, map[string]string{
			"input": s,
		})
	}

	decimals := 0
	if unit != "" {
		d, ok := unitDecimals[strings.ToLower(unit)]
		if !ok {
			return "", unknownUnitError(unit)
		}
		decimals = d
	}

	v, err := parseDecimal(num, decimals)
	if err != nil {
		return "", nlerr.WithDetails(nlerr.ErrInvalidAmount, map[string]string{
			"input": s,
		})
	}

	return v.String(), nil
}

// MustParse is Parse for static amounts known to be valid. It panics on error
// and is intended for constants in tests and examples.
func MustParse(s string) string {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// splitUnit separates the numeric portion from the trailing unit token.
// Both "100 Tgas" and "100Tgas" are accepted.
func splitUnit(s string) (num, unit string) {
	for i, r := range s {
		if unicode.IsLetter(r) {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
		}
	}
	return s, ""
}

// parseDecimal parses a decimal string into a big.Int scaled by the given
// number of decimal places. Separators "," and "_" are stripped first.
func parseDecimal(s string, decimals int) (*big.Int, error) {
	s = strings.NewReplacer(",", "", "_", "").Replace(s)

	if s == "" || strings.HasPrefix(s, "-") {
		return nil, nlerr.ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, nlerr.ErrInvalidAmount
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if intPart == "" {
		intPart = "0"
	}
	intVal, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, nlerr.ErrInvalidAmount
	}

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	result := new(big.Int).Mul(intVal, multiplier)

	if decPart != "" {
		for _, c := range decPart {
			if c < '0' || c > '9' {
				return nil, nlerr.ErrInvalidAmount
			}
		}

		// More fractional digits than the unit carries cannot be scaled
		// exactly, only truncated or rounded. Reject instead.
		trimmed := strings.TrimRight(decPart, "0")
		if len(trimmed) > decimals {
			return nil, nlerr.ErrInvalidAmount
		}

		for len(decPart) < decimals {
			decPart += "0"
		}
		decPart = decPart[:decimals]

		if decPart != "" {
			decVal, ok := new(big.Int).SetString(decPart, 10)
			if !ok {
				return nil, nlerr.ErrInvalidAmount
			}
			result.Add(result, decVal)
		}
	}

	return result, nil
}

// unknownUnitError builds an ErrInvalidUnit carrying the nearest known unit
// as a suggestion.
func unknownUnitError(unit string) error {
	err := nlerr.WithDetails(nlerr.ErrInvalidUnit, map[string]string{
		"unit": unit,
	})

	if nearest := nearestUnit(unit); nearest != "" {
		err = nlerr.WithSuggestion(err, "did you mean "+strings.ToUpper(nearest)+"?")
	}
	return err
}

// nearestUnit returns the known unit closest to the input by edit distance,
// or "" when nothing is plausibly close.
func nearestUnit(input string) string {
	input = strings.ToLower(input)

	best := ""
	minDist := len(input) + 1
	for unit := range unitDecimals {
		dist := levenshtein.ComputeDistance(input, unit)
		if dist < minDist {
			minDist = dist
			best = unit
		}
	}

	// A suggestion further than half the input away is noise.
	if minDist > (len(input)+1)/2+1 {
		return ""
	}
	return best
}

// Format converts an integer base-denomination string back to a
// human-readable decimal with the given number of decimal places. Trailing
// zeros after the decimal point are removed.
func Format(v string, decimals int) string {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return v
	}

	neg := n.Sign() < 0
	str := new(big.Int).Abs(n).String()

	for len(str) <= decimals {
		str = "0" + str
	}

	result := str
	if decimals > 0 {
		pos := len(str) - decimals
		result = str[:pos] + "." + str[pos:]
		for len(result) > 1 && result[len(result)-1] == '0' && result[len(result)-2] != '.' {
			result = result[:len(result)-1]
		}
		result = strings.TrimSuffix(result, ".0")
	}

	if neg {
		result = "-" + result
	}
	return result
}
