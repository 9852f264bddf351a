package model

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimal is a fixed-point measurement value with exactly one fractional
// digit, stored as a count of tenths. It mirrors the numeric(10,1) column
// type: at most ten digits in total, one of them after the point.
type Decimal int64

// maxDecimalTenths is the largest representable magnitude (999999999.9).
const maxDecimalTenths = 9999999999

// ParseDecimal parses a decimal string such as "22.3", "-4.5" or "17".
// More than one fractional digit or more than ten digits in total is an
// error; the ingestion API does not round.
func ParseDecimal(s string) (Decimal, error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" || len(fracPart) > 1 {
		return 0, fmt.Errorf("invalid decimal %q: at most one fractional digit", orig)
	}

	whole, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q", orig)
	}
	// Bound before multiplying; a 19-digit integer part would otherwise wrap
	// around uint64 and land back inside the valid range.
	if whole > maxDecimalTenths/10 {
		return 0, fmt.Errorf("decimal %q exceeds 10 digits", orig)
	}

	var frac uint64
	if fracPart != "" {
		frac, err = strconv.ParseUint(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid decimal %q", orig)
		}
	}

	tenths := whole*10 + frac
	if neg {
		return Decimal(-int64(tenths)), nil
	}
	return Decimal(tenths), nil
}

// String renders the value with exactly one fractional digit, e.g. "22.3".
func (d Decimal) String() string {
	v := int64(d)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%d", sign, v/10, v%10)
}

// MarshalJSON renders the value as a decimal string ("22.3"), matching the
// wire format expected by the SenseHel platform.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; the value travels to Postgres as text.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. lib/pq returns numeric columns as []byte.
func (d *Decimal) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParseDecimal(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDecimal(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case int64:
		*d = Decimal(v * 10)
		return nil
	case float64:
		*d = Decimal(int64(math.Round(v * 10)))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Decimal", src)
	}
}
