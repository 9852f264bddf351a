package model

import (
	"encoding/json"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  Decimal
	}{
		{"22.3", 223},
		{"22", 220},
		{"0.0", 0},
		{"0.5", 5},
		{"-4.5", -45},
		{"999999999.9", maxDecimalTenths},
	} {
		got, err := ParseDecimal(tc.input)
		if err != nil {
			t.Errorf("ParseDecimal(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDecimal(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseDecimal_Invalid(t *testing.T) {
	for _, input := range []string{
		"", ".", "22.", ".3", "22.34", "abc", "2a.3", "22.x",
		"1000000000.0", "1e3",
	} {
		if _, err := ParseDecimal(input); err == nil {
			t.Errorf("ParseDecimal(%q): expected error", input)
		}
	}
}

func TestParseDecimal_Overflow(t *testing.T) {
	// Huge integer parts must be rejected, not wrapped back into range by
	// uint64 arithmetic.
	for _, input := range []string{
		"1844674407370955161.8",
		"1844674407370955162",
		"-1844674407370955161.8",
		"18446744073709551616", // > uint64
		"99999999999999999999.9",
	} {
		got, err := ParseDecimal(input)
		if err == nil {
			t.Errorf("ParseDecimal(%q) = %s, expected error", input, got)
		}
	}

	// The same path is reachable from a submission body.
	var d Decimal
	if err := json.Unmarshal([]byte(`1844674407370955161.8`), &d); err == nil {
		t.Errorf("unmarshal overflowing number = %s, expected error", d)
	}
}

func TestDecimalString(t *testing.T) {
	for _, tc := range []struct {
		value Decimal
		want  string
	}{
		{223, "22.3"},
		{220, "22.0"},
		{0, "0.0"},
		{-45, "-4.5"},
		{-5, "-0.5"},
	} {
		if got := tc.value.String(); got != tc.want {
			t.Errorf("Decimal(%d).String() = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestDecimalJSON(t *testing.T) {
	// Numbers and strings both decode; output is always a one-fractional-digit string.
	for _, input := range []string{`22.3`, `"22.3"`} {
		var d Decimal
		if err := json.Unmarshal([]byte(input), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if d != 223 {
			t.Fatalf("unmarshal %s = %d, want 223", input, d)
		}
	}

	out, err := json.Marshal(Decimal(223))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"22.3"` {
		t.Errorf("marshal = %s, want %q", out, `"22.3"`)
	}
}

func TestDecimalJSON_TooManyPlaces(t *testing.T) {
	var d Decimal
	if err := json.Unmarshal([]byte(`22.34`), &d); err == nil {
		t.Error("expected error for two fractional digits")
	}
}

func TestDecimalScan(t *testing.T) {
	var d Decimal
	if err := d.Scan([]byte("22.3")); err != nil || d != 223 {
		t.Errorf("Scan([]byte) = %d, %v", d, err)
	}
	if err := d.Scan("17.0"); err != nil || d != 170 {
		t.Errorf("Scan(string) = %d, %v", d, err)
	}
	if err := d.Scan(int64(5)); err != nil || d != 50 {
		t.Errorf("Scan(int64) = %d, %v", d, err)
	}
	if err := d.Scan(22.3); err != nil || d != 223 {
		t.Errorf("Scan(float64) = %d, %v", d, err)
	}
	if err := d.Scan(true); err == nil {
		t.Error("Scan(bool): expected error")
	}
}
