package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a numeric value carried as a string on the wire.
//
// The backend contract serializes every number as a string, but upstream
// stages occasionally emit bare JSON numbers. Both decode into Amount and
// the raw text is kept so a value that never parses still round-trips.
type Amount string

// NewAmount formats v the way the store expects it.
func NewAmount(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return Amount(strconv.FormatFloat(v, 'f', -1, 64))
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	// Numbers, booleans or anything else: keep the literal text.
	*a = Amount(b)
	return nil
}

// Float parses the amount. Currency symbols and thousands separators are
// tolerated; NaN and infinities are not numbers.
func (a Amount) Float() (float64, bool) {
	s := strings.TrimSpace(string(a))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Positive returns the parsed value only when it is strictly greater than zero.
func (a Amount) Positive() (float64, bool) {
	v, ok := a.Float()
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// OrZero parses the amount, defaulting to 0.
func (a Amount) OrZero() float64 {
	v, _ := a.Float()
	return v
}

func (a Amount) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// Identifier is a key that may arrive as a JSON string or number.
type Identifier string

func (id *Identifier) UnmarshalJSON(b []byte) error {
	var a Amount
	if err := a.UnmarshalJSON(b); err != nil {
		return err
	}
	*id = Identifier(a)
	return nil
}

func (id Identifier) String() string {
	return strings.TrimSpace(string(id))
}
