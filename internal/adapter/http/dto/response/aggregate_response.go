package response

import (
	"strings"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/usecase"

	"github.com/shopspring/decimal"
)

type AggregateResponse struct {
	BidID         string                      `json:"bid_id"`
	Total         float64                     `json:"total"`
	Display       string                      `json:"display"`
	LastPersisted *float64                    `json:"last_persisted,omitempty"`
	Status        string                      `json:"status"`
	Loading       bool                        `json:"loading"`
	Error         string                      `json:"error,omitempty"`
	LastUpdated   *time.Time                  `json:"last_updated,omitempty"`
	Breakdown     entities.AggregateBreakdown `json:"breakdown"`
}

func FromAggregateState(s usecase.AggregateState) AggregateResponse {
	res := AggregateResponse{
		BidID:         s.BidID,
		Total:         s.Total,
		Display:       DisplayTotal(s.Total, s.Error),
		LastPersisted: s.LastPersisted,
		Status:        string(s.Status),
		Loading:       s.Loading,
		Error:         s.Error,
		Breakdown:     s.Breakdown,
	}
	if !s.LastUpdated.IsZero() {
		t := s.LastUpdated
		res.LastUpdated = &t
	}
	return res
}

// DisplayTotal renders a total as "$1,234.50", followed by an inline error
// marker when the last persist or refresh failed.
func DisplayTotal(total float64, errMsg string) string {
	out := "$" + groupThousands(decimal.NewFromFloat(total).StringFixed(2))
	if errMsg != "" {
		out += " (Error: " + errMsg + ")"
	}
	return out
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
