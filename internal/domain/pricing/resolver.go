// Package pricing resolves one canonical price out of the candidate fields
// that manual entry, price-list matching and automated calculation leave on a
// line item.
//
// Every function here is pure. Results must be recomputed whenever a record
// changes because upstream stages rewrite candidates independently.
package pricing

import (
	"math"

	"bid_pricing/internal/domain/entities"
)

// Candidates are the price fields a resolution may draw from.
type Candidates struct {
	CalculatedUnitPrice   entities.Amount
	CalculatedTotalPrice  entities.Amount
	CalculationUnitPrice  entities.Amount
	CalculationTotalPrice entities.Amount
	PriceListUnitPrice    entities.Amount

	Pricing     entities.Amount
	Price       entities.Amount
	UnitPrice   entities.Amount
	TotalPrice  entities.Amount
	ProposedBid entities.Amount

	Quantity entities.Amount
}

// Resolution is the outcome of resolving a set of candidates.
type Resolution struct {
	UnitPrice   float64
	TotalPrice  float64
	ProposedBid float64
	Quantity    float64
}

// FromRecord collects candidates from a stored record.
func FromRecord(r entities.DemolitionRecord) Candidates {
	c := Candidates{
		CalculatedUnitPrice:  r.CalculatedUnitPrice,
		CalculatedTotalPrice: r.CalculatedTotalPrice,
		Pricing:              r.Pricing,
		Price:                r.Price,
		UnitPrice:            r.UnitPrice,
		TotalPrice:           r.TotalPrice,
		ProposedBid:          r.ProposedBid,
	}
	if r.PriceCalculation != nil {
		c.CalculationUnitPrice = r.PriceCalculation.UnitPrice
		c.CalculationTotalPrice = r.PriceCalculation.TotalPrice
	}
	if r.PriceListMatch != nil {
		c.PriceListUnitPrice = r.PriceListMatch.UnitPrice
	}
	if r.Measurements != nil {
		c.Quantity = r.Measurements.Quantity
	}
	return c
}

// FromLineItem collects candidates from a line item after a local edit.
//
// The item's own unit price stands in for the legacy unitPrice field; its
// derived total is not a candidate since it may be stale.
func FromLineItem(it entities.LineItem) Candidates {
	c := Candidates{
		CalculatedUnitPrice:  it.CalculatedUnitPrice,
		CalculatedTotalPrice: it.CalculatedTotalPrice,
		UnitPrice:            entities.NewAmount(it.UnitPrice),
		Quantity:             entities.NewAmount(float64(it.Quantity)),
	}
	if it.ProposedBid != nil {
		c.ProposedBid = entities.NewAmount(*it.ProposedBid)
	}
	if it.PriceCalculation != nil {
		c.CalculationUnitPrice = it.PriceCalculation.UnitPrice
		c.CalculationTotalPrice = it.PriceCalculation.TotalPrice
	}
	if it.PriceListMatch != nil {
		c.PriceListUnitPrice = it.PriceListMatch.UnitPrice
	}
	if it.Backend != nil {
		c.Pricing = it.Backend.Pricing
		c.Price = it.Backend.Price
		c.TotalPrice = it.Backend.TotalPrice
		// A fractional stored quantity still applies while the whole
		// quantity shown for it is unchanged.
		if q, ok := it.Backend.QuantityText.Positive(); ok && int(math.Max(1, math.Round(q))) == it.Quantity {
			c.Quantity = it.Backend.QuantityText
		}
	}
	return c
}

// ResolveUnitPrice: calculated unit price, price-calculation unit price,
// price-list match, then the legacy pricing, price and unitPrice fields.
func ResolveUnitPrice(c Candidates) float64 {
	return firstPositive(
		c.CalculatedUnitPrice,
		c.CalculationUnitPrice,
		c.PriceListUnitPrice,
		c.Pricing,
		c.Price,
		c.UnitPrice,
	)
}

// ResolveTotalPrice: calculated total, price-calculation total, unit price
// times quantity, then the legacy totalPrice, proposedBid and pricing fields.
func ResolveTotalPrice(c Candidates) float64 {
	if v, ok := pick(c.CalculatedTotalPrice, c.CalculationTotalPrice); ok {
		return v
	}
	if unit := ResolveUnitPrice(c); unit > 0 {
		if total := roundCents(unit * ResolveQuantity(c)); !math.IsInf(total, 0) {
			return total
		}
	}
	return firstPositive(c.TotalPrice, c.ProposedBid, c.Pricing)
}

// ResolveProposedBid is what the bid offers for the item. An explicit
// proposedBid always wins so a human override is never replaced by a
// recalculation; otherwise the bid is the resolved total price, with the
// legacy price field as the last resort.
func ResolveProposedBid(c Candidates) float64 {
	if v, ok := pick(c.ProposedBid); ok {
		return v
	}
	if v := ResolveTotalPrice(c); v > 0 {
		return v
	}
	return firstPositive(c.Price)
}

// ResolveQuantity defaults missing or invalid quantities to 1.
func ResolveQuantity(c Candidates) float64 {
	if q, ok := c.Quantity.Positive(); ok {
		return q
	}
	return 1
}

// Resolve runs every rule on the same candidates.
func Resolve(c Candidates) Resolution {
	return Resolution{
		UnitPrice:   ResolveUnitPrice(c),
		TotalPrice:  ResolveTotalPrice(c),
		ProposedBid: ResolveProposedBid(c),
		Quantity:    ResolveQuantity(c),
	}
}

func firstPositive(values ...entities.Amount) float64 {
	v, _ := pick(values...)
	return v
}

func pick(values ...entities.Amount) (float64, bool) {
	for _, a := range values {
		if v, ok := a.Positive(); ok {
			return v, true
		}
	}
	return 0, false
}

func roundCents(v float64) float64 {
	scaled := v * 100
	if math.IsInf(scaled, 0) {
		return v
	}
	return math.Round(scaled) / 100
}
