// Package mapping translates between the bid item shape the front end edits
// and the demolition record shape the item store keeps.
package mapping

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/pricing"

	"github.com/google/uuid"
)

const (
	UnnamedItem        = "Unnamed Item"
	NoDescription      = "No description"
	MeasurementTBD     = "TBD"
	DefaultUnit        = "Each"
	TempIDPrefix       = "temp-"
	generatedKeyPrefix = "ITEM"
)

// NewTempID returns an identifier for an item the store has not seen yet.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsNewItem reports whether id still needs a store key.
func IsNewItem(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || strings.HasPrefix(id, TempIDPrefix)
}

// NewItemKey builds a store key unique within a batch.
func NewItemKey(now time.Time, ordinal int) string {
	return fmt.Sprintf("%s-%d-%03d", generatedKeyPrefix, now.UTC().UnixMilli(), ordinal)
}

// NewSingleItemKey builds a store key for an item created on its own. The
// random suffix keeps creates within the same millisecond apart.
func NewSingleItemKey(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", generatedKeyPrefix, now.UTC().UnixMilli(), suffix)
}

// ToLineItems maps every record; none is dropped.
func ToLineItems(records []entities.DemolitionRecord) []entities.LineItem {
	out := make([]entities.LineItem, 0, len(records))
	for _, r := range records {
		out = append(out, ToLineItem(r))
	}
	return out
}

// ToLineItem maps a stored record to the bid item the front end renders.
func ToLineItem(r entities.DemolitionRecord) entities.LineItem {
	res := pricing.Resolve(pricing.FromRecord(r))

	var m entities.Measurements
	if r.Measurements != nil {
		m = *r.Measurements
	}

	it := entities.LineItem{
		ID:                   recordID(r),
		Name:                 recordName(r),
		Description:          strings.TrimSpace(r.Description),
		Measurement:          FormatMeasurement(string(m.Quantity), m.Unit, res.Quantity),
		Quantity:             wholeQuantity(res.Quantity),
		Unit:                 unitOrDefault(m.Unit),
		Category:             ToUICategory(r.Category),
		UnitPrice:            res.UnitPrice,
		TotalPrice:           res.TotalPrice,
		ProposedTotal:        res.ProposedBid,
		Notes:                r.Notes,
		CalculatedUnitPrice:  r.CalculatedUnitPrice,
		CalculatedTotalPrice: r.CalculatedTotalPrice,
		PriceListMatch:       r.PriceListMatch,
		PriceCalculation:     r.PriceCalculation,
		SyncStatus:           entities.SyncStatusClean,
		Backend: &entities.BackendFields{
			ItemNumber:       r.ItemNumber.String(),
			ID:               r.ID.String(),
			BackendID:        r.BackendID.String(),
			Category:         r.Category,
			Action:           r.Action,
			QuantityText:     m.Quantity,
			Dimensions:       m.Dimensions,
			MeasurementExtra: entities.CloneExtra(m.Extra),
			UnitPrice:        r.UnitPrice,
			TotalPrice:       r.TotalPrice,
			Pricing:          r.Pricing,
			Price:            r.Price,
			Active:           r.Active,
			OriginalBidItem:  r.OriginalBidItem,
			Extra:            entities.CloneExtra(r.Extra),
		},
	}
	if v, ok := r.ProposedBid.Positive(); ok {
		it.ProposedBid = &v
	}
	return it
}

// ToDemolitionRecords maps a batch, giving new items keys that are unique
// within the batch.
func ToDemolitionRecords(items []entities.LineItem, now time.Time) []entities.DemolitionRecord {
	out := make([]entities.DemolitionRecord, 0, len(items))
	for i, it := range items {
		out = append(out, ToDemolitionRecord(it, i, now))
	}
	return out
}

// ToDemolitionRecord maps a bid item back into the store shape. Values the
// item carried from the store are written back unchanged.
func ToDemolitionRecord(it entities.LineItem, ordinal int, now time.Time) entities.DemolitionRecord {
	b := entities.BackendFields{}
	if it.Backend != nil {
		b = *it.Backend
	}

	key := strings.TrimSpace(it.ID)
	if IsNewItem(key) {
		key = NewItemKey(now, ordinal)
	}

	name := strings.TrimSpace(it.Name)
	rec := entities.DemolitionRecord{
		ItemNumber:           entities.Identifier(key),
		ID:                   entities.Identifier(b.ID),
		BackendID:            entities.Identifier(b.BackendID),
		Name:                 name,
		Description:          firstNonBlank(it.Description, name, NoDescription),
		Category:             backendCategoryFor(it.Category, b.Category),
		Action:               firstNonBlank(b.Action, entities.DefaultAction),
		Pricing:              b.Pricing,
		Price:                b.Price,
		CalculatedUnitPrice:  it.CalculatedUnitPrice,
		CalculatedTotalPrice: it.CalculatedTotalPrice,
		PriceListMatch:       it.PriceListMatch,
		PriceCalculation:     it.PriceCalculation,
		Notes:                it.Notes,
		Active:               b.Active,
		OriginalBidItem:      b.OriginalBidItem,
		Extra:                entities.CloneExtra(b.Extra),
		Measurements: &entities.Measurements{
			Quantity:   quantityText(it.Quantity, b.QuantityText),
			Unit:       unitOrDefault(it.Unit),
			Dimensions: b.Dimensions,
			Extra:      entities.CloneExtra(b.MeasurementExtra),
		},
	}
	rec.UnitPrice, rec.TotalPrice = storedPrices(it)
	if it.ProposedBid != nil && *it.ProposedBid > 0 {
		rec.ProposedBid = entities.NewAmount(*it.ProposedBid)
	}
	if rec.Active == nil {
		active := true
		rec.Active = &active
	}
	if len(rec.OriginalBidItem) == 0 {
		rec.OriginalBidItem = originalSnapshot(it)
	}
	return rec
}

// Refresh re-derives the display prices of an item after a local edit.
func Refresh(it entities.LineItem) entities.LineItem {
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	it.Unit = unitOrDefault(it.Unit)
	if strings.TrimSpace(string(it.Category)) == "" {
		it.Category = entities.CategoryRegular
	}
	res := pricing.Resolve(pricing.FromLineItem(it))
	it.UnitPrice = res.UnitPrice
	it.TotalPrice = res.TotalPrice
	it.ProposedTotal = res.ProposedBid
	if strings.TrimSpace(it.Measurement) == "" {
		it.Measurement = FormatMeasurement(strconv.Itoa(it.Quantity), it.Unit, float64(it.Quantity))
	}
	return it
}

// FormatMeasurement renders "<quantity> <unit>". Missing parts default to
// 1 and Each; with neither a quantity nor a unit the measurement is TBD.
func FormatMeasurement(quantityText, unit string, quantity float64) string {
	quantityText = strings.TrimSpace(quantityText)
	unit = strings.TrimSpace(unit)
	if quantityText == "" && unit == "" {
		return MeasurementTBD
	}
	if quantity <= 0 {
		quantity = 1
	}
	return strconv.FormatFloat(quantity, 'f', -1, 64) + " " + unitOrDefault(unit)
}

func recordID(r entities.DemolitionRecord) string {
	if id := firstNonBlank(r.ItemNumber.String(), r.ID.String(), r.BackendID.String()); id != "" {
		return id
	}
	return "item-" + uuid.NewString()
}

func recordName(r entities.DemolitionRecord) string {
	return firstNonBlank(r.Name, r.Description, r.OriginalDescription(), UnnamedItem)
}

// backendCategoryFor keeps the stored token while it still maps to the same
// label, so unusual tokens survive a round trip.
func backendCategoryFor(c entities.UICategory, stored entities.BackendCategory) entities.BackendCategory {
	if strings.TrimSpace(string(stored)) != "" && ToUICategory(stored) == c {
		return stored
	}
	return ToBackendCategory(c)
}

// storedPrices keeps the legacy unitPrice and totalPrice the record carried
// while the item still resolves to the same prices with them. An edited unit
// price or quantity writes the resolved values instead, as does a new item.
func storedPrices(it entities.LineItem) (unit, total entities.Amount) {
	if it.Backend == nil {
		return entities.NewAmount(it.UnitPrice), entities.NewAmount(it.TotalPrice)
	}
	b := it.Backend

	c := pricing.FromLineItem(it)
	c.UnitPrice = b.UnitPrice
	unit = b.UnitPrice
	if pricing.ResolveUnitPrice(c) != it.UnitPrice {
		unit = entities.NewAmount(it.UnitPrice)
	}

	quantityKept := quantityText(it.Quantity, b.QuantityText) == b.QuantityText ||
		(b.QuantityText.IsZero() && it.Quantity == 1)
	if unit == b.UnitPrice && quantityKept {
		return unit, b.TotalPrice
	}
	return unit, entities.NewAmount(it.TotalPrice)
}

func quantityText(quantity int, stored entities.Amount) entities.Amount {
	if q, ok := stored.Positive(); ok && wholeQuantity(q) == quantity {
		return stored
	}
	if quantity < 1 {
		quantity = 1
	}
	return entities.Amount(strconv.Itoa(quantity))
}

func wholeQuantity(q float64) int {
	if q < 1 || math.IsNaN(q) {
		return 1
	}
	if q > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(q))
}

func unitOrDefault(unit string) string {
	if u := strings.TrimSpace(unit); u != "" {
		return u
	}
	return DefaultUnit
}

func originalSnapshot(it entities.LineItem) json.RawMessage {
	snap := struct {
		Name          string              `json:"name"`
		Description   string              `json:"description,omitempty"`
		Measurement   string              `json:"measurement"`
		Quantity      int                 `json:"quantity"`
		Unit          string              `json:"unit"`
		Category      entities.UICategory `json:"category"`
		UnitPrice     float64             `json:"unitPrice"`
		ProposedTotal float64             `json:"proposedTotal"`
	}{
		Name:          it.Name,
		Description:   it.Description,
		Measurement:   it.Measurement,
		Quantity:      it.Quantity,
		Unit:          it.Unit,
		Category:      it.Category,
		UnitPrice:     it.UnitPrice,
		ProposedTotal: it.ProposedTotal,
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return nil
	}
	return b
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
