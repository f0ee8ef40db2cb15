package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"
	mock_interfaces "bid_pricing/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func storedItem(number, name, unitPrice, quantity string) entities.DemolitionRecord {
	return entities.DemolitionRecord{
		ItemNumber:   entities.Identifier(number),
		Name:         name,
		Description:  name,
		Category:     entities.BackendCategoryDemolition,
		Measurements: &entities.Measurements{Quantity: entities.Amount(quantity), Unit: "Each"},
		UnitPrice:    entities.Amount(unitPrice),
	}
}

func echoRecord(_ context.Context, _ string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
	return rec, nil
}

func newLoadedItemSync(t *testing.T, ctrl *gomock.Controller, records ...entities.DemolitionRecord) (*ItemSyncUseCase, *mock_interfaces.MockIDemolitionItemRepository) {
	t.Helper()
	repo := mock_interfaces.NewMockIDemolitionItemRepository(ctrl)
	repo.EXPECT().FetchByBid(gomock.Any(), "bid-1").Return(mapping.Envelope{Shape: mapping.ShapeItems, Items: records}, nil)
	uc := NewItemSyncUseCase(repo, nil, NewAggregateSyncUseCase(nil, nil, nil, time.Hour), nil)
	if _, err := uc.Load(context.Background(), "bid-1"); err != nil {
		t.Fatalf("unexpected load err: %v", err)
	}
	return uc, repo
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func expectValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != field {
		t.Fatalf("expected field %q, got %q", field, verr.Field)
	}
}

func TestItemSync_Load(t *testing.T) {
	t.Run("merges local-only rows from the cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIDemolitionItemRepository(ctrl)
		cache := mock_interfaces.NewMockISnapshotStore(ctrl)
		uc := NewItemSyncUseCase(repo, cache, NewAggregateSyncUseCase(nil, nil, nil, time.Hour), nil)

		cached, _ := json.Marshal([]entities.LineItem{
			{ID: "D-1", Name: "stale copy", Category: entities.CategoryDemolition, ProposedTotal: 1},
			{ID: "temp-permit", Name: "Permit", Category: entities.CategoryRegular, Quantity: 1, ProposedTotal: 50},
		})
		cache.EXPECT().Get(gomock.Any(), "demolition-items:bid-1").Return(cached, true, nil)
		repo.EXPECT().FetchByBid(gomock.Any(), "bid-1").Return(mapping.Envelope{
			Shape: mapping.ShapeAIExtracted,
			Items: []entities.DemolitionRecord{storedItem("D-1", "Remove wall", "10", "3")},
		}, nil)
		cache.EXPECT().Put(gomock.Any(), "demolition-items:bid-1", gomock.Any()).Return(nil)

		res, err := uc.Load(context.Background(), "bid-1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Source != ItemsSourceBackend || len(res.Warnings) != 0 {
			t.Fatalf("unexpected result %+v", res)
		}
		if len(res.Items) != 2 || res.Items[0].Name != "Remove wall" || res.Items[1].Name != "Permit" {
			t.Fatalf("unexpected items %+v", res.Items)
		}
		if res.Aggregate.Total != 80 {
			t.Fatalf("expected total 80, got %v", res.Aggregate.Total)
		}
	})

	t.Run("store failure restores the cached list", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIDemolitionItemRepository(ctrl)
		cache := mock_interfaces.NewMockISnapshotStore(ctrl)
		uc := NewItemSyncUseCase(repo, cache, NewAggregateSyncUseCase(nil, nil, nil, time.Hour), nil)

		cached, _ := json.Marshal([]entities.LineItem{{ID: "D-1", Name: "Remove wall", Category: entities.CategoryDemolition, ProposedTotal: 30}})
		cache.EXPECT().Get(gomock.Any(), "demolition-items:bid-1").Return(cached, true, nil)
		repo.EXPECT().FetchByBid(gomock.Any(), "bid-1").Return(mapping.Envelope{}, errors.New("connection refused"))

		res, err := uc.Load(context.Background(), "bid-1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Source != ItemsSourceCache || len(res.Items) != 1 || len(res.Warnings) != 1 {
			t.Fatalf("unexpected result %+v", res)
		}
		if !strings.Contains(res.Warnings[0], "connection refused") {
			t.Fatalf("unexpected warning %q", res.Warnings[0])
		}
		if res.Aggregate.Total != 30 {
			t.Fatalf("expected cached total 30, got %v", res.Aggregate.Total)
		}
	})

	t.Run("invalid bid id", func(t *testing.T) {
		uc := NewItemSyncUseCase(nil, nil, nil, nil)
		if _, err := uc.Load(context.Background(), ""); !errors.Is(err, ErrInvalidBidID) {
			t.Fatalf("expected ErrInvalidBidID, got %v", err)
		}
	})
}

func TestItemSync_Create(t *testing.T) {
	t.Run("pipeline item gets the store key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl)

		repo.EXPECT().Create(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
			if !strings.HasPrefix(rec.ItemNumber.String(), "ITEM-") {
				t.Fatalf("expected generated key, got %q", rec.ItemNumber)
			}
			if rec.UnitPrice != "50" || rec.TotalPrice != "100" || rec.Measurements.Quantity != "2" {
				t.Fatalf("unexpected record %+v", rec)
			}
			return rec, nil
		})

		res, err := uc.Create(context.Background(), "bid-1", entities.LineItem{
			Name: "Remove ceiling", Category: entities.CategoryCeiling, Quantity: 2, UnitPrice: 50,
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !strings.HasPrefix(res.Item.ID, "ITEM-") || res.Item.SyncStatus != entities.SyncStatusClean {
			t.Fatalf("unexpected item %+v", res.Item)
		}
		if res.Item.ProposedTotal != 100 || res.Aggregate.Total != 100 {
			t.Fatalf("expected 100, got item=%v total=%v", res.Item.ProposedTotal, res.Aggregate.Total)
		}
		if res.Item.Category != entities.CategoryCeiling {
			t.Fatalf("expected Ceiling, got %q", res.Item.Category)
		}
	})

	t.Run("manual item stays local", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newLoadedItemSync(t, ctrl)

		res, err := uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "Permit fee", UnitPrice: 75})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !mapping.IsNewItem(res.Item.ID) || res.Item.Category != entities.CategoryRegular {
			t.Fatalf("unexpected item %+v", res.Item)
		}
		if res.Item.SyncStatus != entities.SyncStatusClean || res.Aggregate.Total != 75 {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("store failure keeps the item and retries through create", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl)

		gomock.InOrder(
			repo.EXPECT().Create(gomock.Any(), "bid-1", gomock.Any()).Return(entities.DemolitionRecord{}, errors.New("503")),
			repo.EXPECT().Create(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(echoRecord),
		)

		res, err := uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "Remove door", Category: entities.CategoryDoor, UnitPrice: 40})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Item.SyncStatus != entities.SyncStatusSyncFailed || len(res.Warnings) != 1 {
			t.Fatalf("expected sync_failed with a warning, got %+v", res)
		}
		if !mapping.IsNewItem(res.Item.ID) {
			t.Fatalf("expected temp id, got %q", res.Item.ID)
		}

		retry, err := uc.Update(context.Background(), "bid-1", res.Item.ID, LineItemPatch{Notes: strPtr("two doors")})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if retry.Item.SyncStatus != entities.SyncStatusClean || mapping.IsNewItem(retry.Item.ID) {
			t.Fatalf("expected synced item, got %+v", retry.Item)
		}
		list, _ := uc.Items(context.Background(), "bid-1")
		if len(list.Items) != 1 || list.Items[0].ID != retry.Item.ID {
			t.Fatalf("expected one rekeyed item, got %+v", list.Items)
		}
	})

	t.Run("validation", func(t *testing.T) {
		uc := NewItemSyncUseCase(nil, nil, nil, nil)
		_, err := uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "  "})
		expectValidation(t, err, "name")

		_, err = uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "x", UnitPrice: -1})
		expectValidation(t, err, "unit_price")

		_, err = uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "x", ProposedBid: floatPtr(-5)})
		expectValidation(t, err, "proposed_bid")

		if _, err := uc.Create(context.Background(), " ", entities.LineItem{Name: "x"}); !errors.Is(err, ErrInvalidBidID) {
			t.Fatalf("expected ErrInvalidBidID, got %v", err)
		}
	})
}

func TestItemSync_Update(t *testing.T) {
	t.Run("explicit bid is pushed and wins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		rec := storedItem("D-1", "Remove wall", "10", "1")
		rec.CalculatedTotalPrice = "800"
		uc, repo := newLoadedItemSync(t, ctrl, rec)

		repo.EXPECT().Update(gomock.Any(), "bid-1", "D-1", gomock.Any()).DoAndReturn(func(_ context.Context, _, _ string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
			if rec.ProposedBid != "500" {
				t.Fatalf("expected proposedBid 500, got %q", rec.ProposedBid)
			}
			return rec, nil
		})

		res, err := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{ProposedBid: floatPtr(500)})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Item.ProposedTotal != 500 || res.Aggregate.Total != 500 {
			t.Fatalf("expected 500, got item=%v total=%v", res.Item.ProposedTotal, res.Aggregate.Total)
		}
		if res.Item.SyncStatus != entities.SyncStatusClean {
			t.Fatalf("expected clean, got %s", res.Item.SyncStatus)
		}
	})

	t.Run("shadowed unit price is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		rec := storedItem("D-1", "Remove wall", "10", "1")
		rec.CalculatedUnitPrice = "25"
		uc, _ := newLoadedItemSync(t, ctrl, rec)

		_, err := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{UnitPrice: floatPtr(12)})
		expectValidation(t, err, "unit_price")

		list, _ := uc.Items(context.Background(), "bid-1")
		if list.Items[0].UnitPrice != 25 {
			t.Fatalf("expected untouched item, got %+v", list.Items[0])
		}
	})

	t.Run("quantity below one is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newLoadedItemSync(t, ctrl, storedItem("D-1", "Remove wall", "10", "1"))

		_, err := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{Quantity: intPtr(0)})
		expectValidation(t, err, "quantity")
	})

	t.Run("store failure is a warning", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl, storedItem("D-1", "Remove wall", "10", "1"))

		repo.EXPECT().Update(gomock.Any(), "bid-1", "D-1", gomock.Any()).Return(entities.DemolitionRecord{}, errors.New("timeout"))

		res, err := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{Name: strPtr("Remove partition"), Quantity: intPtr(4)})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Item.SyncStatus != entities.SyncStatusSyncFailed || len(res.Warnings) != 1 {
			t.Fatalf("expected sync_failed with warning, got %+v", res)
		}
		if res.Item.Name != "Remove partition" || res.Item.Measurement != "4 Each" || res.Item.ProposedTotal != 40 {
			t.Fatalf("local edit should be kept, got %+v", res.Item)
		}
	})

	t.Run("missing store item is recreated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl, storedItem("D-1", "Remove wall", "10", "1"))

		gomock.InOrder(
			repo.EXPECT().Update(gomock.Any(), "bid-1", "D-1", gomock.Any()).Return(entities.DemolitionRecord{}, nil),
			repo.EXPECT().Create(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(echoRecord),
		)

		res, err := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{Notes: strPtr("recheck")})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Item.ID != "D-1" || res.Item.SyncStatus != entities.SyncStatusClean {
			t.Fatalf("unexpected item %+v", res.Item)
		}
	})

	t.Run("moving to a manual category removes it from the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl, storedItem("D-1", "Remove wall", "10", "1"))

		repo.EXPECT().Delete(gomock.Any(), "bid-1", "D-1").Return(nil)

		regular := entities.CategoryRegular
		res, err := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{Category: &regular})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.Item.Category != entities.CategoryRegular || res.Aggregate.Breakdown.ManualItems != 1 {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newLoadedItemSync(t, ctrl)

		if _, err := uc.Update(context.Background(), "bid-1", "nope", LineItemPatch{}); !errors.Is(err, ErrLineItemNotFound) {
			t.Fatalf("expected ErrLineItemNotFound, got %v", err)
		}
	})
}

func TestItemSync_OutOfOrderResponses(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc, repo := newLoadedItemSync(t, ctrl, storedItem("D-1", "Remove wall", "10", "1"))

	started := make(chan struct{})
	release := make(chan struct{})
	repo.EXPECT().Update(gomock.Any(), "bid-1", "D-1", gomock.Any()).DoAndReturn(func(_ context.Context, _, _ string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
		if rec.Name == "first" {
			close(started)
			<-release
		}
		return rec, nil
	}).Times(2)

	done := make(chan ItemResult)
	go func() {
		res, _ := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{Name: strPtr("first"), ProposedBid: floatPtr(100)})
		done <- res
	}()
	<-started

	second, err := uc.Update(context.Background(), "bid-1", "D-1", LineItemPatch{Name: strPtr("second"), ProposedBid: floatPtr(200)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if second.Item.Name != "second" {
		t.Fatalf("expected second edit applied, got %+v", second.Item)
	}

	close(release)
	first := <-done
	if first.Item.Name != "second" {
		t.Fatalf("stale response must not win, got %+v", first.Item)
	}

	list, _ := uc.Items(context.Background(), "bid-1")
	if len(list.Items) != 1 || list.Items[0].Name != "second" || list.Items[0].ProposedTotal != 200 {
		t.Fatalf("unexpected items %+v", list.Items)
	}
	if list.Aggregate.Total != 200 {
		t.Fatalf("expected total 200, got %v", list.Aggregate.Total)
	}
}

func TestItemSync_Delete(t *testing.T) {
	t.Run("store failure keeps the local removal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl, storedItem("D-1", "Remove wall", "10", "1"), storedItem("D-2", "Remove sink", "5", "2"))

		repo.EXPECT().Delete(gomock.Any(), "bid-1", "D-1").Return(errors.New("500"))

		res, err := uc.Delete(context.Background(), "bid-1", "D-1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(res.Warnings) != 1 || res.Aggregate.Total != 10 {
			t.Fatalf("unexpected result %+v", res)
		}
		list, _ := uc.Items(context.Background(), "bid-1")
		if len(list.Items) != 1 || list.Items[0].ID != "D-2" {
			t.Fatalf("unexpected items %+v", list.Items)
		}
	})

	t.Run("manual item never reaches the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newLoadedItemSync(t, ctrl)

		created, _ := uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "Permit"})
		if _, err := uc.Delete(context.Background(), "bid-1", created.Item.ID); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if _, err := uc.Delete(context.Background(), "bid-1", created.Item.ID); !errors.Is(err, ErrLineItemNotFound) {
			t.Fatalf("expected ErrLineItemNotFound, got %v", err)
		}
	})
}

func TestItemSync_ReplaceAll(t *testing.T) {
	t.Run("pushes only pipeline items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl)

		repo.EXPECT().ReplaceAll(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, recs []entities.DemolitionRecord) ([]entities.DemolitionRecord, error) {
			if len(recs) != 1 || !strings.HasPrefix(recs[0].ItemNumber.String(), "ITEM-") {
				t.Fatalf("unexpected records %+v", recs)
			}
			return recs, nil
		})

		res, err := uc.ReplaceAll(context.Background(), "bid-1", []entities.LineItem{
			{Name: "Remove carpet", Category: entities.CategoryFloor, Quantity: 2, UnitPrice: 5},
			{Name: "Dumpster", Category: entities.CategoryRegular, UnitPrice: 7},
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(res.Items) != 2 || !strings.HasPrefix(res.Items[0].ID, "ITEM-") || !mapping.IsNewItem(res.Items[1].ID) {
			t.Fatalf("unexpected items %+v", res.Items)
		}
		if res.Items[0].SyncStatus != entities.SyncStatusClean || res.Aggregate.Total != 17 {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("store failure marks pipeline items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl)

		repo.EXPECT().ReplaceAll(gomock.Any(), "bid-1", gomock.Any()).Return(nil, errors.New("throttled"))

		res, err := uc.ReplaceAll(context.Background(), "bid-1", []entities.LineItem{
			{ID: "D-1", Name: "Remove carpet", Category: entities.CategoryFloor, UnitPrice: 5},
			{Name: "Dumpster", UnitPrice: 7},
		})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(res.Warnings) != 1 || res.Items[0].SyncStatus != entities.SyncStatusSyncFailed || res.Items[1].SyncStatus != entities.SyncStatusClean {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("validation names the row", func(t *testing.T) {
		uc := NewItemSyncUseCase(mock_interfaces.NewMockIDemolitionItemRepository(gomock.NewController(t)), nil, nil, nil)
		_, err := uc.ReplaceAll(context.Background(), "bid-1", []entities.LineItem{{Name: "ok"}, {Name: ""}})
		expectValidation(t, err, "items[1].name")

		_, err = uc.ReplaceAll(context.Background(), "bid-1", []entities.LineItem{{ID: "A", Name: "a"}, {ID: "A", Name: "b"}})
		expectValidation(t, err, "items[1].id")
	})
}

func TestItemSync_ReplaceAllKeepsStoredFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	rec := storedItem("D-1", "Remove wall", "10", "3")
	rec.Action = "Demolish"
	rec.CalculatedUnitPrice = "25"
	rec.OriginalBidItem = json.RawMessage(`{"line":4}`)
	rec.Extra = map[string]json.RawMessage{"crew": json.RawMessage(`"B"`)}
	uc, repo := newLoadedItemSync(t, ctrl, rec)

	list, _ := uc.Items(context.Background(), "bid-1")
	loaded := list.Items[0]
	// the rows a client sends back carry only the editable fields
	row := entities.LineItem{
		ID:          loaded.ID,
		Name:        loaded.Name,
		Description: loaded.Description,
		Quantity:    loaded.Quantity,
		Unit:        loaded.Unit,
		Category:    loaded.Category,
		UnitPrice:   loaded.UnitPrice,
		Notes:       "edited",
	}

	repo.EXPECT().ReplaceAll(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, recs []entities.DemolitionRecord) ([]entities.DemolitionRecord, error) {
		if len(recs) != 1 {
			t.Fatalf("expected 1 record, got %d", len(recs))
		}
		got := recs[0]
		if got.ItemNumber != "D-1" || got.Action != "Demolish" || got.CalculatedUnitPrice != "25" {
			t.Fatalf("expected stored fields kept, got %+v", got)
		}
		if string(got.OriginalBidItem) != `{"line":4}` {
			t.Fatalf("expected originalBidItem kept, got %s", got.OriginalBidItem)
		}
		if string(got.Extra["crew"]) != `"B"` {
			t.Fatalf("expected extra key kept, got %v", got.Extra)
		}
		if got.UnitPrice != "10" || got.Notes != "edited" {
			t.Fatalf("expected unitPrice 10 and the new notes, got %+v", got)
		}
		return recs, nil
	})

	res, err := uc.ReplaceAll(context.Background(), "bid-1", []entities.LineItem{row})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Backend == nil || res.Items[0].Backend.Action != "Demolish" {
		t.Fatalf("expected backend fields on the merged item, got %+v", res.Items)
	}
	if res.Items[0].SyncStatus != entities.SyncStatusClean || res.Items[0].Notes != "edited" {
		t.Fatalf("unexpected item %+v", res.Items[0])
	}
}

// waitForItem polls the bid's session until an item satisfies cond.
func waitForItem(uc *ItemSyncUseCase, cond func(entities.LineItem) bool) (entities.LineItem, bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := uc.session("bid-1")
		s.mu.Lock()
		items := s.snapshot()
		s.mu.Unlock()
		for _, it := range items {
			if cond(it) {
				return it, true
			}
		}
		time.Sleep(time.Millisecond)
	}
	return entities.LineItem{}, false
}

func TestItemSync_InFlightCreate(t *testing.T) {
	t.Run("concurrent creates get distinct keys", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl)
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		uc.now = func() time.Time { return fixed }

		var mu sync.Mutex
		keys := map[string]bool{}
		repo.EXPECT().Create(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
			mu.Lock()
			keys[rec.ItemNumber.String()] = true
			mu.Unlock()
			return rec, nil
		}).Times(5)

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "Remove door", Category: entities.CategoryDoor, UnitPrice: 40}); err != nil {
					t.Errorf("unexpected err: %v", err)
				}
			}()
		}
		wg.Wait()

		if len(keys) != 5 {
			t.Fatalf("expected 5 distinct keys, got %v", keys)
		}
		list, _ := uc.Items(context.Background(), "bid-1")
		if len(list.Items) != 5 || list.Aggregate.Total != 200 {
			t.Fatalf("expected 5 items totalling 200, got %+v", list)
		}
	})

	t.Run("edit during create updates the created record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl)

		started := make(chan struct{})
		release := make(chan struct{})
		var createdKey string
		repo.EXPECT().Create(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
			createdKey = rec.ItemNumber.String()
			close(started)
			<-release
			return rec, nil
		}).Times(1)
		repo.EXPECT().Update(gomock.Any(), "bid-1", gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _, key string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
			if key != createdKey || rec.ItemNumber.String() != createdKey {
				t.Errorf("expected update of %q, got key=%q record=%q", createdKey, key, rec.ItemNumber)
			}
			if rec.Notes != "two doors" {
				t.Errorf("expected the edit in the update, got %+v", rec)
			}
			return rec, nil
		}).Times(1)

		created := make(chan ItemResult)
		go func() {
			res, _ := uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "Remove door", Category: entities.CategoryDoor, UnitPrice: 40})
			created <- res
		}()
		<-started
		temp, ok := waitForItem(uc, func(it entities.LineItem) bool { return mapping.IsNewItem(it.ID) })
		if !ok {
			t.Fatalf("expected a pending item")
		}

		go func() {
			// the edit is published before it waits on the create
			waitForItem(uc, func(it entities.LineItem) bool { return it.Notes == "two doors" })
			close(release)
		}()
		edited, err := uc.Update(context.Background(), "bid-1", temp.ID, LineItemPatch{Notes: strPtr("two doors")})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		<-created

		if edited.Item.ID != createdKey || edited.Item.SyncStatus != entities.SyncStatusClean || len(edited.Warnings) != 0 {
			t.Fatalf("expected clean item %q, got %+v", createdKey, edited)
		}
		list, _ := uc.Items(context.Background(), "bid-1")
		if len(list.Items) != 1 || list.Items[0].ID != createdKey || list.Items[0].Notes != "two doors" {
			t.Fatalf("expected one stored item, got %+v", list.Items)
		}
	})

	t.Run("delete during create removes the created record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, repo := newLoadedItemSync(t, ctrl)

		started := make(chan struct{})
		release := make(chan struct{})
		var createdKey string
		repo.EXPECT().Create(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
			createdKey = rec.ItemNumber.String()
			close(started)
			<-release
			return rec, nil
		})
		repo.EXPECT().Delete(gomock.Any(), "bid-1", gomock.Any()).DoAndReturn(func(_ context.Context, _, key string) error {
			if key != createdKey {
				t.Errorf("expected delete of %q, got %q", createdKey, key)
			}
			return nil
		}).Times(1)

		created := make(chan ItemResult)
		go func() {
			res, _ := uc.Create(context.Background(), "bid-1", entities.LineItem{Name: "Remove door", Category: entities.CategoryDoor, UnitPrice: 40})
			created <- res
		}()
		<-started
		temp, ok := waitForItem(uc, func(it entities.LineItem) bool { return mapping.IsNewItem(it.ID) })
		if !ok {
			t.Fatalf("expected a pending item")
		}

		if _, err := uc.Delete(context.Background(), "bid-1", temp.ID); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		close(release)
		<-created

		list, _ := uc.Items(context.Background(), "bid-1")
		if len(list.Items) != 0 || list.Aggregate.Total != 0 {
			t.Fatalf("expected no items, got %+v", list)
		}
	})
}

func TestItemSync_EvictIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc, repo := newLoadedItemSync(t, ctrl, storedItem("D-1", "Remove wall", "10", "1"))

	clock := time.Now().UTC()
	uc.now = func() time.Time { return clock }
	busy := uc.session("bid-2")
	busy.begin()

	clock = clock.Add(2 * time.Hour)
	if n := uc.EvictIdle(time.Hour); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, ok := uc.sessions["bid-2"]; !ok {
		t.Fatalf("expected the busy session to stay")
	}
	busy.end()

	repo.EXPECT().FetchByBid(gomock.Any(), "bid-1").Return(mapping.Envelope{Shape: mapping.ShapeItems, Items: []entities.DemolitionRecord{storedItem("D-1", "Remove wall", "10", "1")}}, nil)
	list, err := uc.Items(context.Background(), "bid-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if list.Source != ItemsSourceBackend || len(list.Items) != 1 {
		t.Fatalf("expected a fresh load, got %+v", list)
	}
}
