package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"
	"bid_pricing/internal/domain/pricing"
	"bid_pricing/internal/usecase/interfaces"

	"golang.org/x/sync/singleflight"
)

var ErrLineItemNotFound = errors.New("line item not found")

// ValidationError rejects one field of a save; other items are untouched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

const (
	opFetch      = "fetch"
	opCreate     = "create"
	opUpdate     = "update"
	opDelete     = "delete"
	opReplaceAll = "replace_all"
)

// ItemsSource tells where a Load found its items.
type ItemsSource string

const (
	ItemsSourceBackend ItemsSource = "backend"
	ItemsSourceCache   ItemsSource = "cache"
	ItemsSourceSession ItemsSource = "session"
)

// ItemsResult is the rendered item list of a bid. Warnings carry store
// failures that did not block the local change.
type ItemsResult struct {
	Items     []entities.LineItem
	Aggregate AggregateState
	Warnings  []string
	Source    ItemsSource
}

// ItemResult is the outcome of a single item mutation.
type ItemResult struct {
	Item      entities.LineItem
	Aggregate AggregateState
	Warnings  []string
}

// LineItemPatch lists the fields an update changes; nil fields are kept.
type LineItemPatch struct {
	Name             *string
	Description      *string
	Measurement      *string
	Quantity         *int
	Unit             *string
	Category         *entities.UICategory
	UnitPrice        *float64
	ProposedBid      *float64
	ClearProposedBid bool
	Notes            *string
}

// IItemSyncUseCase applies item edits locally first and then pushes them to
// the item store.
//
// Requested behavior:
//   - Local state is replaced before any store call and is never rolled back.
//   - Only demolition pipeline items reach the store; manual rows stay local.
//   - A store response older than the item's latest edit is ignored.
//   - A new item is created in the store once; edits made while its create is
//     in flight wait for it and then update the created record.

type IItemSyncUseCase interface {
	Load(ctx context.Context, bidID string) (ItemsResult, error)
	Items(ctx context.Context, bidID string) (ItemsResult, error)
	Create(ctx context.Context, bidID string, item entities.LineItem) (ItemResult, error)
	Update(ctx context.Context, bidID, itemID string, patch LineItemPatch) (ItemResult, error)
	Delete(ctx context.Context, bidID, itemID string) (ItemResult, error)
	ReplaceAll(ctx context.Context, bidID string, items []entities.LineItem) (ItemsResult, error)
	EvictIdle(maxIdle time.Duration) int
}

type ItemSyncUseCase struct {
	repo      interfaces.IDemolitionItemRepository
	snapshot  interfaces.ISnapshotStore
	aggregate IAggregateSyncUseCase
	metrics   interfaces.ISyncMetrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*bidSession
	loads    singleflight.Group
}

var _ IItemSyncUseCase = (*ItemSyncUseCase)(nil)

func NewItemSyncUseCase(repo interfaces.IDemolitionItemRepository, snapshot interfaces.ISnapshotStore, aggregate IAggregateSyncUseCase, metrics interfaces.ISyncMetrics) *ItemSyncUseCase {
	return &ItemSyncUseCase{
		repo:      repo,
		snapshot:  snapshot,
		aggregate: aggregate,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
		sessions:  map[string]*bidSession{},
	}
}

// ItemsSnapshotKey is the local cache key of a bid's last known items.
func ItemsSnapshotKey(bidID string) string {
	return "demolition-items:" + bidID
}

// Load reads the bid's items from the store and merges in the rows that only
// exist locally. When the store fails the last cached list is restored.
// Concurrent loads of the same bid share one store read.
func (u *ItemSyncUseCase) Load(ctx context.Context, bidID string) (ItemsResult, error) {
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return ItemsResult{}, ErrInvalidBidID
	}
	if u.repo == nil {
		return ItemsResult{}, errors.New("item repository not configured")
	}
	v, err, _ := u.loads.Do(bidID, func() (any, error) {
		return u.load(ctx, bidID)
	})
	if err != nil {
		return ItemsResult{}, err
	}
	res := v.(ItemsResult)
	res.Items = slices.Clone(res.Items)
	res.Warnings = slices.Clone(res.Warnings)
	return res, nil
}

func (u *ItemSyncUseCase) load(ctx context.Context, bidID string) (ItemsResult, error) {
	s := u.session(bidID)
	s.begin()
	defer s.end()

	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	var cached []entities.LineItem
	cacheHit := false
	if !loaded {
		cached, cacheHit = u.cachedItems(ctx, bidID)
	}

	log.Printf("[items][usecase] load start bid_id=%s", bidID)
	env, err := u.repo.FetchByBid(ctx, bidID)
	if err != nil {
		log.Printf("[items][usecase] load failed bid_id=%s err=%v", bidID, err)
		u.observe(opFetch, outcomeFailure)
		warning := fmt.Sprintf("could not load items from the item store: %v", err)

		source := ItemsSourceSession
		s.mu.Lock()
		if !s.loaded && cacheHit {
			s.publish(cached)
			s.loaded = true
			source = ItemsSourceCache
			log.Printf("[items][usecase] restored cached items bid_id=%s count=%d", bidID, len(cached))
		}
		current := s.snapshot()
		ready := s.loaded
		s.mu.Unlock()

		res := ItemsResult{Items: current, Warnings: []string{warning}, Source: source}
		if ready {
			res.Aggregate = u.recompute(bidID, current)
		} else {
			res.Aggregate = u.aggregateState(ctx, bidID)
		}
		return res, nil
	}
	u.observe(opFetch, outcomeSuccess)

	fetched := mapping.ToLineItems(env.Items)

	s.mu.Lock()
	local := cached
	if s.loaded {
		local = s.items
	}
	merged := mergeLocalOnly(fetched, local)
	s.publish(merged)
	s.loaded = true
	current := s.snapshot()
	s.mu.Unlock()

	log.Printf("[items][usecase] load done bid_id=%s shape=%s fetched=%d total=%d", bidID, env.Shape, len(fetched), len(current))
	u.mirror(ctx, bidID, current)
	return ItemsResult{
		Items:     current,
		Aggregate: u.recompute(bidID, current),
		Source:    ItemsSourceBackend,
	}, nil
}

func (u *ItemSyncUseCase) Items(ctx context.Context, bidID string) (ItemsResult, error) {
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return ItemsResult{}, ErrInvalidBidID
	}
	s := u.session(bidID)
	s.mu.Lock()
	loaded := s.loaded
	current := s.snapshot()
	s.mu.Unlock()
	if !loaded {
		return u.Load(ctx, bidID)
	}
	return ItemsResult{Items: current, Aggregate: u.aggregateState(ctx, bidID), Source: ItemsSourceSession}, nil
}

func (u *ItemSyncUseCase) Create(ctx context.Context, bidID string, item entities.LineItem) (ItemResult, error) {
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return ItemResult{}, ErrInvalidBidID
	}
	if err := validateItem(item, ""); err != nil {
		log.Printf("[items][usecase] create rejected bid_id=%s err=%v", bidID, err)
		return ItemResult{}, err
	}
	s, warnings, err := u.ensureLoaded(ctx, bidID)
	if err != nil {
		return ItemResult{}, err
	}
	s.begin()
	defer s.end()

	it := mapping.Refresh(item)
	it.ID = mapping.NewTempID()
	it.Category = normalizeCategory(it.Category)
	it.SyncStatus = entities.SyncStatusClean
	pipeline := mapping.IsDemolitionPipeline(it.Category)
	if pipeline {
		it.SyncStatus = entities.SyncStatusPendingSync
	}

	s.mu.Lock()
	seq := s.issue(it.ID)
	s.publish(s.withItem(it.ID, it))
	current := s.snapshot()
	s.mu.Unlock()

	log.Printf("[items][usecase] create bid_id=%s temp_id=%s category=%s pipeline=%t", bidID, it.ID, it.Category, pipeline)
	agg := u.recompute(bidID, current)
	if !pipeline {
		u.mirror(ctx, bidID, current)
		return ItemResult{Item: it, Aggregate: agg, Warnings: warnings}, nil
	}
	return u.pushNew(ctx, bidID, s, it, seq, warnings)
}

func (u *ItemSyncUseCase) Update(ctx context.Context, bidID, itemID string, patch LineItemPatch) (ItemResult, error) {
	bidID = strings.TrimSpace(bidID)
	itemID = strings.TrimSpace(itemID)
	if bidID == "" {
		return ItemResult{}, ErrInvalidBidID
	}
	s, warnings, err := u.ensureLoaded(ctx, bidID)
	if err != nil {
		return ItemResult{}, err
	}
	s.begin()
	defer s.end()

	s.mu.Lock()
	current, ok := s.find(itemID)
	if !ok {
		s.mu.Unlock()
		log.Printf("[items][usecase] update item not found bid_id=%s item_id=%s", bidID, itemID)
		return ItemResult{}, ErrLineItemNotFound
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		s.mu.Unlock()
		log.Printf("[items][usecase] update rejected bid_id=%s item_id=%s err=%v", bidID, itemID, err)
		return ItemResult{}, err
	}
	storedKey, wasStored := s.storeKey(current)
	pipeline := mapping.IsDemolitionPipeline(next.Category)
	next.SyncStatus = entities.SyncStatusClean
	if pipeline {
		next.SyncStatus = entities.SyncStatusPendingSync
	}
	seq := s.issue(itemID)
	s.publish(s.withItem(itemID, next))
	items := s.snapshot()
	s.mu.Unlock()

	log.Printf("[items][usecase] update bid_id=%s item_id=%s seq=%d pipeline=%t", bidID, itemID, seq, pipeline)
	agg := u.recompute(bidID, items)

	switch {
	case pipeline && mapping.IsNewItem(next.ID):
		return u.pushNew(ctx, bidID, s, next, seq, warnings)
	case pipeline:
		return u.pushUpdate(ctx, bidID, s, next, next.ID, seq, warnings)
	case wasStored:
		// the row became manual; take it out of the demolition store
		if err := u.repo.Delete(ctx, bidID, storedKey); err != nil {
			log.Printf("[items][usecase] delete after recategorize failed bid_id=%s item_id=%s err=%v", bidID, storedKey, err)
			u.observe(opDelete, outcomeFailure)
			warnings = append(warnings, fmt.Sprintf("item %q is still stored as a demolition item: %v", next.Name, err))
		} else {
			u.observe(opDelete, outcomeSuccess)
			s.mu.Lock()
			delete(s.storeKeys, itemID)
			s.mu.Unlock()
		}
	}
	u.mirror(ctx, bidID, items)
	return ItemResult{Item: next, Aggregate: agg, Warnings: warnings}, nil
}

// Delete removes the item locally, then from the store when it is stored
// there. A failed store delete keeps the local removal.
func (u *ItemSyncUseCase) Delete(ctx context.Context, bidID, itemID string) (ItemResult, error) {
	bidID = strings.TrimSpace(bidID)
	itemID = strings.TrimSpace(itemID)
	if bidID == "" {
		return ItemResult{}, ErrInvalidBidID
	}
	s, warnings, err := u.ensureLoaded(ctx, bidID)
	if err != nil {
		return ItemResult{}, err
	}
	s.begin()
	defer s.end()

	s.mu.Lock()
	current, ok := s.find(itemID)
	if !ok {
		s.mu.Unlock()
		return ItemResult{}, ErrLineItemNotFound
	}
	storedKey, stored := s.storeKey(current)
	s.issue(itemID)
	s.publish(s.without(itemID))
	delete(s.storeKeys, itemID)
	items := s.snapshot()
	s.mu.Unlock()

	log.Printf("[items][usecase] delete bid_id=%s item_id=%s", bidID, itemID)
	agg := u.recompute(bidID, items)
	u.mirror(ctx, bidID, items)

	if stored {
		if err := u.repo.Delete(ctx, bidID, storedKey); err != nil {
			log.Printf("[items][usecase] store delete failed bid_id=%s item_id=%s err=%v", bidID, storedKey, err)
			u.observe(opDelete, outcomeFailure)
			warnings = append(warnings, fmt.Sprintf("could not delete %q from the item store: %v", current.Name, err))
		} else {
			u.observe(opDelete, outcomeSuccess)
		}
	}
	return ItemResult{Item: current, Aggregate: agg, Warnings: warnings}, nil
}

// ReplaceAll swaps the full item list of the bid and rewrites the store's
// demolition items in one call. A row whose id the bid already holds is
// merged into that item, so store values beyond the editable fields survive.
func (u *ItemSyncUseCase) ReplaceAll(ctx context.Context, bidID string, items []entities.LineItem) (ItemsResult, error) {
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return ItemsResult{}, ErrInvalidBidID
	}
	if u.repo == nil {
		return ItemsResult{}, errors.New("item repository not configured")
	}

	seen := map[string]bool{}
	for i, item := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if err := validateItem(item, prefix); err != nil {
			log.Printf("[items][usecase] replace rejected bid_id=%s err=%v", bidID, err)
			return ItemsResult{}, err
		}
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		if seen[id] {
			return ItemsResult{}, &ValidationError{Field: prefix + "id", Message: "duplicate id " + id}
		}
		seen[id] = true
	}

	s, warnings, err := u.ensureLoaded(ctx, bidID)
	if err != nil {
		return ItemsResult{}, err
	}
	s.begin()
	defer s.end()

	s.mu.Lock()
	prepared := make([]entities.LineItem, 0, len(items))
	for i, item := range items {
		it, err := s.replacement(item)
		if err != nil {
			s.mu.Unlock()
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Field = fmt.Sprintf("items[%d].", i) + verr.Field
			}
			log.Printf("[items][usecase] replace rejected bid_id=%s err=%v", bidID, err)
			return ItemsResult{}, err
		}
		it.SyncStatus = entities.SyncStatusClean
		if mapping.IsDemolitionPipeline(it.Category) {
			it.SyncStatus = entities.SyncStatusPendingSync
		}
		prepared = append(prepared, it)
	}
	seqs := make([]uint64, len(prepared))
	for i, it := range prepared {
		seqs[i] = s.issue(it.ID)
	}
	s.publish(prepared)
	current := s.snapshot()
	s.mu.Unlock()

	u.recompute(bidID, current)

	var pipelineIdx []int
	var pipelineItems []entities.LineItem
	for i, it := range prepared {
		if mapping.IsDemolitionPipeline(it.Category) {
			pipelineIdx = append(pipelineIdx, i)
			pipelineItems = append(pipelineItems, it)
		}
	}
	records := mapping.ToDemolitionRecords(pipelineItems, u.now())

	log.Printf("[items][usecase] replace-all start bid_id=%s items=%d pipeline=%d", bidID, len(prepared), len(records))
	saved, err := u.repo.ReplaceAll(ctx, bidID, records)

	s.mu.Lock()
	if err != nil {
		log.Printf("[items][usecase] replace-all failed bid_id=%s err=%v", bidID, err)
		u.observe(opReplaceAll, outcomeFailure)
		warnings = append(warnings, fmt.Sprintf("could not save items to the item store: %v", err))
		for k, i := range pipelineIdx {
			failed := pipelineItems[k]
			failed.SyncStatus = entities.SyncStatusSyncFailed
			s.settle(prepared[i].ID, seqs[i], failed)
		}
	} else {
		u.observe(opReplaceAll, outcomeSuccess)
		for k, i := range pipelineIdx {
			echo := records[k]
			if k < len(saved) && !isZeroRecord(saved[k]) {
				echo = saved[k]
			}
			s.settle(prepared[i].ID, seqs[i], syncedItem(pipelineItems[k], echo))
		}
	}
	current = s.snapshot()
	s.mu.Unlock()

	u.mirror(ctx, bidID, current)
	log.Printf("[items][usecase] replace-all done bid_id=%s items=%d warnings=%d", bidID, len(current), len(warnings))
	return ItemsResult{
		Items:     current,
		Aggregate: u.recompute(bidID, current),
		Warnings:  warnings,
		Source:    ItemsSourceSession,
	}, nil
}

// replacement is the item a replace-all row becomes. Needs s.mu held.
func (s *bidSession) replacement(row entities.LineItem) (entities.LineItem, error) {
	id := strings.TrimSpace(row.ID)
	if current, ok := s.find(id); ok && id != "" {
		return applyPatch(current, replacePatch(row))
	}
	it := mapping.Refresh(row)
	it.ID = id
	if it.ID == "" {
		it.ID = mapping.NewTempID()
	}
	it.Category = normalizeCategory(it.Category)
	return it, nil
}

// replacePatch overlays every editable field of row. No proposed bid clears
// the override.
func replacePatch(row entities.LineItem) LineItemPatch {
	p := LineItemPatch{
		Name:        &row.Name,
		Description: &row.Description,
		Measurement: &row.Measurement,
		Unit:        &row.Unit,
		Category:    &row.Category,
		UnitPrice:   &row.UnitPrice,
		Notes:       &row.Notes,
	}
	if row.Quantity >= 1 {
		p.Quantity = &row.Quantity
	}
	if row.ProposedBid == nil {
		p.ClearProposedBid = true
	} else {
		p.ProposedBid = row.ProposedBid
	}
	return p
}

// pushNew stores an item that has no store key yet. One create per temp id
// runs at a time; an edit made meanwhile waits for it and then updates the
// created record.
func (u *ItemSyncUseCase) pushNew(ctx context.Context, bidID string, s *bidSession, it entities.LineItem, seq uint64, warnings []string) (ItemResult, error) {
	for {
		s.mu.Lock()
		if !s.current(it.ID, seq) {
			latest, ok := s.find(it.ID)
			items := s.snapshot()
			s.mu.Unlock()
			if !ok {
				latest = it
			}
			log.Printf("[items][usecase] push superseded bid_id=%s item_id=%s seq=%d", bidID, it.ID, seq)
			return ItemResult{Item: latest, Aggregate: u.recompute(bidID, items), Warnings: warnings}, nil
		}
		if key, ok := s.storeKeys[it.ID]; ok {
			s.mu.Unlock()
			return u.pushUpdate(ctx, bidID, s, it, key, seq, warnings)
		}
		wait, inflight := s.creating[it.ID]
		if !inflight {
			done := make(chan struct{})
			s.creating[it.ID] = done
			s.mu.Unlock()
			return u.pushCreate(ctx, bidID, s, it, seq, warnings, done)
		}
		s.mu.Unlock()

		log.Printf("[items][usecase] waiting for create bid_id=%s item_id=%s seq=%d", bidID, it.ID, seq)
		select {
		case <-wait:
		case <-ctx.Done():
			s.mu.Lock()
			items := s.snapshot()
			s.mu.Unlock()
			warnings = append(warnings, fmt.Sprintf("could not save %q to the item store: %v", it.Name, ctx.Err()))
			return ItemResult{Item: it, Aggregate: u.recompute(bidID, items), Warnings: warnings}, nil
		}
	}
}

func (u *ItemSyncUseCase) pushCreate(ctx context.Context, bidID string, s *bidSession, it entities.LineItem, seq uint64, warnings []string, done chan struct{}) (ItemResult, error) {
	now := u.now()
	rec := mapping.ToDemolitionRecord(it, 0, now)
	rec.ItemNumber = entities.Identifier(mapping.NewSingleItemKey(now))
	saved, err := u.repo.Create(ctx, bidID, rec)

	var next entities.LineItem
	var failure string
	if err != nil {
		log.Printf("[items][usecase] store create failed bid_id=%s item_id=%s err=%v", bidID, it.ID, err)
		u.observe(opCreate, outcomeFailure)
		failure = fmt.Sprintf("could not save %q to the item store: %v", it.Name, err)
		next = it
		next.SyncStatus = entities.SyncStatusSyncFailed
	} else {
		u.observe(opCreate, outcomeSuccess)
		if isZeroRecord(saved) {
			saved = rec
		}
		next = syncedItem(it, saved)
	}

	s.mu.Lock()
	settled, result := s.settle(it.ID, seq, next)
	orphaned := result == settleGone && err == nil
	if result == settleStale && err == nil {
		if mapping.IsDemolitionPipeline(settled.Category) {
			// the waiting edit updates this record
			s.storeKeys[it.ID] = next.ID
		} else {
			orphaned = true
		}
	}
	delete(s.creating, it.ID)
	close(done)
	items := s.snapshot()
	s.mu.Unlock()

	switch result {
	case settleApplied:
		if failure != "" {
			warnings = append(warnings, failure)
		}
		log.Printf("[items][usecase] create settled bid_id=%s temp_id=%s item_id=%s status=%s", bidID, it.ID, settled.ID, settled.SyncStatus)
	case settleStale:
		log.Printf("[items][usecase] create response superseded bid_id=%s item_id=%s seq=%d", bidID, it.ID, seq)
		u.observe(opCreate, outcomeStale)
	}
	if orphaned {
		// deleted or made manual locally while the create was in flight
		if derr := u.repo.Delete(ctx, bidID, next.ID); derr != nil {
			log.Printf("[items][usecase] cleanup of dropped item failed bid_id=%s item_id=%s err=%v", bidID, next.ID, derr)
		}
	}

	u.mirror(ctx, bidID, items)
	return ItemResult{Item: settled, Aggregate: u.recompute(bidID, items), Warnings: warnings}, nil
}

// pushUpdate writes it to the store record kept under key. A record missing
// from the store is created again while it is still the latest edit.
func (u *ItemSyncUseCase) pushUpdate(ctx context.Context, bidID string, s *bidSession, it entities.LineItem, key string, seq uint64, warnings []string) (ItemResult, error) {
	rec := mapping.ToDemolitionRecord(it, 0, u.now())
	rec.ItemNumber = entities.Identifier(key)
	saved, err := u.repo.Update(ctx, bidID, key, rec)
	if err == nil && isZeroRecord(saved) {
		s.mu.Lock()
		live := s.current(it.ID, seq)
		s.mu.Unlock()
		if live {
			log.Printf("[items][usecase] item missing in store, recreating bid_id=%s item_id=%s", bidID, key)
			saved, err = u.repo.Create(ctx, bidID, rec)
		}
	}

	var next entities.LineItem
	var failure string
	if err != nil {
		log.Printf("[items][usecase] store update failed bid_id=%s item_id=%s err=%v", bidID, key, err)
		u.observe(opUpdate, outcomeFailure)
		failure = fmt.Sprintf("could not save %q to the item store: %v", it.Name, err)
		next = it
		next.SyncStatus = entities.SyncStatusSyncFailed
	} else {
		u.observe(opUpdate, outcomeSuccess)
		if isZeroRecord(saved) {
			saved = rec
		}
		next = syncedItem(it, saved)
	}

	s.mu.Lock()
	settled, result := s.settle(it.ID, seq, next)
	items := s.snapshot()
	s.mu.Unlock()

	switch result {
	case settleApplied:
		if failure != "" {
			warnings = append(warnings, failure)
		}
	case settleStale:
		log.Printf("[items][usecase] update response superseded bid_id=%s item_id=%s seq=%d", bidID, it.ID, seq)
		u.observe(opUpdate, outcomeStale)
	}

	u.mirror(ctx, bidID, items)
	return ItemResult{Item: settled, Aggregate: u.recompute(bidID, items), Warnings: warnings}, nil
}

func (u *ItemSyncUseCase) ensureLoaded(ctx context.Context, bidID string) (*bidSession, []string, error) {
	if u.repo == nil {
		return nil, nil, errors.New("item repository not configured")
	}
	s := u.session(bidID)
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return s, nil, nil
	}
	res, err := u.Load(ctx, bidID)
	if err != nil {
		return nil, nil, err
	}
	return s, res.Warnings, nil
}

func (u *ItemSyncUseCase) session(bidID string) *bidSession {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sessions[bidID]
	if !ok {
		s = newBidSession()
		u.sessions[bidID] = s
	}
	s.lastUsed = u.now()
	return s
}

// EvictIdle forgets bids untouched for maxIdle with no store call in flight.
// The next use of an evicted bid loads it again.
func (u *ItemSyncUseCase) EvictIdle(maxIdle time.Duration) int {
	cutoff := u.now().Add(-maxIdle)
	u.mu.Lock()
	defer u.mu.Unlock()
	evicted := 0
	for bidID, s := range u.sessions {
		if s.lastUsed.After(cutoff) || !s.idle() {
			continue
		}
		delete(u.sessions, bidID)
		evicted++
	}
	if evicted > 0 {
		log.Printf("[items][usecase] evicted idle sessions count=%d", evicted)
	}
	return evicted
}

func (u *ItemSyncUseCase) recompute(bidID string, items []entities.LineItem) AggregateState {
	if u.aggregate == nil {
		return AggregateState{BidID: bidID}
	}
	return u.aggregate.RecomputeAndSchedulePersist(bidID, items)
}

func (u *ItemSyncUseCase) aggregateState(ctx context.Context, bidID string) AggregateState {
	if u.aggregate == nil {
		return AggregateState{BidID: bidID}
	}
	state, err := u.aggregate.State(ctx, bidID)
	if err != nil {
		log.Printf("[items][usecase] aggregate state unavailable bid_id=%s err=%v", bidID, err)
		return AggregateState{BidID: bidID, Error: RefreshFailedMessage}
	}
	return state
}

func (u *ItemSyncUseCase) mirror(ctx context.Context, bidID string, items []entities.LineItem) {
	if u.snapshot == nil {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		log.Printf("[items][usecase] cache encode failed bid_id=%s err=%v", bidID, err)
		return
	}
	if err := u.snapshot.Put(ctx, ItemsSnapshotKey(bidID), b); err != nil {
		log.Printf("[items][usecase] cache write failed bid_id=%s err=%v", bidID, err)
	}
}

func (u *ItemSyncUseCase) cachedItems(ctx context.Context, bidID string) ([]entities.LineItem, bool) {
	if u.snapshot == nil {
		return nil, false
	}
	b, found, err := u.snapshot.Get(ctx, ItemsSnapshotKey(bidID))
	if err != nil {
		log.Printf("[items][usecase] cache read failed bid_id=%s err=%v", bidID, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var items []entities.LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		log.Printf("[items][usecase] cached items unreadable bid_id=%s err=%v", bidID, err)
		return nil, false
	}
	return items, true
}

func (u *ItemSyncUseCase) observe(op, outcome string) {
	if u.metrics != nil {
		u.metrics.ObserveItemSync(op, outcome)
	}
}

// mergeLocalOnly appends to fetched the local rows the store does not keep:
// manual items and pipeline items that never got a store key.
func mergeLocalOnly(fetched, local []entities.LineItem) []entities.LineItem {
	merged := make([]entities.LineItem, 0, len(fetched)+len(local))
	merged = append(merged, fetched...)
	ids := make(map[string]bool, len(fetched))
	for _, it := range fetched {
		ids[it.ID] = true
	}
	for _, it := range local {
		if ids[it.ID] {
			continue
		}
		if !mapping.IsDemolitionPipeline(it.Category) || mapping.IsNewItem(it.ID) {
			merged = append(merged, it)
		}
	}
	return merged
}

// syncedItem is the local item re-derived from the record the store echoed.
// The free text measurement and description are the user's and are kept.
func syncedItem(local entities.LineItem, echo entities.DemolitionRecord) entities.LineItem {
	next := mapping.ToLineItem(echo)
	next.Description = local.Description
	if strings.TrimSpace(local.Measurement) != "" {
		next.Measurement = local.Measurement
	}
	if _, ok := mapping.ParseUICategory(string(local.Category)); ok && mapping.ToBackendCategory(local.Category) == mapping.ToBackendCategory(next.Category) {
		next.Category = local.Category
	}
	next.SyncStatus = entities.SyncStatusClean
	return next
}

func isZeroRecord(r entities.DemolitionRecord) bool {
	return r.ItemNumber.String() == "" && r.ID.String() == "" && r.BackendID.String() == ""
}

func normalizeCategory(c entities.UICategory) entities.UICategory {
	if strings.TrimSpace(string(c)) == "" {
		return entities.CategoryRegular
	}
	if parsed, ok := mapping.ParseUICategory(string(c)); ok {
		return parsed
	}
	return c
}

func applyPatch(current entities.LineItem, p LineItemPatch) (entities.LineItem, error) {
	next := current
	rebuildMeasurement := false

	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.Notes != nil {
		next.Notes = *p.Notes
	}
	if p.Quantity != nil {
		if *p.Quantity < 1 {
			return entities.LineItem{}, &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
		}
		if *p.Quantity != current.Quantity {
			rebuildMeasurement = true
		}
		next.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		unit := strings.TrimSpace(*p.Unit)
		if unit != current.Unit {
			rebuildMeasurement = true
		}
		next.Unit = unit
	}
	if p.Measurement != nil {
		next.Measurement = strings.TrimSpace(*p.Measurement)
	} else if rebuildMeasurement {
		next.Measurement = ""
	}
	if p.Category != nil {
		next.Category = normalizeCategory(*p.Category)
	}
	if p.UnitPrice != nil {
		next.UnitPrice = *p.UnitPrice
	}
	if p.ClearProposedBid {
		next.ProposedBid = nil
	} else if p.ProposedBid != nil {
		v := *p.ProposedBid
		next.ProposedBid = &v
	}

	if err := validateItem(next, ""); err != nil {
		return entities.LineItem{}, err
	}
	if p.UnitPrice != nil && *p.UnitPrice > 0 {
		if resolved := pricing.ResolveUnitPrice(pricing.FromLineItem(next)); resolved != *p.UnitPrice {
			return entities.LineItem{}, &ValidationError{
				Field:   "unit_price",
				Message: fmt.Sprintf("unit price is set by calculated or matched pricing (%.2f); set proposed_bid to override the bid", resolved),
			}
		}
	}
	return mapping.Refresh(next), nil
}

func validateItem(it entities.LineItem, prefix string) error {
	if strings.TrimSpace(it.Name) == "" {
		return &ValidationError{Field: prefix + "name", Message: "name is required"}
	}
	if !validMoney(it.UnitPrice) {
		return &ValidationError{Field: prefix + "unit_price", Message: "unit price must be a non-negative number"}
	}
	if it.ProposedBid != nil && !validMoney(*it.ProposedBid) {
		return &ValidationError{Field: prefix + "proposed_bid", Message: "proposed bid must be a non-negative number"}
	}
	if it.Quantity < 0 {
		return &ValidationError{Field: prefix + "quantity", Message: "quantity must be at least 1"}
	}
	return nil
}

func validMoney(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
