package usecase

import (
	"slices"
	"sync"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"
)

type settleResult int

const (
	settleApplied settleResult = iota
	settleStale
	settleGone
)

// bidSession holds the reconciled items of one bid. The items slice is
// never modified in place: every mutation publishes a new slice, so a
// snapshot taken under the lock stays consistent after it is released.
type bidSession struct {
	mu      sync.Mutex
	items   []entities.LineItem
	seqs    map[string]uint64
	nextSeq uint64
	loaded  bool

	// creating holds one channel per temp id whose create is in flight; it
	// is closed once the create settles. storeKeys maps a temp id to the key
	// a superseded create stored the item under.
	creating  map[string]chan struct{}
	storeKeys map[string]string
	busy      int

	// guarded by ItemSyncUseCase.mu
	lastUsed time.Time
}

func newBidSession() *bidSession {
	return &bidSession{
		seqs:      map[string]uint64{},
		creating:  map[string]chan struct{}{},
		storeKeys: map[string]string{},
	}
}

func (s *bidSession) begin() {
	s.mu.Lock()
	s.busy++
	s.mu.Unlock()
}

func (s *bidSession) end() {
	s.mu.Lock()
	s.busy--
	s.mu.Unlock()
}

func (s *bidSession) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy == 0 && len(s.creating) == 0
}

// current reports whether seq is still the latest mutation of a live item.
func (s *bidSession) current(id string, seq uint64) bool {
	_, ok := s.find(id)
	return ok && s.seqs[id] == seq
}

// storeKey is the key the store keeps the item under, if it keeps it.
func (s *bidSession) storeKey(it entities.LineItem) (string, bool) {
	if !mapping.IsDemolitionPipeline(it.Category) {
		return "", false
	}
	if !mapping.IsNewItem(it.ID) {
		return it.ID, true
	}
	key, ok := s.storeKeys[it.ID]
	return key, ok
}

func (s *bidSession) snapshot() []entities.LineItem {
	return slices.Clone(s.items)
}

func (s *bidSession) publish(items []entities.LineItem) {
	s.items = items
}

// issue records a new mutation of the item and returns its sequence.
// Responses carrying an older sequence are ignored when they settle.
func (s *bidSession) issue(id string) uint64 {
	s.nextSeq++
	s.seqs[id] = s.nextSeq
	return s.nextSeq
}

func (s *bidSession) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(it entities.LineItem) bool { return it.ID == id })
}

func (s *bidSession) find(id string) (entities.LineItem, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return entities.LineItem{}, false
}

// withItem returns the item list with it replacing the item of the same id,
// or appended when there is none.
func (s *bidSession) withItem(id string, it entities.LineItem) []entities.LineItem {
	next := slices.Clone(s.items)
	if i := s.indexOf(id); i >= 0 {
		next[i] = it
		return next
	}
	return append(next, it)
}

func (s *bidSession) without(id string) []entities.LineItem {
	return slices.DeleteFunc(slices.Clone(s.items), func(it entities.LineItem) bool { return it.ID == id })
}

// settle applies a store response for the mutation issued as seq.
func (s *bidSession) settle(id string, seq uint64, next entities.LineItem) (entities.LineItem, settleResult) {
	current, ok := s.find(id)
	if !ok {
		return next, settleGone
	}
	if s.seqs[id] != seq {
		return current, settleStale
	}
	s.publish(s.withItem(id, next))
	if next.ID != id {
		delete(s.seqs, id)
		delete(s.storeKeys, id)
		s.seqs[next.ID] = seq
	}
	return next, settleApplied
}
