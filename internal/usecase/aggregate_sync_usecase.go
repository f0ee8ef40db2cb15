package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"
	"bid_pricing/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidBidID          = errors.New("invalid bid_id")
	ErrTotalStoreUnavailable = errors.New("total store unavailable")
)

// DefaultAggregateDebounce is the delay between the last item change and the
// write of the recomputed total.
const DefaultAggregateDebounce = time.Second

const flushConcurrency = 8

// Messages shown inline with the total. Store error details are only logged.
const (
	PersistFailedMessage = "could not save the bid total"
	RefreshFailedMessage = "could not load the stored bid total"
)

// AggregateStatus is the persistence state of one bid's total.
type AggregateStatus string

const (
	AggregateStatusIdle           AggregateStatus = "idle"
	AggregateStatusPendingPersist AggregateStatus = "pending_persist"
	AggregateStatusPersisting     AggregateStatus = "persisting"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeStale   = "stale"
)

// AggregateState is the locally displayed total of a bid plus the loading
// and error flags that go with it. Error is non-empty after a failed persist
// or refresh; the displayed total is kept regardless.
type AggregateState struct {
	BidID         string                      `json:"bid_id"`
	Total         float64                     `json:"total"`
	LastPersisted *float64                    `json:"last_persisted,omitempty"`
	Status        AggregateStatus             `json:"status"`
	Loading       bool                        `json:"loading"`
	Error         string                      `json:"error,omitempty"`
	LastUpdated   time.Time                   `json:"last_updated,omitempty"`
	Breakdown     entities.AggregateBreakdown `json:"breakdown"`
}

// IAggregateSyncUseCase keeps a bid's stored total in line with its items.
//
// Requested behavior:
//   - Every item set change recomputes the total and schedules one debounced write.
//   - A write is skipped when the stored (or about to be stored) total already matches.
//   - Failed writes raise the error flag and never roll back the local total.

type IAggregateSyncUseCase interface {
	RecomputeAndSchedulePersist(bidID string, items []entities.LineItem) AggregateState
	State(ctx context.Context, bidID string) (AggregateState, error)
	Refresh(ctx context.Context, bidID string) (AggregateState, error)
	Clear(ctx context.Context, bidID string) error
	Flush(ctx context.Context)
	EvictIdle(maxIdle time.Duration) int
}

type AggregateSyncUseCase struct {
	repo     interfaces.IBidTotalRepository
	snapshot interfaces.ISnapshotStore
	metrics  interfaces.ISyncMetrics
	delay    time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*aggregateSession
}

var _ IAggregateSyncUseCase = (*AggregateSyncUseCase)(nil)

// aggregateSession is the per-bid state machine. All fields are guarded by mu.
type aggregateSession struct {
	mu sync.Mutex

	// guarded by AggregateSyncUseCase.mu
	lastUsed time.Time

	total       decimal.Decimal
	breakdown   entities.AggregateBreakdown
	hasItems    bool
	loaded      bool
	loading     bool
	errMsg      string
	lastUpdated time.Time

	persisted    *decimal.Decimal
	persistedSeq uint64

	seq      uint64
	timer    *time.Timer
	pending  *decimal.Decimal
	inflight map[uint64]decimal.Decimal
}

func NewAggregateSyncUseCase(repo interfaces.IBidTotalRepository, snapshot interfaces.ISnapshotStore, metrics interfaces.ISyncMetrics, delay time.Duration) *AggregateSyncUseCase {
	if delay <= 0 {
		delay = DefaultAggregateDebounce
	}
	return &AggregateSyncUseCase{
		repo:     repo,
		snapshot: snapshot,
		metrics:  metrics,
		delay:    delay,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: map[string]*aggregateSession{},
	}
}

// TotalSnapshotKey is the local cache key of a bid's last known total.
func TotalSnapshotKey(bidID string) string {
	return "bid-total:" + bidID
}

func (u *AggregateSyncUseCase) RecomputeAndSchedulePersist(bidID string, items []entities.LineItem) AggregateState {
	bidID = strings.TrimSpace(bidID)
	s := u.session(bidID)

	sum, breakdown := sumProposedTotals(items)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = sum
	s.breakdown = breakdown
	s.hasItems = true

	if s.pending != nil {
		if s.pending.Equal(sum) {
			return s.state(bidID)
		}
		s.cancelPending()
	}
	if target := s.settledTarget(); target != nil && target.Equal(sum) {
		return s.state(bidID)
	}

	s.seq++
	seq := s.seq
	value := sum
	s.pending = &value
	s.errMsg = ""
	s.timer = time.AfterFunc(u.delay, func() {
		u.persist(context.Background(), bidID, seq)
	})
	log.Printf("[aggregate][usecase] persist scheduled bid_id=%s total=%s seq=%d delay=%s", bidID, sum.StringFixed(2), seq, u.delay)
	return s.state(bidID)
}

func (u *AggregateSyncUseCase) State(ctx context.Context, bidID string) (AggregateState, error) {
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return AggregateState{}, ErrInvalidBidID
	}
	s := u.session(bidID)
	s.mu.Lock()
	ready := s.loaded || s.hasItems
	state := s.state(bidID)
	s.mu.Unlock()
	if ready {
		return state, nil
	}
	return u.Refresh(ctx, bidID)
}

// Refresh re-reads the stored total. With no items recomputed yet the stored
// value is adopted for display; otherwise the local total wins and a write is
// scheduled when the two differ.
func (u *AggregateSyncUseCase) Refresh(ctx context.Context, bidID string) (AggregateState, error) {
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return AggregateState{}, ErrInvalidBidID
	}
	if u.repo == nil {
		return AggregateState{}, errors.New("total repository not configured")
	}
	s := u.session(bidID)

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	log.Printf("[aggregate][usecase] refresh start bid_id=%s", bidID)
	stored, err := u.repo.Get(ctx, bidID)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		log.Printf("[aggregate][usecase] refresh failed bid_id=%s err=%v", bidID, err)
		s.errMsg = RefreshFailedMessage
		if !s.hasItems && !s.loaded {
			if cached, ok := u.cachedTotal(ctx, bidID); ok {
				s.total = decimalFromFloat(cached.TotalProposedAmount)
				s.lastUpdated = cached.LastUpdated
				if cached.Breakdown != nil {
					s.breakdown = *cached.Breakdown
				}
				log.Printf("[aggregate][usecase] restored cached total bid_id=%s total=%s", bidID, s.total.StringFixed(2))
			}
		}
		state := s.state(bidID)
		s.mu.Unlock()
		return state, nil
	}

	s.loaded = true
	s.errMsg = ""
	if stored.BidID != "" {
		v := decimalFromFloat(stored.TotalProposedAmount)
		s.persisted = &v
		s.persistedSeq = s.seq
		s.lastUpdated = stored.LastUpdated
	} else {
		s.persisted = nil
	}
	if !s.hasItems {
		s.total = decimal.Zero
		if s.persisted != nil {
			s.total = *s.persisted
		}
		if stored.Breakdown != nil {
			s.breakdown = *stored.Breakdown
		}
	}
	s.mu.Unlock()

	if stored.BidID != "" {
		u.mirror(ctx, stored)
	}
	log.Printf("[aggregate][usecase] refresh done bid_id=%s stored=%t total=%.2f", bidID, stored.BidID != "", stored.TotalProposedAmount)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasItems && s.pending == nil {
		if target := s.settledTarget(); target == nil || !target.Equal(s.total) {
			s.seq++
			seq := s.seq
			value := s.total
			s.pending = &value
			s.timer = time.AfterFunc(u.delay, func() {
				u.persist(context.Background(), bidID, seq)
			})
			log.Printf("[aggregate][usecase] local total differs; persist scheduled bid_id=%s total=%s seq=%d", bidID, value.StringFixed(2), seq)
		}
	}
	return s.state(bidID), nil
}

// Clear removes the stored total and forgets the local state of the bid.
func (u *AggregateSyncUseCase) Clear(ctx context.Context, bidID string) error {
	bidID = strings.TrimSpace(bidID)
	if bidID == "" {
		return ErrInvalidBidID
	}
	if u.repo == nil {
		return errors.New("total repository not configured")
	}
	s := u.session(bidID)
	s.mu.Lock()
	s.cancelPending()
	s.mu.Unlock()

	if err := u.repo.Clear(ctx, bidID); err != nil {
		log.Printf("[aggregate][usecase] clear failed bid_id=%s err=%v", bidID, err)
		return fmt.Errorf("%w: %v", ErrTotalStoreUnavailable, err)
	}
	if u.snapshot != nil {
		if err := u.snapshot.Delete(ctx, TotalSnapshotKey(bidID)); err != nil {
			log.Printf("[aggregate][usecase] cache delete failed bid_id=%s err=%v", bidID, err)
		}
	}

	u.mu.Lock()
	delete(u.sessions, bidID)
	u.mu.Unlock()
	log.Printf("[aggregate][usecase] cleared bid_id=%s", bidID)
	return nil
}

// Flush writes every pending total now instead of waiting for its timer.
func (u *AggregateSyncUseCase) Flush(ctx context.Context) {
	u.mu.Lock()
	bids := make(map[string]*aggregateSession, len(u.sessions))
	for id, s := range u.sessions {
		bids[id] = s
	}
	u.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(flushConcurrency)
	for bidID, s := range bids {
		s.mu.Lock()
		fire := s.timer != nil && s.timer.Stop()
		seq := s.seq
		s.mu.Unlock()
		if !fire {
			continue
		}
		log.Printf("[aggregate][usecase] flushing bid_id=%s seq=%d", bidID, seq)
		g.Go(func() error {
			u.persist(ctx, bidID, seq)
			return nil
		})
	}
	_ = g.Wait()
}

func (u *AggregateSyncUseCase) persist(ctx context.Context, bidID string, seq uint64) {
	s := u.session(bidID)

	s.mu.Lock()
	if s.seq != seq || s.pending == nil {
		s.mu.Unlock()
		return
	}
	value := *s.pending
	s.pending = nil
	s.timer = nil
	if s.inflight == nil {
		s.inflight = map[uint64]decimal.Decimal{}
	}
	s.inflight[seq] = value
	breakdown := s.breakdown
	s.mu.Unlock()

	source := entities.AggregateSourceCalculated
	if breakdown.DemolitionItems == 0 {
		source = entities.AggregateSourceManual
	}
	agg := entities.BidAggregate{
		BidID:               bidID,
		TotalProposedAmount: value.InexactFloat64(),
		LastUpdated:         u.now(),
		Source:              source,
		Breakdown:           &breakdown,
	}

	log.Printf("[aggregate][usecase] persist start bid_id=%s total=%s seq=%d", bidID, value.StringFixed(2), seq)
	var (
		saved entities.BidAggregate
		err   error
	)
	if u.repo == nil {
		err = errors.New("total repository not configured")
	} else {
		saved, err = u.repo.Set(ctx, agg)
	}

	s.mu.Lock()
	delete(s.inflight, seq)
	if err != nil {
		log.Printf("[aggregate][usecase] persist failed bid_id=%s seq=%d err=%v", bidID, seq, err)
		s.errMsg = PersistFailedMessage
		s.mu.Unlock()
		u.observe(outcomeFailure)
		return
	}
	if seq < s.persistedSeq {
		s.mu.Unlock()
		log.Printf("[aggregate][usecase] persist settled out of order bid_id=%s seq=%d", bidID, seq)
		u.observe(outcomeStale)
		return
	}
	s.persisted = &value
	s.persistedSeq = seq
	s.errMsg = ""
	s.lastUpdated = agg.LastUpdated
	if !saved.LastUpdated.IsZero() {
		s.lastUpdated = saved.LastUpdated
	}
	s.mu.Unlock()

	if saved.BidID == "" {
		saved = agg
	}
	u.mirror(ctx, saved)
	u.observe(outcomeSuccess)
	log.Printf("[aggregate][usecase] persist done bid_id=%s total=%s seq=%d", bidID, value.StringFixed(2), seq)
}

func (u *AggregateSyncUseCase) session(bidID string) *aggregateSession {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sessions[bidID]
	if !ok {
		s = &aggregateSession{}
		u.sessions[bidID] = s
	}
	s.lastUsed = u.now()
	return s
}

// EvictIdle forgets bids untouched for maxIdle. A bid with a write pending
// or in flight is kept; the stored total is reread when it is next used.
func (u *AggregateSyncUseCase) EvictIdle(maxIdle time.Duration) int {
	cutoff := u.now().Add(-maxIdle)
	u.mu.Lock()
	defer u.mu.Unlock()
	evicted := 0
	for bidID, s := range u.sessions {
		if s.lastUsed.After(cutoff) {
			continue
		}
		s.mu.Lock()
		busy := s.pending != nil || len(s.inflight) > 0 || s.loading
		s.mu.Unlock()
		if busy {
			continue
		}
		delete(u.sessions, bidID)
		evicted++
	}
	if evicted > 0 {
		log.Printf("[aggregate][usecase] evicted idle sessions count=%d", evicted)
	}
	return evicted
}

func (u *AggregateSyncUseCase) mirror(ctx context.Context, agg entities.BidAggregate) {
	if u.snapshot == nil {
		return
	}
	b, err := json.Marshal(agg)
	if err != nil {
		return
	}
	if err := u.snapshot.Put(ctx, TotalSnapshotKey(agg.BidID), b); err != nil {
		log.Printf("[aggregate][usecase] cache write failed bid_id=%s err=%v", agg.BidID, err)
	}
}

func (u *AggregateSyncUseCase) cachedTotal(ctx context.Context, bidID string) (entities.BidAggregate, bool) {
	if u.snapshot == nil {
		return entities.BidAggregate{}, false
	}
	b, found, err := u.snapshot.Get(ctx, TotalSnapshotKey(bidID))
	if err != nil || !found {
		return entities.BidAggregate{}, false
	}
	var agg entities.BidAggregate
	if err := json.Unmarshal(b, &agg); err != nil {
		log.Printf("[aggregate][usecase] cached total unreadable bid_id=%s err=%v", bidID, err)
		return entities.BidAggregate{}, false
	}
	return agg, true
}

func (u *AggregateSyncUseCase) observe(outcome string) {
	if u.metrics != nil {
		u.metrics.ObserveAggregatePersist(outcome)
	}
}

// settledTarget is the value the store will hold once in-flight writes land.
func (s *aggregateSession) settledTarget() *decimal.Decimal {
	var latest uint64
	var target *decimal.Decimal
	for seq, v := range s.inflight {
		if seq > latest {
			latest = seq
			value := v
			target = &value
		}
	}
	if target != nil {
		return target
	}
	return s.persisted
}

func (s *aggregateSession) cancelPending() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}

func (s *aggregateSession) state(bidID string) AggregateState {
	st := AggregateState{
		BidID:       bidID,
		Total:       s.total.InexactFloat64(),
		Status:      AggregateStatusIdle,
		Loading:     s.loading,
		Error:       s.errMsg,
		LastUpdated: s.lastUpdated,
		Breakdown:   s.breakdown,
	}
	switch {
	case s.pending != nil:
		st.Status = AggregateStatusPendingPersist
	case len(s.inflight) > 0:
		st.Status = AggregateStatusPersisting
	}
	if s.persisted != nil {
		v := s.persisted.InexactFloat64()
		st.LastPersisted = &v
	}
	return st
}

// sumProposedTotals adds the proposed totals in cents. Values that are not
// finite and positive count as zero.
func sumProposedTotals(items []entities.LineItem) (decimal.Decimal, entities.AggregateBreakdown) {
	sum := decimal.Zero
	var breakdown entities.AggregateBreakdown
	for _, it := range items {
		sum = sum.Add(decimalFromFloat(it.ProposedTotal))
		if mapping.IsDemolitionPipeline(it.Category) {
			breakdown.DemolitionItems++
		} else {
			breakdown.ManualItems++
		}
	}
	return sum.Round(2), breakdown
}

func decimalFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}
