package list

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zombor/shopper/internal/scanning"
)

const (
	historyCap     = 100
	maxSuggestions = 10
)

// IDGenerator generates unique IDs for items and scanned-item records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time in milliseconds since epoch
type TimeSource interface {
	NowMillis() int64
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// State owns the three collections in memory and serializes every
// transition; the store is the durable mirror, written after each accepted
// mutation without blocking the transition. A write failure is logged and
// dropped, never rolled back.
type State struct {
	mu         sync.Mutex
	store      Store
	idGen      IDGenerator
	timeSource TimeSource

	items        []ShoppingItem
	scannedItems []ScannedItemMetadata
	itemHistory  []string
	loading      bool

	writes sync.WaitGroup
}

// NewState creates a State with default ID generator and time source. The
// state reports loading until Load completes.
func NewState(store Store) *State {
	return NewStateWithDeps(store, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewStateWithDeps creates a State with custom dependencies for testing
func NewStateWithDeps(store Store, idGen IDGenerator, timeSrc TimeSource) *State {
	return &State{
		store:      store,
		idGen:      idGen,
		timeSource: timeSrc,
		loading:    true,
	}
}

// Load reads the three collections together and populates the state. Read
// failures degrade to empty collections; they are logged, never propagated.
func (s *State) Load() {
	var (
		wg           sync.WaitGroup
		items        []ShoppingItem
		scannedItems []ScannedItemMetadata
		itemHistory  []string
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		if items, err = s.store.GetShoppingList(); err != nil {
			slog.Error("Error loading shopping list", "error", err)
			items = nil
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if scannedItems, err = s.store.GetScannedItems(); err != nil {
			slog.Error("Error loading scanned items", "error", err)
			scannedItems = nil
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if itemHistory, err = s.store.GetItemHistory(); err != nil {
			slog.Error("Error loading item history", "error", err)
			itemHistory = nil
		}
	}()
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.scannedItems = scannedItems
	s.itemHistory = itemHistory
	s.loading = false
}

// Loading reports whether the initial load is still in progress
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// AddItem appends a new unchecked item and records its name in the history.
// The name must be non-blank after trimming; quantity below 1 defaults to 1.
func (s *State) AddItem(name string, quantity int, unit string) (ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ShoppingItem{}, errors.New("item name is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeSource.NowMillis()
	item := ShoppingItem{
		ID:        s.idGen.Generate(),
		Name:      name,
		Quantity:  quantity,
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items = append(s.items, item)
	s.addToHistoryLocked(name)

	s.persistItemsLocked()
	s.persistHistoryLocked()

	return item, nil
}

// addToHistoryLocked unshifts the trimmed name with case-insensitive dedup,
// then evicts the oldest entries past the cap
func (s *State) addToHistoryLocked(name string) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)

	filtered := make([]string, 0, len(s.itemHistory)+1)
	filtered = append(filtered, trimmed)
	for _, h := range s.itemHistory {
		if strings.ToLower(h) != lower {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) > historyCap {
		filtered = filtered[:historyCap]
	}
	s.itemHistory = filtered
}

// UpdateItem replaces the item with a matching ID, refreshing updatedAt
// regardless of the caller-supplied value. It returns the stored item and
// whether a replacement happened.
func (s *State) UpdateItem(item ShoppingItem) (ShoppingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != item.ID {
			continue
		}
		item.CreatedAt = s.items[i].CreatedAt
		item.UpdatedAt = s.timeSource.NowMillis()
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		s.items[i] = item
		s.persistItemsLocked()
		return item, true
	}
	return ShoppingItem{}, false
}

// RemoveItem deletes the item with the given ID; absent IDs are a no-op
func (s *State) RemoveItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistItemsLocked()
			return true
		}
	}
	return false
}

// ToggleItem flips the checked flag of the item with the given ID and
// refreshes its updatedAt; absent IDs are a no-op
func (s *State) ToggleItem(id string) (ShoppingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleItemLocked(id)
}

func (s *State) toggleItemLocked(id string) (ShoppingItem, bool) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Checked = !s.items[i].Checked
			s.items[i].UpdatedAt = s.timeSource.NowMillis()
			s.persistItemsLocked()
			return s.items[i], true
		}
	}
	return ShoppingItem{}, false
}

// ClearChecked removes all checked items in one step and returns how many
// were removed
func (s *State) ClearChecked() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.items[:0:0]
	for _, item := range s.items {
		if !item.Checked {
			remaining = append(remaining, item)
		}
	}
	removed := len(s.items) - len(remaining)
	if removed > 0 {
		s.items = remaining
		s.persistItemsLocked()
	}
	return removed
}

// RecordScan reconciles a scan result: the scanned-item history is upserted
// and the first matching unchecked list item is checked off. A failed result
// leaves the state unchanged and surfaces the result's error string; a
// successful result without an item name is a silent no-op.
func (s *State) RecordScan(result *scanning.ScanResult) (string, error) {
	if result == nil {
		return "", errors.New("no scan result")
	}
	if !result.Success {
		if result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", errors.New("scan failed")
	}
	if result.ItemName == "" {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, matchedID := Reconcile(result, s.items, s.scannedItems, s.idGen.Generate(), s.timeSource.NowMillis())
	s.scannedItems = updated
	s.persistScannedLocked()

	if matchedID != "" {
		s.toggleItemLocked(matchedID)
	}

	return matchedID, nil
}

// Suggestions returns up to 10 history entries containing the query
// case-insensitively, most recent first. A blank query yields nothing.
func (s *State) Suggestions(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []string
	for _, h := range s.itemHistory {
		if strings.Contains(strings.ToLower(h), query) {
			matches = append(matches, h)
			if len(matches) == maxSuggestions {
				break
			}
		}
	}
	return matches
}

// Items returns a snapshot of the shopping list
func (s *State) Items() []ShoppingItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// ScannedItems returns a snapshot of the scanned-item history
func (s *State) ScannedItems() []ScannedItemMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.scannedItems)
}

// ItemHistory returns a snapshot of the item-name history
func (s *State) ItemHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.itemHistory)
}

// Flush waits for all in-flight store writes; call before shutdown when
// durability of the latest mutations matters
func (s *State) Flush() {
	s.writes.Wait()
}

// The persist helpers snapshot under the lock and write asynchronously: a
// transition returns before its durable write is confirmed, and overlapping
// writes to one collection resolve last-write-wins in the store.

func (s *State) persistItemsLocked() {
	snapshot := slices.Clone(s.items)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.store.SaveShoppingList(snapshot); err != nil {
			slog.Error("Error saving shopping list", "error", err)
		}
	}()
}

func (s *State) persistScannedLocked() {
	snapshot := slices.Clone(s.scannedItems)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.store.SaveScannedItems(snapshot); err != nil {
			slog.Error("Error saving scanned items", "error", err)
		}
	}()
}

func (s *State) persistHistoryLocked() {
	snapshot := slices.Clone(s.itemHistory)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.store.SaveItemHistory(snapshot); err != nil {
			slog.Error("Error saving item history", "error", err)
		}
	}()
}
