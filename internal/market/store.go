package market

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"gainboard/internal/domain/entities"
)

const DefaultPageSize = 10

// Store is the authoritative in-memory table of tracked instruments. It owns
// merge, re-rank, filter and pagination state; every mutation runs to
// completion under the lock, so no interleaving of two mutations is
// observable. Readers only get copies of the derived views.
type Store struct {
	mu sync.RWMutex

	instruments []*entities.Instrument
	filtered    []*entities.Instrument
	index       map[string]int // symbol -> position in instruments

	searchQuery string
	currentPage int
	pageSize    int

	isLoading   bool
	errMsg      string
	isConnected bool

	// cursor for sequential browsing; a relation by symbol, never repaired
	// here when the filtered set changes (navigation owns that contract)
	highlighted string

	logger *slog.Logger
}

func NewStore(pageSize int, logger *slog.Logger) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		index:       make(map[string]int),
		currentPage: 1,
		pageSize:    pageSize,
		isLoading:   true,
		logger:      logger,
	}
}

// ReplaceAll swaps in a full snapshot, re-derives the filtered view with the
// current search query and clears the loading and error state.
func (s *Store) ReplaceAll(instruments []*entities.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instruments = make([]*entities.Instrument, len(instruments))
	copy(s.instruments, instruments)
	s.rerank()
	s.refilter()
	s.isLoading = false
	s.errMsg = ""

	s.logger.Debug("snapshot applied", "count", len(s.instruments))
}

// Merge applies a partial update to the matching instrument, re-ranks the
// full set and re-derives the filtered view. Updates for unknown symbols are
// no-ops, never insertions.
func (s *Store) Merge(symbol string, update entities.InstrumentUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[symbol]
	if !ok {
		return
	}

	update.Apply(s.instruments[pos])
	s.rerank()
	s.refilter()
}

// SetSearchQuery re-derives the filtered view and resets the page to 1.
func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchQuery = query
	s.refilter()
	s.currentPage = 1
}

// SetPage does not clamp; callers navigating via NextPage/PrevPage get
// clamped semantics, direct sets are their own responsibility.
func (s *Store) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPage = page
}

func (s *Store) NextPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPage < s.totalPages() {
		s.currentPage++
	}
}

func (s *Store) PrevPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPage > 1 {
		s.currentPage--
	}
}

// Tracks reports membership against the full instrument set, not the
// filtered view.
func (s *Store) Tracks(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[symbol]
	return ok
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = loading
}

// SetError records a user-visible error message. An empty message clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isConnected = connected
}

// SetHighlighted moves the navigation cursor. An empty symbol clears it.
func (s *Store) SetHighlighted(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlighted = symbol
}

// AdvanceCursor steps the cursor cyclically over the entire filtered view
// and moves the current page to the one containing the new cursor position.
// A stale or unset cursor restarts at the head of the filtered view. The
// second return is false when the filtered view is empty.
func (s *Store) AdvanceCursor(delta int) (entities.Instrument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.filtered)
	if n == 0 {
		return entities.Instrument{}, false
	}

	idx := s.cursorIndex()
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+delta)%n + n) % n
	}

	s.highlighted = s.filtered[idx].Symbol
	s.currentPage = idx/s.pageSize + 1
	return *s.filtered[idx], true
}

// CursorInstrument resolves the cursor against the filtered view.
func (s *Store) CursorInstrument() (entities.Instrument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.cursorIndex()
	if idx < 0 {
		return entities.Instrument{}, false
	}
	return *s.filtered[idx], true
}

func (s *Store) Instruments() []entities.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyView(s.instruments)
}

func (s *Store) Filtered() []entities.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyView(s.filtered)
}

// FilteredPage is the slice of the filtered view on the current page.
func (s *Store) FilteredPage() []entities.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyView(Paginate(s.filtered, s.currentPage, s.pageSize))
}

func (s *Store) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPages()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instruments)
}

func (s *Store) FilteredLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filtered)
}

func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

func (s *Store) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

func (s *Store) PageSize() int {
	return s.pageSize
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

func (s *Store) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

func (s *Store) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *Store) Highlighted() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlighted, s.highlighted != ""
}

// rerank re-sorts descending by price change percent. The sort is stable so
// equal values keep their relative order, which makes re-ranking
// deterministic under repeated merges.
func (s *Store) rerank() {
	sort.SliceStable(s.instruments, func(i, j int) bool {
		return s.instruments[i].PriceChangePercent > s.instruments[j].PriceChangePercent
	})

	s.index = make(map[string]int, len(s.instruments))
	for i, inst := range s.instruments {
		s.index[inst.Symbol] = i
	}
}

// refilter re-derives the filtered view from the current order and query.
func (s *Store) refilter() {
	query := strings.TrimSpace(s.searchQuery)
	if query == "" {
		s.filtered = s.instruments
		return
	}

	query = strings.ToLower(query)
	filtered := make([]*entities.Instrument, 0, len(s.instruments))
	for _, inst := range s.instruments {
		if strings.Contains(strings.ToLower(inst.Symbol), query) ||
			strings.Contains(strings.ToLower(inst.BaseAsset), query) {
			filtered = append(filtered, inst)
		}
	}
	s.filtered = filtered
}

func (s *Store) totalPages() int {
	return (len(s.filtered) + s.pageSize - 1) / s.pageSize
}

func (s *Store) cursorIndex() int {
	if s.highlighted == "" {
		return -1
	}
	for i, inst := range s.filtered {
		if inst.Symbol == s.highlighted {
			return i
		}
	}
	return -1
}

func copyView(view []*entities.Instrument) []entities.Instrument {
	out := make([]entities.Instrument, len(view))
	for i, inst := range view {
		out[i] = *inst
	}
	return out
}
