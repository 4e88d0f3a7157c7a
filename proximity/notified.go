package proximity

import (
	"sort"
	"sync"
)

// NotifiedSet records the points of interest already alerted on. An id stays
// suppressed until it is removed or the set is cleared.
type NotifiedSet struct {
	ids map[string]struct{}
	mu  sync.RWMutex
}

func NewNotifiedSet() *NotifiedSet {
	return &NotifiedSet{
		ids: make(map[string]struct{}),
	}
}

func (s *NotifiedSet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

func (s *NotifiedSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.ids[id]
	return exists
}

func (s *NotifiedSet) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *NotifiedSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ids)
}

func (s *NotifiedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// IDs returns the notified ids in sorted order
func (s *NotifiedSet) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
