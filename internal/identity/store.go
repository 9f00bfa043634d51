package identity

import (
	"github.com/patrickmn/go-cache"
)

// Store remembers, for the life of the process, which customer a repair order number
// belongs to and which number an internal repair order id maps to. Entries are only
// ever added or overwritten, never removed. Each mapping is guarded by its own lock.
type Store struct {
	names   *cache.Cache
	numbers *cache.Cache
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		names:   cache.New(cache.NoExpiration, 0),
		numbers: cache.New(cache.NoExpiration, 0),
	}
}

// RememberCustomer records the customer name for a repair order number. Last write wins.
func (s *Store) RememberCustomer(roNumber, name string) {
	if roNumber == "" || name == "" {
		return
	}
	s.names.Set(roNumber, name, cache.NoExpiration)
}

// CustomerName returns the last recorded customer name for a repair order number.
func (s *Store) CustomerName(roNumber string) (string, bool) {
	v, ok := s.names.Get(roNumber)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// RememberNumber records the customer-facing number for an internal repair order id.
func (s *Store) RememberNumber(roID, roNumber string) {
	if roID == "" || roNumber == "" {
		return
	}
	s.numbers.Set(roID, roNumber, cache.NoExpiration)
}

// Number returns the customer-facing number for an internal repair order id.
func (s *Store) Number(roID string) (string, bool) {
	v, ok := s.numbers.Get(roID)
	if !ok {
		return "", false
	}
	number, ok := v.(string)
	return number, ok
}

// Stats returns the number of known customers and known ids.
func (s *Store) Stats() (customers, ids int) {
	return s.names.ItemCount(), s.numbers.ItemCount()
}
