// Package cart holds per-user cart state in memory only. Carts are
// never persisted; a restart empties them.
package cart

import (
	"sync"

	"github.com/st3v3nn/KLADISHOP/internal/modules/products"
)

// Line is a product snapshot captured when the item was added. The same
// product may appear on multiple lines: quantity is modeled by
// repetition.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
}

type Store struct {
	mu    sync.Mutex
	lines map[string][]Line // user id -> lines, in add order
}

func NewStore() *Store {
	return &Store{lines: make(map[string][]Line)}
}

// Add appends a snapshot of the product to the user's cart.
func (s *Store) Add(userID string, p products.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[userID] = append(s.lines[userID], Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
	})
}

// Remove drops the line at index; out-of-range indexes are ignored.
func (s *Store) Remove(userID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.lines[userID]
	if index < 0 || index >= len(lines) {
		return
	}
	s.lines[userID] = append(lines[:index:index], lines[index+1:]...)
}

func (s *Store) Lines(userID string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines[userID]))
	copy(out, s.lines[userID])
	return out
}

// Total is the arithmetic sum of line prices, recomputed on every call.
func (s *Store) Total(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines[userID] {
		total += l.Price
	}
	return total
}

func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, userID)
}
