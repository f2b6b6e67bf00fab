package worldpay

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// CardStore persists tokenized card summaries to a JSON file so a shopper can
// pick a stored card at the next checkout. Raw card details never pass
// through here, only gateway tokens and display metadata.
//
// The file is read once and cached for the life of the store; Save overwrites
// the whole file. A missing or corrupt file reads as an empty list, never an
// error.
type CardStore struct {
	path string

	mu     sync.Mutex
	cached []TokenizedCard
	loaded bool
}

// NewCardStore builds a store backed by the given file path. The file need
// not exist yet.
func NewCardStore(path string) *CardStore {
	if path == "" {
		panic("worldpay: card store path is required")
	}
	return &CardStore{path: path}
}

// Load returns the stored cards, reading the file on first call only.
func (s *CardStore) Load() []TokenizedCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *CardStore) load() []TokenizedCard {
	if s.loaded {
		return s.cached
	}
	s.loaded = true
	s.cached = []TokenizedCard{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return s.cached
	}
	var cards []TokenizedCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return s.cached
	}
	s.cached = cards
	return s.cached
}

// Save replaces the stored list entirely.
func (s *CardStore) Save(cards []TokenizedCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cards)
}

func (s *CardStore) save(cards []TokenizedCard) error {
	if cards == nil {
		cards = []TokenizedCard{}
	}
	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	s.cached = cards
	s.loaded = true
	return nil
}

// Add appends a card and persists the list.
func (s *CardStore) Add(card TokenizedCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(append(s.load(), card))
}

// Remove deletes the card with the given token and persists the list. It is
// a no-op when the token is not stored.
func (s *CardStore) Remove(token string) error {
	if token == "" {
		return errors.New("worldpay: token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.load()
	kept := make([]TokenizedCard, 0, len(current))
	for _, card := range current {
		if card.Token != token {
			kept = append(kept, card)
		}
	}
	if len(kept) == len(current) {
		return nil
	}
	return s.save(kept)
}
