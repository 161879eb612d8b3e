package fx

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sharelot/sharelot/date"
	"github.com/sharelot/sharelot/log"
	"github.com/sharelot/sharelot/money"
)

// PlaceholderPolicy controls what GetOrCreate persists when the provider
// cannot supply a rate.
type PlaceholderPolicy int

const (
	// NoPlaceholder stores nothing on a failed fetch; the caller gets
	// ErrRateUnavailable and the rate stays absent.
	NoPlaceholder PlaceholderPolicy = iota
	// PlaceholderOne persists a 1.0 rate before fetching and leaves it in
	// place if the fetch fails.
	PlaceholderOne
)

type rateKey struct {
	from, to money.Currency
	day      date.Date
}

// Store owns the known exchange rates for one account. Lookups consult
// stored rates first, then the cache, then the provider. A nil provider
// means only stored rates resolve.
type Store struct {
	mu          sync.Mutex
	rates       map[rateKey]Rate
	loadedPairs map[string]bool
	cache       RatesCache
	provider    Provider
	policy      PlaceholderPolicy
}

func NewStore(cache RatesCache, provider Provider, policy PlaceholderPolicy) *Store {
	return &Store{
		rates:       make(map[rateKey]Rate),
		loadedPairs: make(map[string]bool),
		cache:       cache,
		provider:    provider,
		policy:      policy,
	}
}

// Insert records a rate directly, eg. a manual entry or imported history.
func (s *Store) Insert(rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[rateKey{rate.From, rate.To, rate.Date}] = rate
}

// Get returns the stored rate for the key, without consulting the provider.
func (s *Store) Get(from, to money.Currency, day date.Date) (Rate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadPairLocked(from, to)
	rate, ok := s.rates[rateKey{from, to, day}]
	return rate, ok
}

func (s *Store) loadPairLocked(from, to money.Currency) {
	key := pairKey(from, to)
	if s.loadedPairs[key] || s.cache == nil {
		return
	}
	s.loadedPairs[key] = true
	cached, err := s.cache.ReadRates(from, to)
	if err != nil {
		log.Verbosef("Could not load cached %s rates: %v\n", key, err)
		return
	}
	for _, rate := range cached {
		k := rateKey{rate.From, rate.To, rate.Date}
		if _, ok := s.rates[k]; !ok {
			s.rates[k] = rate
		}
	}
}

func (s *Store) persistPairLocked(from, to money.Currency) {
	if s.cache == nil {
		return
	}
	var pairRates []Rate
	for k, rate := range s.rates {
		if k.from == from && k.to == to {
			pairRates = append(pairRates, rate)
		}
	}
	if err := s.cache.WriteRates(from, to, pairRates); err != nil {
		log.Verbosef("Failed to update %s%s rate cache: %v\n", from, to, err)
	}
}

// LatestRate returns the most recent stored rate for the pair, consulting
// only the in-memory set and the cache.
func (s *Store) LatestRate(from, to money.Currency) (Rate, bool) {
	if from == to {
		return Rate{From: from, To: to, Date: date.Today(), Multiplier: decimal.NewFromInt(1)}, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadPairLocked(from, to)
	var latest Rate
	found := false
	for k, rate := range s.rates {
		if k.from != from || k.to != to {
			continue
		}
		if !found || rate.Date.After(latest.Date) {
			latest = rate
			found = true
		}
	}
	return latest, found
}

// GetOrCreate returns the rate for (from, to, day), fetching and persisting
// it from the provider on a miss. Identical currencies short-circuit to a
// 1.0 rate that is never persisted.
func (s *Store) GetOrCreate(from, to money.Currency, day date.Date) (Rate, error) {
	if from == to {
		return Rate{From: from, To: to, Date: day, Multiplier: decimal.NewFromInt(1)}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadPairLocked(from, to)

	key := rateKey{from, to, day}
	if rate, ok := s.rates[key]; ok {
		return rate, nil
	}

	if s.policy == PlaceholderOne {
		placeholder := Rate{From: from, To: to, Date: day, Multiplier: decimal.NewFromInt(1)}
		s.rates[key] = placeholder
		s.persistPairLocked(from, to)

		fetched, err := s.fetchLocked(from, to, day)
		if err != nil {
			// The placeholder stays, matching the original behavior.
			log.Verbosef("No %s%s rate for %s; keeping placeholder 1.0: %v\n",
				from, to, day, err)
			return placeholder, nil
		}
		s.rates[key] = fetched
		s.persistPairLocked(from, to)
		return fetched, nil
	}

	fetched, err := s.fetchLocked(from, to, day)
	if err != nil {
		return Rate{}, err
	}
	s.rates[key] = fetched
	s.persistPairLocked(from, to)
	return fetched, nil
}

func (s *Store) fetchLocked(from, to money.Currency, day date.Date) (Rate, error) {
	if s.provider == nil {
		return Rate{}, fmt.Errorf("no rate for %s to %s on %s and no provider configured: %w",
			from, to, day, ErrRateUnavailable)
	}
	mult, err := s.provider.GetRate(from, to, day)
	if err != nil {
		return Rate{}, fmt.Errorf("fetch %s to %s rate for %s: %w", from, to, day, err)
	}
	return Rate{From: from, To: to, Date: day, Multiplier: mult}, nil
}
