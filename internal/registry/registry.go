// Package registry implements the action registry: a process-local store
// that maps short-lived opaque tokens to the domain objects offered to a
// user through inline keyboard buttons. A token is issued when a command
// handler renders a result, resolved when the matching button is tapped,
// and consumed once the action completes or the entity is gone.
//
// Tokens are UUIDv4 strings, so uniqueness does not depend on timestamps
// or issuance order. Entries carry an issue time and are evicted after a
// TTL; eviction is opportunistic, performed during issuance after a
// threshold of writes, so the store stays bounded without a background
// goroutine. The store is safe for concurrent use.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the explicit confirmation-flow state attached to a torrent
// offer. The rendered keyboard is derived from this tag, never the other
// way around.
type Phase int

const (
	// PhaseActive means the torrent is running and a pause is offered.
	PhaseActive Phase = iota
	// PhasePaused means the torrent is stopped and a resume is offered.
	PhasePaused
	// PhaseDeleteConfirm means the irreversible-choice submenu is shown.
	PhaseDeleteConfirm
	// PhaseTerminal means the torrent was deleted; no further transitions.
	PhaseTerminal
)

// SearchOffer is a search result exposed to a user via a download button.
// Immutable once issued.
type SearchOffer struct {
	Title string
	Link  string
	Query string
}

// TorrentOffer is a torrent exposed to a user via a control keyboard.
// State is a cache of the torrent client's last-known state and may
// drift if the client changes out-of-band; Phase drives the keyboard.
type TorrentOffer struct {
	Hash  string
	Name  string
	State string
	Phase Phase
}

// PhaseForState maps a torrent client state string onto the matching
// control phase. Unknown states are treated as active, which yields the
// reduced delete-only keyboard downstream.
func PhaseForState(state string) Phase {
	if pausedStates[state] {
		return PhasePaused
	}
	return PhaseActive
}

var pausedStates = map[string]bool{
	"pausedDL":  true,
	"pausedUP":  true,
	"stoppedDL": true,
	"stoppedUP": true,
}

// sweepThreshold is the number of issuances between opportunistic
// eviction sweeps.
const sweepThreshold = 256

// DefaultTTL bounds how long an untapped offer stays resolvable.
const DefaultTTL = 24 * time.Hour

type entry struct {
	search  *SearchOffer
	torrent *TorrentOffer
	issued  time.Time
}

// Store is the token-to-offer mapping. The zero value is not usable;
// construct with NewStore.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	writes  int

	now func() time.Time // injectable clock for tests
}

// NewStore returns an empty store whose entries expire after ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// IssueSearch stores a search offer and returns its fresh token.
func (s *Store) IssueSearch(o SearchOffer) string {
	return s.issue(entry{search: &o})
}

// IssueTorrent stores a torrent offer and returns its fresh token.
func (s *Store) IssueTorrent(o TorrentOffer) string {
	return s.issue(entry{torrent: &o})
}

func (s *Store) issue(e entry) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.writes++
	if s.writes >= sweepThreshold {
		now := s.now()
		for k, v := range s.entries {
			if now.Sub(v.issued) >= s.ttl {
				delete(s.entries, k)
			}
		}
		s.writes = 0
	}
	e.issued = s.now()
	s.entries[token] = e
	s.mu.Unlock()
	return token
}

// ResolveSearch returns the search offer for token. Expired or missing
// tokens, and tokens bound to torrent offers, report ok=false.
func (s *Store) ResolveSearch(token string) (SearchOffer, bool) {
	s.mu.RLock()
	e, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok || e.search == nil || s.expired(e) {
		return SearchOffer{}, false
	}
	return *e.search, true
}

// ResolveTorrent returns a copy of the torrent offer for token. Expired
// or missing tokens, and tokens bound to search offers, report ok=false.
func (s *Store) ResolveTorrent(token string) (TorrentOffer, bool) {
	s.mu.RLock()
	e, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok || e.torrent == nil || s.expired(e) {
		return TorrentOffer{}, false
	}
	return *e.torrent, true
}

// UpdateTorrent applies fn to the stored torrent offer under the lock,
// so cached state and phase transitions are atomic with respect to
// concurrent callbacks. It reports whether the token resolved.
func (s *Store) UpdateTorrent(token string, fn func(*TorrentOffer)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok || e.torrent == nil || s.expired(e) {
		return false
	}
	fn(e.torrent)
	return true
}

// Consume removes the entry for token. Removing an absent token is a
// no-op, not an error.
func (s *Store) Consume(token string) {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
}

// Len reports the number of live entries, expired ones included until
// the next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) expired(e entry) bool {
	return s.now().Sub(e.issued) >= s.ttl
}
