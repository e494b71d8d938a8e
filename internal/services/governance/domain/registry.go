package domain

// AuthorityEntry is one registry slot: an authorized account and the id of
// the session it last acted on (voted, or was admitted by). Zero means the
// account never acted; session ids start at 1.
type AuthorityEntry struct {
	Address   Address
	LastActed uint64
}

// Registry is the ordered set of authorities. Insertion order is preserved
// for enumeration; membership tests are O(1). The registry is a dumb
// container: the "never drop to zero entries" rule is enforced by its
// callers, not here.
type Registry struct {
	entries []AuthorityEntry
	index   map[Address]int
}

// NewRegistry builds a registry from entries in order. Later duplicates
// overwrite earlier ones without changing their position.
func NewRegistry(entries ...AuthorityEntry) *Registry {
	r := &Registry{index: make(map[Address]int, len(entries))}
	for _, entry := range entries {
		r.Insert(entry.Address, entry.LastActed)
	}
	return r
}

// Contains reports whether account is a current authority.
func (r *Registry) Contains(account Address) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[account]
	return ok
}

// Size returns the number of authorities.
func (r *Registry) Size() uint64 {
	if r == nil {
		return 0
	}
	return uint64(len(r.entries))
}

// Get returns the last-acted session id stored for account.
func (r *Registry) Get(account Address) (uint64, error) {
	if r == nil {
		return 0, ErrAuthorityNotFound
	}
	at, ok := r.index[account]
	if !ok {
		return 0, ErrAuthorityNotFound
	}
	return r.entries[at].LastActed, nil
}

// Insert adds account with the given last-acted session id, or overwrites
// the stored id when account is already present.
func (r *Registry) Insert(account Address, sessionID uint64) {
	if r.index == nil {
		r.index = make(map[Address]int)
	}
	if at, ok := r.index[account]; ok {
		r.entries[at].LastActed = sessionID
		return
	}
	r.index[account] = len(r.entries)
	r.entries = append(r.entries, AuthorityEntry{Address: account, LastActed: sessionID})
}

// Remove deletes account from the registry, preserving the order of the
// remaining entries.
func (r *Registry) Remove(account Address) error {
	if r == nil {
		return ErrAuthorityNotFound
	}
	at, ok := r.index[account]
	if !ok {
		return ErrAuthorityNotFound
	}
	r.entries = append(r.entries[:at], r.entries[at+1:]...)
	delete(r.index, account)
	for i := at; i < len(r.entries); i++ {
		r.index[r.entries[i].Address] = i
	}
	return nil
}

// Entries returns the authorities in insertion order.
func (r *Registry) Entries() []AuthorityEntry {
	if r == nil {
		return nil
	}
	out := make([]AuthorityEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	return NewRegistry(r.Entries()...)
}
