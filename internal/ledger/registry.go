package ledger

import "sort"

// Registry owns the set of accounts for one run. Accounts are created
// lazily on first reference and never deleted. The registry, like the
// accounts it owns, is not safe for concurrent use: exactly one driver
// owns it at a time.
type Registry struct {
	accounts map[uint16]*Account
}

func NewRegistry() *Registry {
	return &Registry{accounts: make(map[uint16]*Account)}
}

// Account returns the account for clientID, creating it if this is the
// first reference. The second result reports whether it was just created.
func (r *Registry) Account(clientID uint16) (*Account, bool) {
	if account, exists := r.accounts[clientID]; exists {
		return account, false
	}
	account := NewAccount(clientID)
	r.accounts[clientID] = account
	return account, true
}

func (r *Registry) Len() int { return len(r.accounts) }

// Snapshots projects every account ever created, including ones with zero
// net balance, ordered by ascending client id regardless of arrival order.
func (r *Registry) Snapshots() ([]Snapshot, error) {
	snapshots := make([]Snapshot, 0, len(r.accounts))
	for _, account := range r.accounts {
		snapshot, err := account.Snapshot()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Client < snapshots[j].Client
	})
	return snapshots, nil
}
