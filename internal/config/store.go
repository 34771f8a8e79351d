package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/pmfollow/followbot/internal/domain"
)

// Store is the process-wide holder of runtime-mutable settings: the follow
// policy, the notification settings, and the tracked wallet registry.
//
// Reads return value copies under a read lock, so every reader observes a
// consistent snapshot even while the wallet monitors and the HTTP API mutate
// settings concurrently. Updates are read-modify-write under the write lock
// and bump a version counter, which readers can use to detect staleness.
type Store struct {
	mu      sync.RWMutex
	version int64
	follow  domain.FollowConfig
	notify  NotifyConfig
	wallets []domain.TrackedWallet
}

// NewStore seeds a Store from the loaded file configuration. Wallet seeds
// get generated ids and registration timestamps.
func NewStore(cfg *Config) *Store {
	now := time.Now().UTC()
	wallets := make([]domain.TrackedWallet, 0, len(cfg.Wallets))
	for _, seed := range cfg.Wallets {
		status := domain.WalletStatus(seed.Status)
		if !status.Valid() {
			status = domain.WalletActive
		}
		wallets = append(wallets, domain.TrackedWallet{
			ID:           "w_" + uuid.NewString(),
			Address:      strings.ToLower(seed.Address),
			Label:        seed.Label,
			Status:       status,
			AddedAt:      now,
			LastActiveAt: now,
			Tags:         append([]string(nil), seed.Tags...),
		})
	}

	return &Store{
		version: 1,
		follow:  cfg.Follow,
		notify:  cfg.Notify,
		wallets: wallets,
	}
}

// Version returns the current settings version.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Follow returns a snapshot of the follow policy and the version it belongs
// to.
func (s *Store) Follow() (domain.FollowConfig, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.follow, s.version
}

// UpdateFollow validates and installs a new follow policy, returning the new
// version. Invalid policies are rejected with domain.ErrInvalidConfig and
// leave the current snapshot untouched.
func (s *Store) UpdateFollow(next domain.FollowConfig) (int64, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.follow = next
	s.version++
	return s.version, nil
}

// Notify returns a snapshot of the notification settings.
func (s *Store) Notify() NotifyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.notify
	out.Events = append([]string(nil), s.notify.Events...)
	return out
}

// UpdateNotify installs new notification settings and returns the new
// version.
func (s *Store) UpdateNotify(next NotifyConfig) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = next
	s.version++
	return s.version
}

// Wallets returns a copy of the tracked wallet registry.
func (s *Store) Wallets() []domain.TrackedWallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TrackedWallet, len(s.wallets))
	copy(out, s.wallets)
	return out
}

// ActiveWallets returns the tracked wallets currently being monitored.
func (s *Store) ActiveWallets() []domain.TrackedWallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TrackedWallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		if w.Status == domain.WalletActive {
			out = append(out, w)
		}
	}
	return out
}

// AddWallet registers a new tracked wallet. The address must be a valid hex
// address and not already registered.
func (s *Store) AddWallet(address, label string, tags []string) (domain.TrackedWallet, error) {
	if strings.TrimSpace(address) == "" || strings.TrimSpace(label) == "" {
		return domain.TrackedWallet{}, fmt.Errorf("config: address and label are required: %w", domain.ErrMissingField)
	}
	if !common.IsHexAddress(address) {
		return domain.TrackedWallet{}, fmt.Errorf("config: %q is not a valid address: %w", address, domain.ErrInvalidConfig)
	}

	addr := strings.ToLower(address)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.wallets {
		if w.Address == addr {
			return domain.TrackedWallet{}, fmt.Errorf("config: wallet %s: %w", addr, domain.ErrAlreadyExists)
		}
	}

	now := time.Now().UTC()
	wallet := domain.TrackedWallet{
		ID:           "w_" + uuid.NewString(),
		Address:      addr,
		Label:        label,
		Status:       domain.WalletActive,
		AddedAt:      now,
		LastActiveAt: now,
		Tags:         append([]string(nil), tags...),
	}
	s.wallets = append(s.wallets, wallet)
	s.version++
	return wallet, nil
}

// SetWalletStatus updates a tracked wallet's monitoring status.
func (s *Store) SetWalletStatus(id string, status domain.WalletStatus) error {
	if !status.Valid() {
		return fmt.Errorf("config: unknown wallet status %q: %w", status, domain.ErrInvalidConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wallets {
		if s.wallets[i].ID == id {
			s.wallets[i].Status = status
			s.version++
			return nil
		}
	}
	return fmt.Errorf("config: wallet %s: %w", id, domain.ErrNotFound)
}

// TouchWallet records monitoring activity for the wallet with the given
// address.
func (s *Store) TouchWallet(address string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wallets {
		if s.wallets[i].Address == address {
			s.wallets[i].LastActiveAt = at
			s.wallets[i].TradeCount++
			return
		}
	}
}
