package models

import (
	"sync"
)

// PortfolioManager serializes ledger updates per user.
// Uses per-user locks instead of a global lock
type PortfolioManager struct {
	userLocks map[string]*sync.Mutex // user id → mutex
	mapMutex  sync.RWMutex           // protects the map itself
}

// NewPortfolioManager creates a new portfolio manager
func NewPortfolioManager() *PortfolioManager {
	return &PortfolioManager{
		userLocks: make(map[string]*sync.Mutex),
	}
}

// LockUser locks the ledger of a single user
func (pm *PortfolioManager) LockUser(userID string) {
	pm.mapMutex.Lock()
	userMutex, ok := pm.userLocks[userID]
	if !ok {
		userMutex = &sync.Mutex{}
		pm.userLocks[userID] = userMutex
	}
	pm.mapMutex.Unlock()

	userMutex.Lock()
}

// UnlockUser unlocks the ledger of a single user
func (pm *PortfolioManager) UnlockUser(userID string) {
	pm.mapMutex.RLock()
	userMutex := pm.userLocks[userID]
	pm.mapMutex.RUnlock()

	if userMutex != nil {
		userMutex.Unlock()
	}
}

// WithUser runs fn while holding the user's lock.
func (pm *PortfolioManager) WithUser(userID string, fn func() error) error {
	pm.LockUser(userID)
	defer pm.UnlockUser(userID)
	return fn()
}
