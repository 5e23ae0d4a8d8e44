// state/state.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Direction of an open position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Position is one open simulated position. Exactly one Position (or none)
// exists per instrument at any time. Size is fixed at entry; the stop only
// ever ratchets in the position's favor.
type Position struct {
	Direction     Direction `json:"direction"`
	EntryPrice    float64   `json:"entry_price"`
	Size          float64   `json:"size"`
	StopPrice     float64   `json:"stop_price"`
	HighWaterMark float64   `json:"high_water_mark"`
	LowWaterMark  float64   `json:"low_water_mark"`
}

// AppState is the top-level structure persisted to the state file.
type AppState struct {
	Balance   float64              `json:"balance"`
	Positions map[string]*Position `json:"positions"`
}

// StateManagerInterface defines the capabilities of the state manager for
// upper-level modules (engine, reporting, telegram surface). Interface-first
// so the engine can be tested against in-memory fakes and the file layout
// can change without touching callers.
type StateManagerInterface interface {
	// Balance returns the current account balance.
	Balance() float64
	// Position returns a copy of the open position for an instrument, or nil.
	Position(name string) *Position
	// Snapshot returns a deep copy of the full state for reporting.
	Snapshot() AppState
	// OpenPosition records a newly opened position and persists.
	OpenPosition(name string, pos Position) error
	// UpdatePosition replaces an open position (trailing-stop advance) and persists.
	UpdatePosition(name string, pos Position) error
	// ClosePosition removes the position, credits realized pnl to the balance
	// and persists.
	ClosePosition(name string, pnl float64) error
	// FlattenAll discards every open position without realizing P&L and
	// persists. Idempotent.
	FlattenAll() error
}

// Ensure StateManager implements the interface.
var _ StateManagerInterface = (*StateManager)(nil)

// StateManager is the file-backed implementation. Every mutation is saved
// synchronously with a write-to-temp-then-rename so a reader can never
// observe a truncated snapshot.
type StateManager struct {
	mu             sync.RWMutex
	filePath       string
	defaultBalance float64
	state          *AppState
}

// NewStateManager loads existing state from filePath or falls back to a
// fresh default state (default balance, all positions empty) when the file
// is absent, unreadable, or carries a non-positive balance.
func NewStateManager(filePath string, instrumentNames []string, defaultBalance float64) (*StateManager, error) {
	sm := &StateManager{
		filePath:       filePath,
		defaultBalance: defaultBalance,
		state:          defaultState(instrumentNames, defaultBalance),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := sm.load(instrumentNames); err != nil {
		return nil, err
	}
	return sm, nil
}

func defaultState(instrumentNames []string, balance float64) *AppState {
	st := &AppState{
		Balance:   balance,
		Positions: make(map[string]*Position, len(instrumentNames)),
	}
	for _, name := range instrumentNames {
		st.Positions[name] = nil
	}
	return st
}

// load hydrates from disk, recovering to defaults on any corruption.
func (sm *StateManager) load(instrumentNames []string) error {
	data, err := os.ReadFile(sm.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Info: State file not found at %s. Starting with a fresh state.\n", sm.filePath)
			return sm.save()
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var loaded AppState
	if len(data) == 0 || json.Unmarshal(data, &loaded) != nil {
		fmt.Printf("Warning: State file at %s is unreadable. Resetting to defaults.\n", sm.filePath)
		sm.state = defaultState(instrumentNames, sm.defaultBalance)
		return sm.save()
	}

	// A non-positive balance means the ledger is corrupt; a defensive reset
	// beats trading against garbage.
	if loaded.Balance <= 0 {
		fmt.Printf("Warning: Persisted balance %.2f is non-positive. Resetting to defaults.\n", loaded.Balance)
		sm.state = defaultState(instrumentNames, sm.defaultBalance)
		return sm.save()
	}

	if loaded.Positions == nil {
		loaded.Positions = make(map[string]*Position, len(instrumentNames))
	}
	for _, name := range instrumentNames {
		if _, ok := loaded.Positions[name]; !ok {
			loaded.Positions[name] = nil
		}
	}
	sm.state = &loaded
	return nil
}

// save performs an atomic write while the caller holds the lock.
func (sm *StateManager) save() error {
	data, err := json.MarshalIndent(sm.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state for saving: %w", err)
	}

	tmpFilePath := sm.filePath + ".tmp"
	if err := os.WriteFile(tmpFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to temporary state file: %w", err)
	}
	return os.Rename(tmpFilePath, sm.filePath)
}

func (sm *StateManager) Balance() float64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state.Balance
}

func (sm *StateManager) Position(name string) *Position {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	pos := sm.state.Positions[name]
	if pos == nil {
		return nil
	}
	copied := *pos
	return &copied
}

func (sm *StateManager) Snapshot() AppState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	snap := AppState{
		Balance:   sm.state.Balance,
		Positions: make(map[string]*Position, len(sm.state.Positions)),
	}
	for name, pos := range sm.state.Positions {
		if pos == nil {
			snap.Positions[name] = nil
			continue
		}
		copied := *pos
		snap.Positions[name] = &copied
	}
	return snap
}

func (sm *StateManager) OpenPosition(name string, pos Position) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if existing := sm.state.Positions[name]; existing != nil {
		return fmt.Errorf("instrument %s already has an open position", name)
	}
	copied := pos
	sm.state.Positions[name] = &copied
	return sm.save()
}

func (sm *StateManager) UpdatePosition(name string, pos Position) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.state.Positions[name] == nil {
		return fmt.Errorf("instrument %s has no open position to update", name)
	}
	copied := pos
	sm.state.Positions[name] = &copied
	return sm.save()
}

func (sm *StateManager) ClosePosition(name string, pnl float64) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.state.Positions[name] == nil {
		return fmt.Errorf("instrument %s has no open position to close", name)
	}
	sm.state.Positions[name] = nil
	sm.state.Balance += pnl
	return sm.save()
}

func (sm *StateManager) FlattenAll() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	// Positions are discarded, not closed at market: the balance stays
	// untouched. This matches the kill-switch intent of the operator command.
	for name := range sm.state.Positions {
		sm.state.Positions[name] = nil
	}
	return sm.save()
}
