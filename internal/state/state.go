// Package state persists the deployment history: which hosts were touched,
// by which operation, with which image tag and runtime. Purely informational
// for the operator; operations never branch on it.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// History represents the persistent per-host deployment records.
type History struct {
	Version     string           `json:"version"`
	LastUpdated time.Time        `json:"last_updated"`
	Hosts       map[string]*Host `json:"hosts"`
	mu          sync.RWMutex     `json:"-"`
	filePath    string           `json:"-"`
	modified    bool             `json:"-"`
}

// Host represents the last recorded deployment action against one host.
type Host struct {
	LastAction string    `json:"last_action"` // deploy, start, stop, setup, import-data
	ImageTag   string    `json:"image_tag,omitempty"`
	Runtime    string    `json:"runtime,omitempty"` // podman or docker
	Time       time.Time `json:"time"`
}

// Load loads the history from a JSON file at the specified path.
// Returns an empty history if the file doesn't exist.
func Load(filePath string) (*History, error) {
	h := &History{
		Version:  "1",
		Hosts:    make(map[string]*Host),
		filePath: filePath,
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return h, nil
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is controlled by application, not user input
	if err != nil {
		return nil, fmt.Errorf("failed to read history file from %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", filePath, err)
	}

	h.filePath = filePath
	return h, nil
}

// Record stores the outcome of an operation against a host and marks the
// history as needing a save.
func (h *History) Record(host, action, imageTag, runtimeName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Hosts[host] = &Host{
		LastAction: action,
		ImageTag:   imageTag,
		Runtime:    runtimeName,
		Time:       time.Now(),
	}
	h.modified = true
}

// Save saves the history to the JSON file atomically via a temp file and
// rename. Only writes when the history has been modified.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.modified {
		return nil // No changes to save
	}

	h.LastUpdated = time.Now()

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history for %s: %w", h.filePath, err)
	}

	tmpPath := h.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp history file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, h.filePath); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to rename temp history file %s to %s: %w", tmpPath, h.filePath, err)
	}

	h.modified = false
	return nil
}

// GetAllHosts returns a deep copy of the per-host records.
func (h *History) GetAllHosts() map[string]*Host {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make(map[string]*Host, len(h.Hosts))
	for host, rec := range h.Hosts {
		clone := *rec
		result[host] = &clone
	}
	return result
}

// Remove drops the record for one host. Returns true if it existed.
func (h *History) Remove(host string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.Hosts[host]; exists {
		delete(h.Hosts, host)
		h.modified = true
		return true
	}
	return false
}

// Clear removes every record and persists the change immediately.
func (h *History) Clear() error {
	h.mu.Lock()
	h.Hosts = make(map[string]*Host)
	h.modified = true
	h.mu.Unlock()

	return h.Save()
}

// Count returns the number of hosts with a recorded action.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Hosts)
}
