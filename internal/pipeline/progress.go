package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// progressState is what an interrupted run leaves behind: which
// document keys finished, so the next run can skip them.
type progressState struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ProcessedKeys []string  `json:"processed_keys"`

	keys map[string]struct{}
}

func newProgress(runID string) *progressState {
	return &progressState{
		RunID:     runID,
		StartedAt: time.Now(),
		keys:      make(map[string]struct{}),
	}
}

// loadProgress reads an existing progress file. A missing path or file
// yields (nil, nil): a fresh run.
func loadProgress(path string) (*progressState, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	var state progressState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse progress file %s: %w", path, err)
	}
	state.keys = make(map[string]struct{}, len(state.ProcessedKeys))
	for _, key := range state.ProcessedKeys {
		state.keys[key] = struct{}{}
	}
	return &state, nil
}

func (p *progressState) done(key string) bool {
	_, ok := p.keys[key]
	return ok
}

func (p *progressState) mark(key string) {
	if _, ok := p.keys[key]; ok {
		return
	}
	p.keys[key] = struct{}{}
	p.ProcessedKeys = append(p.ProcessedKeys, key)
	p.UpdatedAt = time.Now()
}

// save writes the state atomically (write then rename) so an interrupt
// mid-save cannot corrupt the resume point.
func (p *progressState) save(path string) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Clear removes a finished run's progress file.
func Clear(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
