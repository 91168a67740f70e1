package jsonstore

import (
	"context"

	"datalens/domain/chat"
	"datalens/ports"
)

// settingsRepository implements the SettingsRepository interface
type settingsRepository struct {
	store *Store
}

// NewSettingsRepository creates a settings repository backed by the store
func NewSettingsRepository(store *Store) ports.SettingsRepository {
	return &settingsRepository{store: store}
}

// GetSettings returns the stored settings, or the mock-provider defaults when
// nothing has been saved yet.
func (r *settingsRepository) GetSettings(ctx context.Context) (*chat.Settings, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if r.store.state.Settings == nil {
		return &chat.Settings{Provider: chat.ProviderMock}, nil
	}
	cp := *r.store.state.Settings
	return &cp, nil
}

// SaveSettings replaces the single settings record
func (r *settingsRepository) SaveSettings(ctx context.Context, s *chat.Settings) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	cp := *s
	r.store.state.Settings = &cp
	r.store.markDirty()
	return nil
}
