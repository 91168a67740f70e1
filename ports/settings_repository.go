package ports

import (
	"context"

	"datalens/domain/chat"
)

// SettingsRepository defines the interface for assistant settings persistence.
// There is a single settings record per installation.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*chat.Settings, error)
	SaveSettings(ctx context.Context, s *chat.Settings) error
}
