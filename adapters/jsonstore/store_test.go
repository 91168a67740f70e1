package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"datalens/domain/chat"
	"datalens/domain/core"
	"datalens/domain/dataset"

	"github.com/stretchr/testify/assert"
)

func sampleDataset(id string) *dataset.Dataset {
	return &dataset.Dataset{
		ID:       core.DatasetID(id),
		Name:     "sales",
		Filename: "sales.csv",
		Path:     "/uploads/sales.csv",
		Size:     100,
		Rows:     3,
		Columns: []dataset.Column{
			{Name: "price", Type: dataset.ColumnNumeric, NonNull: 3, Unique: 3},
		},
		Status:     dataset.StatusReady,
		UploadedAt: core.Now(),
	}
}

// TestStore_RoundTrip verifies state survives a flush and reopen.
func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	assert.NoError(t, err)
	datasets := NewDatasetRepository(store)
	settings := NewSettingsRepository(store)

	ctx := context.Background()
	assert.NoError(t, datasets.Create(ctx, sampleDataset("ds-1")))
	assert.NoError(t, settings.SaveSettings(ctx, &chat.Settings{Provider: chat.ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o-mini"}))
	assert.NoError(t, store.Close())

	reopened, err := Open(dir)
	assert.NoError(t, err)

	ds, err := NewDatasetRepository(reopened).GetByID(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Equal(t, "sales", ds.Name)
	assert.Equal(t, dataset.StatusReady, ds.Status)
	assert.Len(t, ds.Columns, 1)

	s, err := NewSettingsRepository(reopened).GetSettings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, chat.ProviderOpenAI, s.Provider)
	assert.Equal(t, "sk-test", s.APIKey)
}

// TestStore_FlushOnlyWhenDirty verifies clean stores skip the disk write.
func TestStore_FlushOnlyWhenDirty(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	assert.NoError(t, err)

	assert.NoError(t, store.Flush())
	_, statErr := os.Stat(filepath.Join(dir, stateFile))
	assert.True(t, os.IsNotExist(statErr), "clean store should not write state.json")

	assert.NoError(t, NewDatasetRepository(store).Create(context.Background(), sampleDataset("ds-1")))
	assert.NoError(t, store.Flush())
	_, statErr = os.Stat(filepath.Join(dir, stateFile))
	assert.NoError(t, statErr)
}

// TestStore_CloseRejectsWrites verifies mutations fail after Close.
func TestStore_CloseRejectsWrites(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	assert.NoError(t, store.Close())

	err = NewDatasetRepository(store).Create(context.Background(), sampleDataset("ds-1"))
	assert.ErrorIs(t, err, core.ErrStoreClosed)
}

// TestStore_CorruptedStateFile verifies unparseable state is reported, not
// silently discarded.
func TestStore_CorruptedStateFile(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, stateFile), []byte("{not json"), 0o644))

	_, err := Open(dir)
	assert.ErrorIs(t, err, core.ErrCorruptedState)
}

// TestDatasetRepository_Lifecycle verifies create, update, status, delete.
func TestDatasetRepository_Lifecycle(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	repo := NewDatasetRepository(store)
	ctx := context.Background()

	ds := sampleDataset("ds-1")
	assert.NoError(t, repo.Create(ctx, ds))
	assert.ErrorIs(t, repo.Create(ctx, sampleDataset("ds-1")), core.ErrDuplicateID)

	ds.Rows = 99
	assert.NoError(t, repo.Update(ctx, ds))
	got, err := repo.GetByID(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Equal(t, 99, got.Rows)

	assert.NoError(t, repo.UpdateStatus(ctx, "ds-1", dataset.StatusFailed, "boom"))
	got, err = repo.GetByID(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Equal(t, dataset.StatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	failed, err := repo.ListByStatus(ctx, dataset.StatusFailed)
	assert.NoError(t, err)
	assert.Len(t, failed, 1)

	assert.NoError(t, repo.Delete(ctx, "ds-1"))
	_, err = repo.GetByID(ctx, "ds-1")
	assert.True(t, core.IsNotFoundError(err))
	assert.True(t, core.IsNotFoundError(repo.Delete(ctx, "ds-1")))
}

// TestDatasetRepository_ListOrder verifies newest uploads come first.
func TestDatasetRepository_ListOrder(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	repo := NewDatasetRepository(store)
	ctx := context.Background()

	older := sampleDataset("ds-old")
	older.UploadedAt = core.NewTimestamp(time.Now().Add(-time.Hour))
	newer := sampleDataset("ds-new")

	assert.NoError(t, repo.Create(ctx, older))
	assert.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx)
	assert.NoError(t, err)
	if len(list) != 2 {
		t.Fatalf("got %d datasets, want 2", len(list))
	}
	assert.Equal(t, core.DatasetID("ds-new"), list[0].ID)
	assert.Equal(t, core.DatasetID("ds-old"), list[1].ID)
}

// TestDatasetRepository_CopiesOnRead verifies callers cannot mutate stored state.
func TestDatasetRepository_CopiesOnRead(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	repo := NewDatasetRepository(store)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, sampleDataset("ds-1")))
	first, err := repo.GetByID(ctx, "ds-1")
	assert.NoError(t, err)
	first.Name = "mutated"
	first.Columns[0].Name = "mutated"

	second, err := repo.GetByID(ctx, "ds-1")
	assert.NoError(t, err)
	assert.Equal(t, "sales", second.Name)
	assert.Equal(t, "price", second.Columns[0].Name)
}

// TestConversationRepository_Messages verifies append order and activity bumps.
func TestConversationRepository_Messages(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	repo := NewConversationRepository(store)
	ctx := context.Background()

	created := core.NewTimestamp(time.Now().Add(-time.Minute))
	conv := &chat.Conversation{ID: "c-1", DatasetID: "ds-1", Title: "first look", CreatedAt: created, UpdatedAt: created}
	assert.NoError(t, repo.CreateConversation(ctx, conv))
	assert.ErrorIs(t, repo.CreateConversation(ctx, conv), core.ErrDuplicateID)

	first := &chat.Message{ID: "m-1", Role: chat.RoleUser, Content: "hello", CreatedAt: core.Now()}
	second := &chat.Message{ID: "m-2", Role: chat.RoleAssistant, Content: "hi", CreatedAt: core.Now()}
	assert.NoError(t, repo.AppendMessage(ctx, "c-1", first))
	assert.NoError(t, repo.AppendMessage(ctx, "c-1", second))

	messages, err := repo.GetMessages(ctx, "c-1")
	assert.NoError(t, err)
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	assert.Equal(t, chat.RoleUser, messages[0].Role)
	assert.Equal(t, chat.RoleAssistant, messages[1].Role)

	got, err := repo.GetConversation(ctx, "c-1")
	assert.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(created))

	got.Title = "renamed"
	assert.NoError(t, repo.UpdateConversation(ctx, got))
	got, err = repo.GetConversation(ctx, "c-1")
	assert.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	// Updating metadata must not drop messages
	messages, err = repo.GetMessages(ctx, "c-1")
	assert.NoError(t, err)
	assert.Len(t, messages, 2)

	assert.ErrorIs(t, repo.UpdateConversation(ctx, &chat.Conversation{ID: "ghost"}), core.ErrNotFound)

	assert.NoError(t, repo.DeleteConversation(ctx, "c-1"))
	_, err = repo.GetMessages(ctx, "c-1")
	assert.True(t, core.IsNotFoundError(err))
}

// TestSettingsRepository_Defaults verifies the mock provider comes back
// before anything is saved.
func TestSettingsRepository_Defaults(t *testing.T) {
	store, err := Open(t.TempDir())
	assert.NoError(t, err)
	repo := NewSettingsRepository(store)

	s, err := repo.GetSettings(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, chat.ProviderMock, s.Provider)
	assert.Empty(t, s.APIKey)
}
