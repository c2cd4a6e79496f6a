package workers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/pkg/errors"
)

const embeddedVersion = `version: "2026.10.1"`

func writeDictionary(t *testing.T, path, version string) {
	t.Helper()
	data := bytes.Replace(dictionary.DefaultDocument(), []byte(embeddedVersion), []byte(`version: "`+version+`"`), 1)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func newReloadFixture(t *testing.T) (*dictionary.Store, string) {
	t.Helper()
	require.Contains(t, string(dictionary.DefaultDocument()), embeddedVersion)

	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	writeDictionary(t, path, "v1")
	store, err := dictionary.NewStoreFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "v1", store.Version())
	return store, path
}

func TestDictionaryReloadWorker_UnchangedFile(t *testing.T) {
	store, path := newReloadFixture(t)
	before := store.Current()

	w := NewDictionaryReloadWorker(store, path, time.Minute)
	require.NoError(t, w.Run(context.Background()))

	assert.Same(t, before, store.Current(), "unchanged content keeps the snapshot")
}

func TestDictionaryReloadWorker_ChangedFile(t *testing.T) {
	store, path := newReloadFixture(t)
	w := NewDictionaryReloadWorker(store, path, time.Minute)

	writeDictionary(t, path, "v2")
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, "v2", store.Version())
}

func TestDictionaryReloadWorker_BadFileKeepsSnapshot(t *testing.T) {
	store, path := newReloadFixture(t)
	w := NewDictionaryReloadWorker(store, path, time.Minute)

	require.NoError(t, os.WriteFile(path, []byte("version: v3\nsentiment: {}\n"), 0o600))
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfig)
	assert.Equal(t, "v1", store.Version())

	// same bad content is not retried
	require.NoError(t, w.Run(context.Background()))

	writeDictionary(t, path, "v4")
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, "v4", store.Version())
}

func TestDictionaryReloadWorker_MissingFile(t *testing.T) {
	store, path := newReloadFixture(t)
	w := NewDictionaryReloadWorker(store, path, time.Minute)

	require.NoError(t, os.Remove(path))
	err := w.Run(context.Background())
	assert.ErrorIs(t, err, errors.ErrConfig)
	assert.Equal(t, "v1", store.Version())
}

func TestDictionaryReloadWorker_DisabledWithoutPath(t *testing.T) {
	store, err := dictionary.NewStoreFromFile("")
	require.NoError(t, err)

	w := NewDictionaryReloadWorker(store, "", time.Minute)
	assert.False(t, w.Enabled())
}

func TestDictionaryReloadWorker_Scheduled(t *testing.T) {
	store, path := newReloadFixture(t)
	w := NewDictionaryReloadWorker(store, path, 20*time.Millisecond)

	scheduler := NewScheduler()
	scheduler.RegisterWorker(w)
	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop()

	writeDictionary(t, path, "v5")
	assert.Eventually(t, func() bool { return store.Version() == "v5" }, time.Second, 10*time.Millisecond)
}
