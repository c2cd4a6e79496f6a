package workers

import (
	"context"
	"crypto/sha256"
	"os"
	"sync"
	"time"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/metrics"
	"marketpulse/pkg/errors"
)

// DictionaryReloadWorker polls a dictionary file and hot-swaps the store when
// its content changes. A rejected document is counted once per content hash;
// the previous snapshot stays active until a valid file appears.
type DictionaryReloadWorker struct {
	*BaseWorker
	store *dictionary.Store
	path  string

	mu       sync.Mutex
	lastHash [sha256.Size]byte
}

// NewDictionaryReloadWorker creates the worker. It is disabled when path is
// empty, since the embedded dictionary never changes.
func NewDictionaryReloadWorker(store *dictionary.Store, path string, interval time.Duration) *DictionaryReloadWorker {
	w := &DictionaryReloadWorker{
		BaseWorker: NewBaseWorker("dictionary_reload", interval, path != ""),
		store:      store,
		path:       path,
	}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			w.lastHash = sha256.Sum256(data)
		}
	}
	return w
}

// Run reloads the dictionary if the file content changed since the last run
func (w *DictionaryReloadWorker) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return errors.NewConfigError("read dictionary "+w.path, err)
	}

	hash := sha256.Sum256(data)
	w.mu.Lock()
	unchanged := hash == w.lastHash
	w.lastHash = hash
	w.mu.Unlock()
	if unchanged {
		return nil
	}

	err = w.reload(data)
	metrics.RecordDictionaryReload(err)
	if err != nil {
		return errors.Wrapf(err, "reload %s", w.path)
	}

	w.Log().Infow("Dictionary file changed, snapshot swapped",
		"path", w.path,
		"version", w.store.Version(),
	)
	return nil
}

func (w *DictionaryReloadWorker) reload(data []byte) error {
	format, err := dictionary.FormatFromPath(w.path)
	if err != nil {
		return err
	}
	doc, err := dictionary.Parse(data, format)
	if err != nil {
		return err
	}
	return w.store.Reload(doc)
}
