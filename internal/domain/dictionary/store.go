package dictionary

import (
	"sync/atomic"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Store holds the active Snapshot. Readers grab Current() once per invocation;
// Reload compiles a new snapshot and swaps the pointer, so in-flight readers
// keep the one they started with.
type Store struct {
	current atomic.Pointer[Snapshot]
	log     *logger.Logger
}

// NewStore compiles doc into the initial snapshot. A bad document is fatal here.
func NewStore(doc *Document) (*Store, error) {
	snap, err := NewSnapshot(doc)
	if err != nil {
		return nil, err
	}
	s := &Store{log: logger.Get().With("component", "dictionary_store")}
	s.current.Store(snap)
	return s, nil
}

// NewStoreFromFile loads path, or the embedded default when path is empty
func NewStoreFromFile(path string) (*Store, error) {
	var (
		doc *Document
		err error
	)
	if path == "" {
		doc, err = LoadEmbedded()
	} else {
		doc, err = Load(path)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(doc)
}

// Current returns the active snapshot
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Version returns the active snapshot's version tag
func (s *Store) Version() string {
	return s.Current().Version()
}

// Reload replaces the active snapshot with doc. On failure the previous
// snapshot stays active and a ConfigError is returned.
func (s *Store) Reload(doc *Document) error {
	snap, err := NewSnapshot(doc)
	if err != nil {
		s.log.Warnw("Dictionary reload rejected, keeping previous snapshot",
			"active_version", s.Version(),
			"error", err,
		)
		return err
	}

	prev := s.current.Swap(snap)
	s.log.Infow("Dictionary reloaded",
		"previous_version", prev.Version(),
		"version", snap.Version(),
	)
	return nil
}

// ReloadFile loads path and reloads from it
func (s *Store) ReloadFile(path string) error {
	doc, err := Load(path)
	if err != nil {
		s.log.Warnw("Dictionary file rejected, keeping previous snapshot",
			"path", path,
			"active_version", s.Version(),
			"error", err,
		)
		return errors.Wrapf(err, "reload %s", path)
	}
	return s.Reload(doc)
}
