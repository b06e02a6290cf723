package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Storage persists full layout state objects under string keys.
type Storage interface {
	Load(key string) (State, bool, error)
	Save(key string, st State) error
}

// MemoryStorage is an in-process Storage, used in tests and as a
// fallback when no state directory is writable.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]State
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]State)}
}

// Load implements Storage.
func (m *MemoryStorage) Load(key string) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return st.Clone(), true, nil
}

// Save implements Storage.
func (m *MemoryStorage) Save(key string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = st.Clone()
	return nil
}

// FileStorage keeps each key as a JSON document in a directory and can
// watch that directory for writes made by other processes. A watched
// external write plays the role of a cross-tab storage notification:
// the full new state object is delivered to the registered handler.
type FileStorage struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}

	// keys saved by this process, so our own writes are not replayed
	// back as external changes.
	selfWrites map[string]int
}

// NewFileStorage creates the directory if needed.
func NewFileStorage(dir string, logger *zap.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStorage{
		dir:        dir,
		logger:     logger,
		selfWrites: make(map[string]int),
	}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load implements Storage.
func (f *FileStorage) Load(key string) (State, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, false, fmt.Errorf("parse layout %s: %w", key, err)
	}
	return st, true, nil
}

// Save implements Storage. The whole state object is written; there is
// no partial update.
func (f *FileStorage) Save(key string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.selfWrites[key]++
	f.mu.Unlock()
	return os.WriteFile(f.path(key), data, 0o644)
}

// Watch starts delivering external writes to onChange until Close.
// onChange receives the storage key and the complete new state, on the
// watcher goroutine.
func (f *FileStorage) Watch(onChange func(key string, st State)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		return err
	}

	f.mu.Lock()
	f.watcher = watcher
	f.done = make(chan struct{})
	done := f.done
	f.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				key := strings.TrimSuffix(filepath.Base(ev.Name), ".json")
				if key == filepath.Base(ev.Name) {
					continue // not a layout document
				}
				if f.consumeSelfWrite(key) {
					continue
				}
				st, ok, err := f.Load(key)
				if err != nil || !ok {
					if err != nil {
						f.logger.Warn("external layout unreadable", zap.String("key", key), zap.Error(err))
					}
					continue
				}
				onChange(key, st)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("layout watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (f *FileStorage) consumeSelfWrite(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selfWrites[key] > 0 {
		f.selfWrites[key]--
		return true
	}
	return false
}

// Close stops the watcher, if any.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	watcher := f.watcher
	done := f.done
	f.watcher = nil
	f.done = nil
	f.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	if done != nil {
		<-done
	}
	return err
}
