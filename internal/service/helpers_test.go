package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"chrononews-attachments/internal/adapter"
	"chrononews-attachments/internal/database/dbtest"
	"chrononews-attachments/internal/model"
	"chrononews-attachments/internal/repository"
	"chrononews-attachments/internal/tracker"
)

var errInjected = errors.New("kegagalan disengaja")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// faultyStorage wraps LocalStorage and fails chosen operations on demand.
type faultyStorage struct {
	*adapter.LocalStorage

	mu          sync.Mutex
	failPutOn   int
	puts        int
	failDelete  map[string]bool
	failWalk    bool
	failExists  bool
	deleteCalls []string
}

func newFaultyStorage() *faultyStorage {
	return &faultyStorage{
		LocalStorage: adapter.NewLocalStorage(discardLogger()),
		failDelete:   make(map[string]bool),
	}
}

func (s *faultyStorage) Put(ctx context.Context, path string, reader io.Reader, contentType string) (int64, error) {
	s.mu.Lock()
	s.puts++
	fail := s.failPutOn > 0 && s.puts == s.failPutOn
	s.mu.Unlock()
	if fail {
		return 0, errInjected
	}
	return s.LocalStorage.Put(ctx, path, reader, contentType)
}

func (s *faultyStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	s.deleteCalls = append(s.deleteCalls, path)
	fail := s.failDelete[path]
	s.mu.Unlock()
	if fail {
		return errInjected
	}
	return s.LocalStorage.Delete(ctx, path)
}

func (s *faultyStorage) Exists(ctx context.Context, path string) (bool, error) {
	if s.failExists {
		return false, errInjected
	}
	return s.LocalStorage.Exists(ctx, path)
}

func (s *faultyStorage) Walk(ctx context.Context, root string, fn adapter.WalkFunc) error {
	if s.failWalk {
		return errInjected
	}
	return s.LocalStorage.Walk(ctx, root, fn)
}

func (s *faultyStorage) setFailDelete(path string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete[path] = fail
}

// faultyTracker fails Record or Clear on demand.
type faultyTracker struct {
	tracker.FailureTracker
	failRecord bool
	failClear  bool
}

func (t *faultyTracker) Record(ctx context.Context, key tracker.Key) error {
	if t.failRecord {
		return errInjected
	}
	return t.FailureTracker.Record(ctx, key)
}

func (t *faultyTracker) Clear(ctx context.Context, key tracker.Key) error {
	if t.failClear {
		return errInjected
	}
	return t.FailureTracker.Clear(ctx, key)
}

// faultyStore wraps a MetadataStore and fails Create or Delete on demand.
// Transactions hand out a wrapped store so the faults apply inside them too.
type faultyStore struct {
	repository.MetadataStore
	failCreateOn int
	creates      int
	failDelete   bool
}

func (s *faultyStore) Create(ctx context.Context, meta *model.FileMeta) error {
	s.creates++
	if s.failCreateOn > 0 && s.creates == s.failCreateOn {
		return errInjected
	}
	return s.MetadataStore.Create(ctx, meta)
}

func (s *faultyStore) Delete(ctx context.Context, id int32) error {
	if s.failDelete {
		return errInjected
	}
	return s.MetadataStore.Delete(ctx, id)
}

func (s *faultyStore) Transaction(ctx context.Context, fn func(tx repository.MetadataStore) error) error {
	return s.MetadataStore.Transaction(ctx, func(tx repository.MetadataStore) error {
		inner := *s
		inner.MetadataStore = tx
		err := fn(&inner)
		s.creates = inner.creates
		return err
	})
}

type fixture struct {
	root     string
	storage  *faultyStorage
	store    *repository.FileMetaRepository
	tracker  tracker.FailureTracker
	writer   *FileWriter
	locks    *PostLocker
	upload   *UploadCoordinator
	deletion *DeletionCoordinator
	download *DownloadService
	channel  *CleanupChannel
	consumer *CleanupConsumer
	sweeper  *Sweeper
	janitor  *TrackerJanitor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := discardLogger()
	db := dbtest.New(t)

	f := &fixture{
		root:    t.TempDir(),
		storage: newFaultyStorage(),
		store:   repository.NewFileMetaRepository(db),
		tracker: tracker.NewDBTracker(db, logger),
		locks:   NewPostLocker(),
		channel: NewCleanupChannel(16),
	}
	f.writer = NewFileWriter(f.storage, f.root)
	f.upload = NewUploadCoordinator(f.store, f.writer, f.locks, logger)
	f.deletion = NewDeletionCoordinator(f.store, f.writer, f.tracker, f.locks, logger)
	f.download = NewDownloadService(f.store, f.storage, logger)
	f.consumer = NewCleanupConsumer(f.channel, f.writer, f.tracker, logger)
	f.sweeper = NewSweeper(f.tracker, f.storage, f.root, f.channel, logger)
	f.janitor = NewTrackerJanitor(f.tracker, f.storage, logger)
	return f
}
