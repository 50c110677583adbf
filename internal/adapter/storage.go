package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

var ErrNotExist = fs.ErrNotExist

// WalkFunc receives the full path and base name of every regular file.
type WalkFunc func(path, name string) error

type Storage interface {
	// Put leaves nothing behind when it fails.
	Put(ctx context.Context, path string, reader io.Reader, contentType string) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete succeeds when the file is already gone.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	Walk(ctx context.Context, root string, fn WalkFunc) error
}

type LocalStorage struct {
	logger *slog.Logger
}

func NewLocalStorage(logger *slog.Logger) *LocalStorage {
	return &LocalStorage{logger: logger.With(slog.String("component", "storage"))}
}

func (s *LocalStorage) Put(ctx context.Context, path string, reader io.Reader, contentType string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, err
	}

	written, copyErr := io.Copy(outFile, reader)

	closeErr := outFile.Close()

	if copyErr != nil {
		os.Remove(path)
		return written, copyErr
	}
	if closeErr != nil {
		os.Remove(path)
		return written, closeErr
	}

	return written, nil
}

func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, fmt.Errorf("%s bukan file biasa", path)
	}
	return file, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("File lokal tidak ditemukan saat penghapusan", "path", path)
			return nil
		}
		return err
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *LocalStorage) Walk(ctx context.Context, root string, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return fn(path, d.Name())
	})
}

func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
