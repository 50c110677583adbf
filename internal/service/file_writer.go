package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"chrononews-attachments/internal/adapter"
	"chrononews-attachments/internal/constant"

	"github.com/google/uuid"
)

const maxExtensionLength = 16

// Payload is one uploaded file. OriginalName and ContentType come from the
// uploader and are not trusted.
type Payload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Content      io.Reader
}

func (p Payload) Empty() bool {
	return p.Content == nil || p.Size <= 0
}

type FileWriter struct {
	storage  adapter.Storage
	root     string
	newToken func() string
}

func NewFileWriter(storage adapter.Storage, uploadRoot string) *FileWriter {
	return &FileWriter{
		storage:  storage,
		root:     uploadRoot,
		newToken: randomToken,
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Resolve returns the stored name and full path for a new upload:
// {root}/{yyyy-MM-dd}/{token}[.ext].
func (w *FileWriter) Resolve(originalName string, at time.Time) (storedName, path string) {
	storedName = w.newToken()
	if ext := extensionOf(originalName); ext != "" {
		storedName = storedName + "." + ext
	}
	path = filepath.Join(w.root, at.Format(constant.UploadDateLayout), storedName)
	return storedName, path
}

func (w *FileWriter) Write(ctx context.Context, path string, payload Payload) (int64, error) {
	return w.storage.Put(ctx, path, payload.Content, payload.ContentType)
}

func (w *FileWriter) Delete(ctx context.Context, path string) error {
	return w.storage.Delete(ctx, path)
}

// extensionOf takes the text after the last dot. Anything that is not a short
// ASCII alphanumeric run is dropped so user input never shapes the path.
func extensionOf(originalName string) string {
	idx := strings.LastIndex(originalName, ".")
	if idx < 0 || idx == len(originalName)-1 {
		return ""
	}
	ext := originalName[idx+1:]
	if len(ext) > maxExtensionLength {
		return ""
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
