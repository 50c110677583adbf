package adapter

import (
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBucket = "lampiran"

// fakeS3 serves the path-style subset of the S3 API used by S3Storage.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	prefixes []string
	pageSize int
}

type listBucketResult struct {
	XMLName               xml.Name     `xml:"ListBucketResult"`
	Name                  string       `xml:"Name"`
	Prefix                string       `xml:"Prefix"`
	KeyCount              int          `xml:"KeyCount"`
	IsTruncated           bool         `xml:"IsTruncated"`
	NextContinuationToken string       `xml:"NextContinuationToken,omitempty"`
	Contents              []listObject `xml:"Contents"`
}

type listObject struct {
	Key  string `xml:"Key"`
	Size int    `xml:"Size"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rest, ok := strings.CutPrefix(r.URL.Path, "/"+testBucket)
	if !ok {
		http.Error(w, "bucket tidak dikenal", http.StatusNotFound)
		return
	}
	key := strings.TrimPrefix(rest, "/")

	if key == "" && r.Method == http.MethodGet {
		f.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.objects[key] = body
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	case http.MethodHead:
		body, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	f.prefixes = append(f.prefixes, prefix)

	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := r.URL.Query().Get("continuation-token"); token != "" {
		start, _ = strconv.Atoi(token)
	}
	end := len(keys)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	result := listBucketResult{Name: testBucket, Prefix: prefix}
	for _, key := range keys[start:end] {
		result.Contents = append(result.Contents, listObject{Key: key, Size: len(f.objects[key])})
	}
	result.KeyCount = len(result.Contents)
	if end < len(keys) {
		result.IsTruncated = true
		result.NextContinuationToken = strconv.Itoa(end)
	}

	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, xml.Header)
	_ = xml.NewEncoder(w).Encode(result)
}

func (f *fakeS3) object(key string) ([]byte, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key], f.types[key]
}

func (f *fakeS3) listedPrefixes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prefixes...)
}

func newS3Storage(t *testing.T) (*S3Storage, *fakeS3) {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	fake := &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewS3Client(context.Background(), S3Options{
		Bucket:    testBucket,
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "kunci",
		SecretKey: "rahasia",
	})
	require.NoError(t, err)
	return NewS3Storage(client, testBucket, slog.New(slog.NewTextHandler(io.Discard, nil))), fake
}

func TestS3Storage_PutOpenDelete(t *testing.T) {
	s, fake := newS3Storage(t)
	ctx := context.Background()
	p := filepath.Join("./uploads", "2026-10-18", "abc.txt")

	n, err := s.Put(ctx, p, strings.NewReader("halo dunia"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	body, contentType := fake.object("uploads/2026-10-18/abc.txt")
	assert.Equal(t, []byte("halo dunia"), body)
	assert.Equal(t, "text/plain", contentType)

	exists, err := s.Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Open(ctx, p)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "halo dunia", string(data))

	require.NoError(t, s.Delete(ctx, p))
	exists, err = s.Exists(ctx, p)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Delete(ctx, p), "deleting a missing object succeeds")
}

func TestS3Storage_PutUnseekableReader(t *testing.T) {
	s, fake := newS3Storage(t)

	n, err := s.Put(context.Background(), "/uploads/a.bin", io.MultiReader(strings.NewReader("satu"), strings.NewReader("dua")), "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	body, _ := fake.object("uploads/a.bin")
	assert.Equal(t, []byte("satudua"), body)
}

func TestS3Storage_OpenMissing(t *testing.T) {
	s, _ := newS3Storage(t)

	_, err := s.Open(context.Background(), "uploads/tidak-ada.txt")
	require.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func TestS3Storage_Walk(t *testing.T) {
	s, fake := newS3Storage(t)
	fake.mu.Lock()
	fake.pageSize = 2
	fake.mu.Unlock()
	ctx := context.Background()

	for _, p := range []string{"2026-10-17/a.txt", "2026-10-18/b", "2026-10-18/c.png", "2026-10-18/d.pdf", "2026-10-19/e"} {
		_, err := s.Put(ctx, filepath.Join("./uploads", p), strings.NewReader("x"), "text/plain")
		require.NoError(t, err)
	}
	_, err := s.Put(ctx, "uploads-lain/x.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)

	for _, root := range []string{"./uploads", "uploads/", "/uploads", "uploads"} {
		t.Run(root, func(t *testing.T) {
			var names []string
			err := s.Walk(ctx, root, func(key, name string) error {
				assert.Equal(t, name, filepath.Base(key))
				assert.True(t, strings.HasPrefix(key, "uploads/"), key)
				names = append(names, name)
				return nil
			})
			require.NoError(t, err)
			sort.Strings(names)
			assert.Equal(t, []string{"a.txt", "b", "c.png", "d.pdf", "e"}, names)

			prefixes := fake.listedPrefixes()
			assert.Equal(t, "uploads/", prefixes[len(prefixes)-1])
		})
	}
}

func TestS3Storage_WalkStopsOnCallbackError(t *testing.T) {
	s, _ := newS3Storage(t)
	ctx := context.Background()
	for _, p := range []string{"uploads/a", "uploads/b"} {
		_, err := s.Put(ctx, p, strings.NewReader("x"), "text/plain")
		require.NoError(t, err)
	}

	calls := 0
	err := s.Walk(ctx, "uploads", func(string, string) error {
		calls++
		return io.ErrUnexpectedEOF
	})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, calls)
}
