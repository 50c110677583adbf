// Package tracker keeps a durable set of physical deletions that failed after
// their metadata row was already removed.
package tracker

import (
	"context"
	"fmt"
	"strings"
)

// FailureTracker is a set: Record and Clear are idempotent and safe for
// concurrent use without external locking.
type FailureTracker interface {
	Record(ctx context.Context, key Key) error
	ListAll(ctx context.Context) ([]Key, error)
	Clear(ctx context.Context, key Key) error
	Ping(ctx context.Context) error
}

type Key struct {
	StoredName string
	Path       string
}

func (k Key) String() string {
	return k.StoredName + ":" + k.Path
}

// ParseKey splits on the first colon. Stored names never contain one, paths may.
func ParseKey(raw string) (Key, error) {
	storedName, path, ok := strings.Cut(raw, ":")
	if !ok || storedName == "" || path == "" {
		return Key{}, fmt.Errorf("entri tracker tidak valid: %q", raw)
	}
	return Key{StoredName: storedName, Path: path}, nil
}
