package apperror

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"chrononews-attachments/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	cause := fs.ErrPermission
	err := fmt.Errorf("menyimpan lampiran: %w", UploadFailed(cause))

	assert.True(t, Is(err, constant.CodeUploadFailed))
	assert.False(t, Is(err, constant.CodeFileNotFound))
	assert.True(t, errors.Is(err, fs.ErrPermission), "cause must stay reachable")
	assert.False(t, Is(errors.New("biasa"), constant.CodeUploadFailed))
	assert.False(t, Is(nil, constant.CodeUploadFailed))
}

func TestError(t *testing.T) {
	assert.Equal(t, "FILE_NOT_FOUND: file 7 tidak ditemukan", FileNotFound(7, nil).Error())
	assert.Contains(t, FilePathInvalid("/x", errors.New("boom")).Error(), "boom")
}
