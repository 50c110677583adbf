package apperror

import (
	"errors"
	"fmt"

	"chrononews-attachments/internal/constant"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func UploadFailed(err error) *AppError {
	return New(constant.CodeUploadFailed, "upload lampiran gagal", err)
}

func FileNotFound(fileID int32, err error) *AppError {
	return New(constant.CodeFileNotFound, fmt.Sprintf("file %d tidak ditemukan", fileID), err)
}

func FilePathInvalid(path string, err error) *AppError {
	return New(constant.CodeFilePathInvalid, fmt.Sprintf("path file tidak dapat dibaca: %s", path), err)
}

func MetadataFailed(message string, err error) *AppError {
	return New(constant.CodeMetadataFailed, message, err)
}

// Is reports whether any error in err's chain is an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
