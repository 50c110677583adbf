package constant

const (
	FailedFileSet = "failed_file"

	UploadDateLayout = "2006-01-02"
)

const (
	CodeUploadFailed    = "UPLOAD_FAILED"
	CodeFileNotFound    = "FILE_NOT_FOUND"
	CodeFilePathInvalid = "FILE_PATH_INVALID"
	CodeMetadataFailed  = "METADATA_FAILED"
)
