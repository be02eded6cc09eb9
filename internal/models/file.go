package models

// StagedFile represents the single file a user has designated for upload.
// At most one is held per upload workflow; staging a new file replaces it.
type StagedFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Payload  []byte `json:"-"`
}

// UploadState tracks the upload workflow lifecycle.
type UploadState string

const (
	UploadIdle      UploadState = "idle"
	UploadStaged    UploadState = "staged"
	UploadUploading UploadState = "uploading"
	UploadSucceeded UploadState = "succeeded"
	UploadFailed    UploadState = "failed"
)
