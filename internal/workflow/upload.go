// Package workflow holds the interactive state machines behind the Aurix
// dashboard: the file upload lifecycle, the conversation loop, and the
// notification panel. Each instance owns its state exclusively and is safe
// for concurrent use; both upload and chat are single-flight, so a second
// caller is rejected while a request is outstanding, never queued.
package workflow

import (
	"context"
	"errors"
	"sync"

	"aurix/internal/models"
	"aurix/internal/upstream"
)

// UploadService is the external boundary the upload workflow depends on.
type UploadService interface {
	Upload(ctx context.Context, file *models.StagedFile) (*upstream.UploadAck, error)
}

var (
	ErrNoStagedFile   = errors.New("no file staged")
	ErrUploadInFlight = errors.New("upload already in progress")
)

// Upload manages the idle -> staged -> uploading -> settled lifecycle of a
// single staged file.
type Upload struct {
	mu         sync.Mutex
	service    UploadService
	state      models.UploadState
	file       *models.StagedFile
	dragActive bool
	ack        *upstream.UploadAck
	failure    string
}

func NewUpload(service UploadService) *Upload {
	return &Upload{
		service: service,
		state:   models.UploadIdle,
	}
}

// UploadSnapshot is a point-in-time copy for the rendering layer.
type UploadSnapshot struct {
	State      models.UploadState  `json:"state"`
	DragActive bool                `json:"drag_active"`
	File       *models.StagedFile  `json:"file,omitempty"`
	Ack        *upstream.UploadAck `json:"ack,omitempty"`
	Failure    string              `json:"failure,omitempty"`
}

// DragEnter sets the drag-active visual flag. No state transition.
func (u *Upload) DragEnter() {
	u.mu.Lock()
	u.dragActive = true
	u.mu.Unlock()
}

// DragLeave clears the drag-active visual flag.
func (u *Upload) DragLeave() {
	u.mu.Lock()
	u.dragActive = false
	u.mu.Unlock()
}

// Stage designates file as the object of the next upload, replacing any
// previously staged file. Drops and explicit picker selections share these
// semantics. Staging is rejected while an upload is in flight.
func (u *Upload) Stage(file *models.StagedFile) error {
	if file == nil {
		return ErrNoStagedFile
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == models.UploadUploading {
		return ErrUploadInFlight
	}
	u.file = file
	u.state = models.UploadStaged
	u.dragActive = false
	u.ack = nil
	u.failure = ""
	return nil
}

// Remove clears the staged file and returns to idle. Valid from staged or a
// settled state; a no-op when nothing is staged.
func (u *Upload) Remove() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == models.UploadUploading {
		return ErrUploadInFlight
	}
	u.file = nil
	u.state = models.UploadIdle
	u.ack = nil
	u.failure = ""
	return nil
}

// Do issues exactly one request to the upload service for the staged file.
// The staged file is retained after settlement, success or failure, so the
// user can retry or remove it explicitly. Transport and service errors are
// absorbed into the failed state; the returned error only reports guard
// rejections (nothing staged, already uploading).
func (u *Upload) Do(ctx context.Context) (UploadSnapshot, error) {
	u.mu.Lock()
	if u.state == models.UploadUploading {
		u.mu.Unlock()
		return UploadSnapshot{}, ErrUploadInFlight
	}
	if u.file == nil {
		u.mu.Unlock()
		return UploadSnapshot{}, ErrNoStagedFile
	}
	file := u.file
	u.state = models.UploadUploading
	u.ack = nil
	u.failure = ""
	u.mu.Unlock()

	ack, err := u.service.Upload(ctx, file)

	u.mu.Lock()
	defer u.mu.Unlock()
	if err != nil {
		u.state = models.UploadFailed
		u.failure = err.Error()
	} else {
		u.state = models.UploadSucceeded
		u.ack = ack
	}
	return u.snapshotLocked(), nil
}

// Snapshot returns the current workflow state for rendering.
func (u *Upload) Snapshot() UploadSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.snapshotLocked()
}

func (u *Upload) snapshotLocked() UploadSnapshot {
	return UploadSnapshot{
		State:      u.state,
		DragActive: u.dragActive,
		File:       u.file,
		Ack:        u.ack,
		Failure:    u.failure,
	}
}
