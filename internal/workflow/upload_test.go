package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"aurix/internal/models"
	"aurix/internal/upstream"
)

type fakeUploadService struct {
	mu      sync.Mutex
	calls   int
	ack     *upstream.UploadAck
	err     error
	block   chan struct{} // when set, Upload waits until closed
	started chan struct{} // when set, signalled once per call
}

func (f *fakeUploadService) Upload(ctx context.Context, file *models.StagedFile) (*upstream.UploadAck, error) {
	f.mu.Lock()
	f.calls++
	ack, err := f.ack, f.err
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return ack, err
}

func (f *fakeUploadService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func stagedCSV(name string, size int) *models.StagedFile {
	return &models.StagedFile{
		Name:     name,
		Size:     int64(size),
		MimeType: "text/csv",
		Payload:  make([]byte, size),
	}
}

func TestUploadStagingLastWriteWins(t *testing.T) {
	u := NewUpload(&fakeUploadService{})

	// Drag events around the staging must not disturb the staged file.
	u.DragEnter()
	if err := u.Stage(stagedCSV("first.csv", 10)); err != nil {
		t.Fatalf("stage first: %v", err)
	}
	u.DragEnter()
	u.DragLeave()
	if err := u.Stage(stagedCSV("second.csv", 20)); err != nil {
		t.Fatalf("stage second: %v", err)
	}
	u.DragEnter()
	if err := u.Stage(stagedCSV("third.csv", 30)); err != nil {
		t.Fatalf("stage third: %v", err)
	}

	snap := u.Snapshot()
	if snap.State != models.UploadStaged {
		t.Fatalf("state = %s, want staged", snap.State)
	}
	if snap.File == nil || snap.File.Name != "third.csv" {
		t.Fatalf("staged file = %#v, want third.csv", snap.File)
	}
	if snap.DragActive {
		t.Fatalf("staging must clear the drag flag")
	}
}

func TestUploadDragFlagOnly(t *testing.T) {
	u := NewUpload(&fakeUploadService{})
	u.DragEnter()
	snap := u.Snapshot()
	if !snap.DragActive {
		t.Fatalf("drag enter should set the flag")
	}
	if snap.State != models.UploadIdle {
		t.Fatalf("drag events must not transition state, got %s", snap.State)
	}
	u.DragLeave()
	if u.Snapshot().DragActive {
		t.Fatalf("drag leave should clear the flag")
	}
}

func TestUploadRemoveReturnsToIdle(t *testing.T) {
	u := NewUpload(&fakeUploadService{})
	if err := u.Stage(stagedCSV("report.csv", 2048)); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := u.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	snap := u.Snapshot()
	if snap.State != models.UploadIdle || snap.File != nil {
		t.Fatalf("remove should yield idle with no file, got %s %#v", snap.State, snap.File)
	}
}

func TestUploadSuccessRetainsFile(t *testing.T) {
	svc := &fakeUploadService{ack: &upstream.UploadAck{DatasetID: "ds-1", Status: "ready", RowCount: 42}}
	u := NewUpload(svc)
	if err := u.Stage(stagedCSV("report.csv", 2048)); err != nil {
		t.Fatalf("stage: %v", err)
	}
	snap, err := u.Do(context.Background())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if snap.State != models.UploadSucceeded {
		t.Fatalf("state = %s, want succeeded", snap.State)
	}
	if snap.Ack == nil || snap.Ack.DatasetID != "ds-1" {
		t.Fatalf("ack = %#v, want ds-1", snap.Ack)
	}
	if snap.File == nil || snap.File.Name != "report.csv" || snap.File.Size != 2048 {
		t.Fatalf("staged file must be retained after settlement, got %#v", snap.File)
	}
	if svc.callCount() != 1 {
		t.Fatalf("service called %d times, want 1", svc.callCount())
	}
}

func TestUploadFailureRetainsFileForRetry(t *testing.T) {
	svc := &fakeUploadService{err: errors.New("connection refused")}
	u := NewUpload(svc)
	if err := u.Stage(stagedCSV("report.csv", 2048)); err != nil {
		t.Fatalf("stage: %v", err)
	}
	snap, err := u.Do(context.Background())
	if err != nil {
		t.Fatalf("upload should absorb service errors, got %v", err)
	}
	if snap.State != models.UploadFailed {
		t.Fatalf("state = %s, want failed", snap.State)
	}
	if snap.Failure == "" {
		t.Fatalf("failure message must be surfaced")
	}
	if snap.File == nil {
		t.Fatalf("staged file must survive a failed upload")
	}

	// Retry after failure goes through the full cycle again.
	svc.mu.Lock()
	svc.err = nil
	svc.ack = &upstream.UploadAck{Status: "ready"}
	svc.mu.Unlock()
	snap, err = u.Do(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if snap.State != models.UploadSucceeded {
		t.Fatalf("retry state = %s, want succeeded", snap.State)
	}
	if svc.callCount() != 2 {
		t.Fatalf("service called %d times, want 2", svc.callCount())
	}
}

func TestUploadWithNothingStagedIsRejected(t *testing.T) {
	svc := &fakeUploadService{}
	u := NewUpload(svc)
	if _, err := u.Do(context.Background()); !errors.Is(err, ErrNoStagedFile) {
		t.Fatalf("err = %v, want ErrNoStagedFile", err)
	}
	if u.Snapshot().State != models.UploadIdle {
		t.Fatalf("state must stay idle")
	}
	if svc.callCount() != 0 {
		t.Fatalf("no request may be issued without a staged file")
	}
}

func TestUploadSingleFlight(t *testing.T) {
	svc := &fakeUploadService{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
		ack:     &upstream.UploadAck{Status: "ready"},
	}
	u := NewUpload(svc)
	if err := u.Stage(stagedCSV("report.csv", 100)); err != nil {
		t.Fatalf("stage: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := u.Do(context.Background()); err != nil {
			t.Errorf("first upload: %v", err)
		}
	}()
	<-svc.started

	if _, err := u.Do(context.Background()); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("second upload err = %v, want ErrUploadInFlight", err)
	}
	if err := u.Remove(); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("remove while uploading err = %v, want ErrUploadInFlight", err)
	}
	if u.Snapshot().State != models.UploadUploading {
		t.Fatalf("state = %s, want uploading", u.Snapshot().State)
	}

	close(svc.block)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("first upload never settled")
	}
	if svc.callCount() != 1 {
		t.Fatalf("service called %d times, want 1", svc.callCount())
	}
}

func TestUploadStagingSequences(t *testing.T) {
	// Arbitrary interleavings of drag and staging ops: the staged file is
	// always the one from the most recent stage call.
	u := NewUpload(&fakeUploadService{})
	var last string
	for i := 0; i < 8; i++ {
		u.DragEnter()
		if i%3 == 0 {
			u.DragLeave()
		}
		name := fmt.Sprintf("file-%d.csv", i)
		if err := u.Stage(stagedCSV(name, i+1)); err != nil {
			t.Fatalf("stage %s: %v", name, err)
		}
		last = name
	}
	snap := u.Snapshot()
	if snap.File == nil || snap.File.Name != last {
		t.Fatalf("staged = %#v, want %s", snap.File, last)
	}
}
