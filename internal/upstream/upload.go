package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"aurix/internal/config"
	"aurix/internal/models"
)

// UploadAck mirrors the Upload Service acknowledgment. Fields the service
// does not set stay zero; unknown fields are ignored.
type UploadAck struct {
	DatasetID   string       `json:"dataset_id"`
	Name        string       `json:"name"`
	RowCount    int64        `json:"row_count"`
	ColumnCount int64        `json:"column_count"`
	Columns     []ColumnInfo `json:"columns"`
	Status      string       `json:"status"`
}

type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// UploadClient ships one staged file per call to the Upload Service.
type UploadClient struct {
	client   *Client
	endpoint string
}

func NewUploadClient(client *Client, svc config.ServiceConfig) *UploadClient {
	path := svc.Path
	if path == "" {
		path = config.DefaultUploadPath
	}
	return &UploadClient{
		client:   client,
		endpoint: svc.BaseURL + path,
	}
}

// Upload posts the file as a multipart form. Any non-2xx or transport error
// is an upload failure.
func (c *UploadClient) Upload(ctx context.Context, file *models.StagedFile) (*UploadAck, error) {
	if file == nil {
		return nil, errors.New("staged file required")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := part.Write(file.Payload); err != nil {
		return nil, fmt.Errorf("write multipart payload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	body, err := c.client.do(req)
	if err != nil {
		return nil, err
	}

	ack := &UploadAck{}
	if len(body) > 0 {
		// The acknowledgment shape is service-defined; a non-JSON body is
		// still a success, just without structured fields.
		_ = json.Unmarshal(body, ack)
	}
	return ack, nil
}
