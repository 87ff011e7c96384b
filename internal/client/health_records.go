package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

const healthRecordFileField = "file"

// HealthRecordsClient implements carepoint.HealthRecordsClient.
type HealthRecordsClient struct {
	httpClient *http.Client
}

// NewHealthRecordsClient creates a new health records client.
func NewHealthRecordsClient(httpClient *http.Client) *HealthRecordsClient {
	return &HealthRecordsClient{
		httpClient: httpClient,
	}
}

func healthRecordPath(id string) string {
	return "/health-records/" + url.PathEscape(id)
}

// List implements carepoint.HealthRecordsClient.List
func (c *HealthRecordsClient) List(ctx context.Context, filter *carepoint.HealthRecordFilter) ([]carepoint.HealthRecord, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/health-records/", query)
	if err != nil {
		return nil, fmt.Errorf("listing health records: %w", err)
	}

	records := []carepoint.HealthRecord{}
	if err := resp.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing health records list response: %w", err)
	}

	return records, nil
}

// Get implements carepoint.HealthRecordsClient.Get. A missing record yields
// nil without an error.
func (c *HealthRecordsClient) Get(ctx context.Context, id string) (*carepoint.HealthRecord, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Get(ctx, healthRecordPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting health record: %w", err)
	}

	if resp.Empty {
		return nil, nil
	}

	var record carepoint.HealthRecord
	if err := resp.Decode(&record); err != nil {
		return nil, fmt.Errorf("parsing health record response: %w", err)
	}

	return &record, nil
}

// Create implements carepoint.HealthRecordsClient.Create as a multipart
// upload. file may be nil.
func (c *HealthRecordsClient) Create(
	ctx context.Context,
	request *carepoint.HealthRecordRequest,
	file *carepoint.Attachment,
) (*carepoint.HealthRecord, error) {
	form, err := healthRecordForm(request, file)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/health-records/", form)
	if err != nil {
		return nil, fmt.Errorf("creating health record: %w", err)
	}

	var record carepoint.HealthRecord
	if err := resp.Decode(&record); err != nil {
		return nil, fmt.Errorf("parsing health record response: %w", err)
	}

	return &record, nil
}

// Update implements carepoint.HealthRecordsClient.Update
func (c *HealthRecordsClient) Update(
	ctx context.Context,
	id string,
	request *carepoint.HealthRecordRequest,
	file *carepoint.Attachment,
) (*carepoint.HealthRecord, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	form, err := healthRecordForm(request, file)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Patch(ctx, healthRecordPath(id), form)
	if err != nil {
		return nil, fmt.Errorf("updating health record: %w", err)
	}

	var record carepoint.HealthRecord
	if err := resp.Decode(&record); err != nil {
		return nil, fmt.Errorf("parsing health record response: %w", err)
	}

	return &record, nil
}

// Delete implements carepoint.HealthRecordsClient.Delete
func (c *HealthRecordsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrIDRequired
	}

	if _, err := c.httpClient.Delete(ctx, healthRecordPath(id)); err != nil {
		return fmt.Errorf("deleting health record: %w", err)
	}

	return nil
}

func healthRecordForm(request *carepoint.HealthRecordRequest, file *carepoint.Attachment) (*http.FormData, error) {
	form := http.NewFormData()

	if request != nil {
		for _, field := range request.Fields() {
			form.AddField(field[0], field[1])
		}
	}

	if file == nil || file.Reader == nil {
		return form, nil
	}

	name := file.Name
	if name == "" {
		name = carepoint.DefaultAttachmentName
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = carepoint.DefaultAttachmentContentType
	}

	if err := form.AddFile(healthRecordFileField, name, contentType, file.Reader); err != nil {
		return nil, fmt.Errorf("attaching file: %w", err)
	}

	return form, nil
}
