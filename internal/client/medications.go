package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// MedicationsClient implements carepoint.MedicationsClient.
type MedicationsClient struct {
	httpClient *http.Client
}

// NewMedicationsClient creates a new medications client.
func NewMedicationsClient(httpClient *http.Client) *MedicationsClient {
	return &MedicationsClient{
		httpClient: httpClient,
	}
}

func medicationPath(id string) string {
	return "/medications/" + url.PathEscape(id)
}

// List implements carepoint.MedicationsClient.List
func (c *MedicationsClient) List(ctx context.Context, filter *carepoint.MedicationFilter) ([]carepoint.Medication, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/medications/", query)
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}

	medications := []carepoint.Medication{}
	if err := resp.Decode(&medications); err != nil {
		return nil, fmt.Errorf("parsing medications list response: %w", err)
	}

	return medications, nil
}

// Get implements carepoint.MedicationsClient.Get. A missing medication
// yields nil without an error.
func (c *MedicationsClient) Get(ctx context.Context, id string) (*carepoint.Medication, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Get(ctx, medicationPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting medication: %w", err)
	}

	if resp.Empty {
		return nil, nil
	}

	var medication carepoint.Medication
	if err := resp.Decode(&medication); err != nil {
		return nil, fmt.Errorf("parsing medication response: %w", err)
	}

	return &medication, nil
}

// Create implements carepoint.MedicationsClient.Create
func (c *MedicationsClient) Create(ctx context.Context, request *carepoint.MedicationRequest) (*carepoint.Medication, error) {
	resp, err := c.httpClient.Post(ctx, "/medications", request)
	if err != nil {
		return nil, fmt.Errorf("creating medication: %w", err)
	}

	var medication carepoint.Medication
	if err := resp.Decode(&medication); err != nil {
		return nil, fmt.Errorf("parsing medication response: %w", err)
	}

	return &medication, nil
}

// Update implements carepoint.MedicationsClient.Update
func (c *MedicationsClient) Update(
	ctx context.Context,
	id string,
	request *carepoint.MedicationRequest,
) (*carepoint.Medication, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Patch(ctx, medicationPath(id), request)
	if err != nil {
		return nil, fmt.Errorf("updating medication: %w", err)
	}

	var medication carepoint.Medication
	if err := resp.Decode(&medication); err != nil {
		return nil, fmt.Errorf("parsing medication response: %w", err)
	}

	return &medication, nil
}

// Delete implements carepoint.MedicationsClient.Delete
func (c *MedicationsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrIDRequired
	}

	if _, err := c.httpClient.Delete(ctx, medicationPath(id)); err != nil {
		return fmt.Errorf("deleting medication: %w", err)
	}

	return nil
}

// ToggleTaken implements carepoint.MedicationsClient.ToggleTaken
func (c *MedicationsClient) ToggleTaken(ctx context.Context, id string) (*carepoint.TakenRecord, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Post(ctx, medicationPath(id)+"/toggle-taken", nil)
	if err != nil {
		return nil, fmt.Errorf("toggling medication taken: %w", err)
	}

	var record carepoint.TakenRecord
	if err := resp.Decode(&record); err != nil {
		return nil, fmt.Errorf("parsing taken record response: %w", err)
	}

	return &record, nil
}

// Today implements carepoint.MedicationsClient.Today
func (c *MedicationsClient) Today(ctx context.Context) ([]carepoint.TodayMedication, error) {
	resp, err := c.httpClient.Get(ctx, "/medications/today", nil)
	if err != nil {
		return nil, fmt.Errorf("getting today's medications: %w", err)
	}

	medications := []carepoint.TodayMedication{}
	if err := resp.Decode(&medications); err != nil {
		return nil, fmt.Errorf("parsing today's medications response: %w", err)
	}

	return medications, nil
}

// Calendar implements carepoint.MedicationsClient.Calendar. Zero month or
// year lets the server pick the current one.
func (c *MedicationsClient) Calendar(ctx context.Context, month, year int) (carepoint.MedicationCalendar, error) {
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("%w: %d", constants.ErrInvalidMonth, month)
	}

	query := url.Values{}
	if month > 0 {
		query.Set("month", strconv.Itoa(month))
	}

	if year > 0 {
		query.Set("year", strconv.Itoa(year))
	}

	resp, err := c.httpClient.Get(ctx, "/medications/calendar", query)
	if err != nil {
		return nil, fmt.Errorf("getting medication calendar: %w", err)
	}

	calendar := carepoint.MedicationCalendar{}
	if err := resp.Decode(&calendar); err != nil {
		return nil, fmt.Errorf("parsing medication calendar response: %w", err)
	}

	return calendar, nil
}

// TakenRecords implements carepoint.MedicationsClient.TakenRecords
func (c *MedicationsClient) TakenRecords(
	ctx context.Context,
	filter *carepoint.TakenRecordFilter,
) ([]carepoint.TakenRecord, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/medications/taken", query)
	if err != nil {
		return nil, fmt.Errorf("listing taken records: %w", err)
	}

	records := []carepoint.TakenRecord{}
	if err := resp.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing taken records response: %w", err)
	}

	return records, nil
}

// CreateTakenRecord implements carepoint.MedicationsClient.CreateTakenRecord
func (c *MedicationsClient) CreateTakenRecord(
	ctx context.Context,
	request *carepoint.TakenRecordRequest,
) (*carepoint.TakenRecord, error) {
	if request == nil || request.Medication == "" {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Post(ctx, "/medications/taken", request)
	if err != nil {
		return nil, fmt.Errorf("creating taken record: %w", err)
	}

	var record carepoint.TakenRecord
	if err := resp.Decode(&record); err != nil {
		return nil, fmt.Errorf("parsing taken record response: %w", err)
	}

	return &record, nil
}
