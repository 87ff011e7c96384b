package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

const (
	conditionsPath = "/medical-history/conditions"
	surgeriesPath  = "/medical-history/surgeries"
	allergiesPath  = "/medical-history/allergies"
)

// MedicalHistoryClient implements carepoint.MedicalHistoryClient.
type MedicalHistoryClient struct {
	httpClient *http.Client
}

// NewMedicalHistoryClient creates a new medical history client.
func NewMedicalHistoryClient(httpClient *http.Client) *MedicalHistoryClient {
	return &MedicalHistoryClient{
		httpClient: httpClient,
	}
}

// historyEnvelope is the {success, message, data, count} wrapper every
// medical history endpoint answers with.
type historyEnvelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Count   int    `json:"count"`
}

func historyPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}

func listHistory[T any](ctx context.Context, httpClient *http.Client, path, what string) ([]T, error) {
	resp, err := httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}

	envelope := historyEnvelope[[]T]{Data: []T{}}
	if err := resp.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	if envelope.Data == nil {
		return []T{}, nil
	}

	return envelope.Data, nil
}

func getHistory[T any](ctx context.Context, httpClient *http.Client, base, id, what string) (*T, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	resp, err := httpClient.Get(ctx, historyPath(base, id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}

	if resp.Empty {
		return nil, nil
	}

	var envelope historyEnvelope[*T]
	if err := resp.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return envelope.Data, nil
}

// sender is one of the body-carrying verbs of http.Client.
type sender func(ctx context.Context, path string, body interface{}, opts ...http.RequestOption) (*http.Response, error)

func sendHistory[T any](ctx context.Context, send sender, path string, body interface{}, what string) (*T, error) {
	resp, err := send(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("saving %s: %w", what, err)
	}

	var envelope historyEnvelope[*T]
	if err := resp.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return envelope.Data, nil
}

func deleteHistory(ctx context.Context, httpClient *http.Client, base, id, what string) error {
	if id == "" {
		return constants.ErrIDRequired
	}

	if _, err := httpClient.Delete(ctx, historyPath(base, id)); err != nil {
		return fmt.Errorf("deleting %s: %w", what, err)
	}

	return nil
}

// Conditions implements carepoint.MedicalHistoryClient.Conditions
func (c *MedicalHistoryClient) Conditions(ctx context.Context) ([]carepoint.MedicalCondition, error) {
	return listHistory[carepoint.MedicalCondition](ctx, c.httpClient, conditionsPath, "medical conditions")
}

// Condition implements carepoint.MedicalHistoryClient.Condition. A missing
// condition yields nil without an error.
func (c *MedicalHistoryClient) Condition(ctx context.Context, id string) (*carepoint.MedicalCondition, error) {
	return getHistory[carepoint.MedicalCondition](ctx, c.httpClient, conditionsPath, id, "medical condition")
}

// CreateCondition implements carepoint.MedicalHistoryClient.CreateCondition
func (c *MedicalHistoryClient) CreateCondition(
	ctx context.Context,
	request *carepoint.MedicalConditionRequest,
) (*carepoint.MedicalCondition, error) {
	return sendHistory[carepoint.MedicalCondition](ctx, c.httpClient.Post, conditionsPath, request, "medical condition")
}

// UpdateCondition implements carepoint.MedicalHistoryClient.UpdateCondition
func (c *MedicalHistoryClient) UpdateCondition(
	ctx context.Context,
	id string,
	request *carepoint.MedicalConditionRequest,
) (*carepoint.MedicalCondition, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return sendHistory[carepoint.MedicalCondition](ctx, c.httpClient.Patch, historyPath(conditionsPath, id), request,
		"medical condition")
}

// DeleteCondition implements carepoint.MedicalHistoryClient.DeleteCondition
func (c *MedicalHistoryClient) DeleteCondition(ctx context.Context, id string) error {
	return deleteHistory(ctx, c.httpClient, conditionsPath, id, "medical condition")
}

// Surgeries implements carepoint.MedicalHistoryClient.Surgeries
func (c *MedicalHistoryClient) Surgeries(ctx context.Context) ([]carepoint.Surgery, error) {
	return listHistory[carepoint.Surgery](ctx, c.httpClient, surgeriesPath, "surgeries")
}

// Surgery implements carepoint.MedicalHistoryClient.Surgery
func (c *MedicalHistoryClient) Surgery(ctx context.Context, id string) (*carepoint.Surgery, error) {
	return getHistory[carepoint.Surgery](ctx, c.httpClient, surgeriesPath, id, "surgery")
}

// CreateSurgery implements carepoint.MedicalHistoryClient.CreateSurgery
func (c *MedicalHistoryClient) CreateSurgery(ctx context.Context, request *carepoint.SurgeryRequest) (*carepoint.Surgery, error) {
	return sendHistory[carepoint.Surgery](ctx, c.httpClient.Post, surgeriesPath, request, "surgery")
}

// UpdateSurgery implements carepoint.MedicalHistoryClient.UpdateSurgery
func (c *MedicalHistoryClient) UpdateSurgery(
	ctx context.Context,
	id string,
	request *carepoint.SurgeryRequest,
) (*carepoint.Surgery, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return sendHistory[carepoint.Surgery](ctx, c.httpClient.Patch, historyPath(surgeriesPath, id), request, "surgery")
}

// DeleteSurgery implements carepoint.MedicalHistoryClient.DeleteSurgery
func (c *MedicalHistoryClient) DeleteSurgery(ctx context.Context, id string) error {
	return deleteHistory(ctx, c.httpClient, surgeriesPath, id, "surgery")
}

// Allergies implements carepoint.MedicalHistoryClient.Allergies
func (c *MedicalHistoryClient) Allergies(ctx context.Context) ([]carepoint.Allergy, error) {
	return listHistory[carepoint.Allergy](ctx, c.httpClient, allergiesPath, "allergies")
}

// Allergy implements carepoint.MedicalHistoryClient.Allergy
func (c *MedicalHistoryClient) Allergy(ctx context.Context, id string) (*carepoint.Allergy, error) {
	return getHistory[carepoint.Allergy](ctx, c.httpClient, allergiesPath, id, "allergy")
}

// CreateAllergy implements carepoint.MedicalHistoryClient.CreateAllergy
func (c *MedicalHistoryClient) CreateAllergy(ctx context.Context, request *carepoint.AllergyRequest) (*carepoint.Allergy, error) {
	return sendHistory[carepoint.Allergy](ctx, c.httpClient.Post, allergiesPath, request, "allergy")
}

// UpdateAllergy implements carepoint.MedicalHistoryClient.UpdateAllergy
func (c *MedicalHistoryClient) UpdateAllergy(
	ctx context.Context,
	id string,
	request *carepoint.AllergyRequest,
) (*carepoint.Allergy, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return sendHistory[carepoint.Allergy](ctx, c.httpClient.Patch, historyPath(allergiesPath, id), request, "allergy")
}

// DeleteAllergy implements carepoint.MedicalHistoryClient.DeleteAllergy
func (c *MedicalHistoryClient) DeleteAllergy(ctx context.Context, id string) error {
	return deleteHistory(ctx, c.httpClient, allergiesPath, id, "allergy")
}
