package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// EmergencyContactsClient implements carepoint.EmergencyContactsClient.
type EmergencyContactsClient struct {
	httpClient *http.Client
}

// NewEmergencyContactsClient creates a new emergency contacts client.
func NewEmergencyContactsClient(httpClient *http.Client) *EmergencyContactsClient {
	return &EmergencyContactsClient{
		httpClient: httpClient,
	}
}

type setPrimaryRequest struct {
	ContactID int `json:"contact_id"`
}

type bulkDeleteRequest struct {
	ContactIDs []int `json:"contact_ids"`
}

func contactPath(id int) string {
	return "/emergency-contacts/" + strconv.Itoa(id) + "/"
}

// List implements carepoint.EmergencyContactsClient.List
func (c *EmergencyContactsClient) List(ctx context.Context) (*carepoint.EmergencyContactList, error) {
	resp, err := c.httpClient.Get(ctx, "/emergency-contacts/", nil)
	if err != nil {
		return nil, fmt.Errorf("listing emergency contacts: %w", err)
	}

	list := carepoint.EmergencyContactList{Contacts: []carepoint.EmergencyContact{}}
	if err := resp.Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing emergency contacts response: %w", err)
	}

	if list.Contacts == nil {
		list.Contacts = []carepoint.EmergencyContact{}
	}

	return &list, nil
}

// Get implements carepoint.EmergencyContactsClient.Get. A missing contact
// yields nil without an error.
func (c *EmergencyContactsClient) Get(ctx context.Context, id int) (*carepoint.EmergencyContact, error) {
	if id <= 0 {
		return nil, constants.ErrIDRequired
	}

	return c.getContact(ctx, contactPath(id), "getting emergency contact")
}

// Primary implements carepoint.EmergencyContactsClient.Primary
func (c *EmergencyContactsClient) Primary(ctx context.Context) (*carepoint.EmergencyContact, error) {
	return c.getContact(ctx, "/emergency-contacts/primary/", "getting primary contact")
}

func (c *EmergencyContactsClient) getContact(ctx context.Context, path, action string) (*carepoint.EmergencyContact, error) {
	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	if resp.Empty {
		return nil, nil
	}

	var contact carepoint.EmergencyContact
	if err := resp.Decode(&contact); err != nil {
		return nil, fmt.Errorf("parsing emergency contact response: %w", err)
	}

	return &contact, nil
}

// Create implements carepoint.EmergencyContactsClient.Create
func (c *EmergencyContactsClient) Create(
	ctx context.Context,
	request *carepoint.EmergencyContactRequest,
) (*carepoint.EmergencyContact, error) {
	resp, err := c.httpClient.Post(ctx, "/emergency-contacts/", request)
	if err != nil {
		return nil, fmt.Errorf("creating emergency contact: %w", err)
	}

	var contact carepoint.EmergencyContact
	if err := resp.Decode(&contact); err != nil {
		return nil, fmt.Errorf("parsing emergency contact response: %w", err)
	}

	return &contact, nil
}

// Update implements carepoint.EmergencyContactsClient.Update
func (c *EmergencyContactsClient) Update(
	ctx context.Context,
	id int,
	request *carepoint.EmergencyContactRequest,
) (*carepoint.EmergencyContact, error) {
	if id <= 0 {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Patch(ctx, contactPath(id), request)
	if err != nil {
		return nil, fmt.Errorf("updating emergency contact: %w", err)
	}

	var contact carepoint.EmergencyContact
	if err := resp.Decode(&contact); err != nil {
		return nil, fmt.Errorf("parsing emergency contact response: %w", err)
	}

	return &contact, nil
}

// Delete implements carepoint.EmergencyContactsClient.Delete
func (c *EmergencyContactsClient) Delete(ctx context.Context, id int) (*carepoint.MessageResponse, error) {
	if id <= 0 {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Delete(ctx, contactPath(id))
	if err != nil {
		return nil, fmt.Errorf("deleting emergency contact: %w", err)
	}

	var result carepoint.MessageResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing delete response: %w", err)
	}

	return &result, nil
}

// SetPrimary implements carepoint.EmergencyContactsClient.SetPrimary
func (c *EmergencyContactsClient) SetPrimary(ctx context.Context, id int) (*carepoint.SetPrimaryContactResponse, error) {
	if id <= 0 {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Post(ctx, "/emergency-contacts/set-primary/", setPrimaryRequest{ContactID: id})
	if err != nil {
		return nil, fmt.Errorf("setting primary contact: %w", err)
	}

	var result carepoint.SetPrimaryContactResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing set primary response: %w", err)
	}

	return &result, nil
}

// Stats implements carepoint.EmergencyContactsClient.Stats
func (c *EmergencyContactsClient) Stats(ctx context.Context) (*carepoint.ContactStats, error) {
	resp, err := c.httpClient.Get(ctx, "/emergency-contacts/stats/", nil)
	if err != nil {
		return nil, fmt.Errorf("getting contact stats: %w", err)
	}

	var stats carepoint.ContactStats
	if err := resp.Decode(&stats); err != nil {
		return nil, fmt.Errorf("parsing contact stats response: %w", err)
	}

	return &stats, nil
}

// BulkDelete implements carepoint.EmergencyContactsClient.BulkDelete
func (c *EmergencyContactsClient) BulkDelete(ctx context.Context, ids []int) (*carepoint.BulkDeleteResponse, error) {
	if len(ids) == 0 {
		return nil, constants.ErrIDRequired
	}

	resp, err := c.httpClient.Post(ctx, "/emergency-contacts/bulk-delete/", bulkDeleteRequest{ContactIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("deleting emergency contacts: %w", err)
	}

	var result carepoint.BulkDeleteResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing bulk delete response: %w", err)
	}

	return &result, nil
}
