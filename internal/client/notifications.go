package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// NotificationsClient implements carepoint.NotificationsClient.
type NotificationsClient struct {
	httpClient *http.Client
}

// NewNotificationsClient creates a new notifications client.
func NewNotificationsClient(httpClient *http.Client) *NotificationsClient {
	return &NotificationsClient{
		httpClient: httpClient,
	}
}

type setReadRequest struct {
	IsRead bool `json:"is_read"`
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type preferencesRequest struct {
	Preferences []carepoint.PreferenceRequest `json:"preferences"`
}

func notificationPath(parts ...string) string {
	path := "/notifications/"
	for _, part := range parts {
		path += url.PathEscape(part) + "/"
	}

	return path
}

// fetchOne reads a single object; a degraded read yields nil.
func fetchOne[T any](ctx context.Context, httpClient *http.Client, path, what string) (*T, error) {
	resp, err := httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}

	if resp.Empty {
		return nil, nil
	}

	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return &out, nil
}

func fetchList[T any](ctx context.Context, httpClient *http.Client, path, what string) ([]T, error) {
	resp, err := httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}

	items := []T{}
	if resp.Empty {
		return items, nil
	}

	if err := resp.Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	if items == nil {
		items = []T{}
	}

	return items, nil
}

func sendOne[T any](ctx context.Context, send sender, path string, body interface{}, what string) (*T, error) {
	resp, err := send(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return &out, nil
}

func (c *NotificationsClient) remove(ctx context.Context, path, what string) error {
	if _, err := c.httpClient.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting %s: %w", what, err)
	}

	return nil
}

// List implements carepoint.NotificationsClient.List
func (c *NotificationsClient) List(ctx context.Context, filter *carepoint.NotificationFilter) (*carepoint.NotificationPage, error) {
	resp, err := c.httpClient.Get(ctx, notificationPath(), filter.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	page := carepoint.NotificationPage{Results: []carepoint.Notification{}}
	if err := resp.Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing notifications response: %w", err)
	}

	if page.Results == nil {
		page.Results = []carepoint.Notification{}
	}

	return &page, nil
}

// Get implements carepoint.NotificationsClient.Get. A missing notification
// yields nil without an error.
func (c *NotificationsClient) Get(ctx context.Context, id string) (*carepoint.Notification, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return fetchOne[carepoint.Notification](ctx, c.httpClient, notificationPath(id), "notification")
}

// Create implements carepoint.NotificationsClient.Create
func (c *NotificationsClient) Create(ctx context.Context, request *carepoint.NotificationRequest) (*carepoint.Notification, error) {
	return sendOne[carepoint.Notification](ctx, c.httpClient.Post, notificationPath("create"), request, "creating notification")
}

// SetRead implements carepoint.NotificationsClient.SetRead
func (c *NotificationsClient) SetRead(ctx context.Context, id string, read bool) (*carepoint.Notification, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return sendOne[carepoint.Notification](ctx, c.httpClient.Patch, notificationPath(id), setReadRequest{IsRead: read},
		"updating notification")
}

// Delete implements carepoint.NotificationsClient.Delete
func (c *NotificationsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrIDRequired
	}

	return c.remove(ctx, notificationPath(id), "notification")
}

// MarkRead implements carepoint.NotificationsClient.MarkRead
func (c *NotificationsClient) MarkRead(ctx context.Context, id string) (*carepoint.MessageResponse, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return sendOne[carepoint.MessageResponse](ctx, c.httpClient.Post, notificationPath(id, "read"), nil,
		"marking notification read")
}

// MarkAllRead implements carepoint.NotificationsClient.MarkAllRead
func (c *NotificationsClient) MarkAllRead(ctx context.Context) (*carepoint.MessageResponse, error) {
	return sendOne[carepoint.MessageResponse](ctx, c.httpClient.Post, notificationPath("mark-all-read"), nil,
		"marking notifications read")
}

// BulkAction implements carepoint.NotificationsClient.BulkAction
func (c *NotificationsClient) BulkAction(
	ctx context.Context,
	request *carepoint.BulkNotificationRequest,
) (*carepoint.MessageResponse, error) {
	if request == nil || len(request.NotificationIDs) == 0 {
		return nil, constants.ErrIDRequired
	}

	return sendOne[carepoint.MessageResponse](ctx, c.httpClient.Post, notificationPath("bulk-action"), request,
		"applying "+request.Action)
}

// Stats implements carepoint.NotificationsClient.Stats
func (c *NotificationsClient) Stats(ctx context.Context) (*carepoint.NotificationStats, error) {
	stats, err := fetchOne[carepoint.NotificationStats](ctx, c.httpClient, notificationPath("stats"), "notification stats")
	if err != nil || stats != nil {
		return stats, err
	}

	return &carepoint.NotificationStats{ByType: map[string]int{}, Recent: []carepoint.Notification{}}, nil
}

// Preferences implements carepoint.NotificationsClient.Preferences
func (c *NotificationsClient) Preferences(ctx context.Context) ([]carepoint.NotificationPreference, error) {
	return fetchList[carepoint.NotificationPreference](ctx, c.httpClient, notificationPath("preferences"),
		"notification preferences")
}

// Preference implements carepoint.NotificationsClient.Preference
func (c *NotificationsClient) Preference(ctx context.Context, id string) (*carepoint.NotificationPreference, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return fetchOne[carepoint.NotificationPreference](ctx, c.httpClient, notificationPath("preferences", id),
		"notification preference")
}

// CreatePreference implements carepoint.NotificationsClient.CreatePreference
func (c *NotificationsClient) CreatePreference(
	ctx context.Context,
	request *carepoint.PreferenceRequest,
) (*carepoint.NotificationPreference, error) {
	return sendOne[carepoint.NotificationPreference](ctx, c.httpClient.Post, notificationPath("preferences"), request,
		"creating notification preference")
}

// UpdatePreference implements carepoint.NotificationsClient.UpdatePreference
func (c *NotificationsClient) UpdatePreference(
	ctx context.Context,
	id string,
	patch *carepoint.PreferencePatch,
) (*carepoint.NotificationPreference, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return sendOne[carepoint.NotificationPreference](ctx, c.httpClient.Patch, notificationPath("preferences", id), patch,
		"updating notification preference")
}

// UpdatePreferences implements carepoint.NotificationsClient.UpdatePreferences
func (c *NotificationsClient) UpdatePreferences(
	ctx context.Context,
	preferences []carepoint.PreferenceRequest,
) (*carepoint.MessageResponse, error) {
	return sendOne[carepoint.MessageResponse](ctx, c.httpClient.Put, notificationPath("preferences", "update"),
		preferencesRequest{Preferences: preferences}, "updating notification preferences")
}

// DeletePreference implements carepoint.NotificationsClient.DeletePreference
func (c *NotificationsClient) DeletePreference(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrIDRequired
	}

	return c.remove(ctx, notificationPath("preferences", id), "notification preference")
}

// DeviceTokens implements carepoint.NotificationsClient.DeviceTokens
func (c *NotificationsClient) DeviceTokens(ctx context.Context) ([]carepoint.DeviceToken, error) {
	return fetchList[carepoint.DeviceToken](ctx, c.httpClient, notificationPath("device-tokens"), "device tokens")
}

// DeviceToken implements carepoint.NotificationsClient.DeviceToken
func (c *NotificationsClient) DeviceToken(ctx context.Context, id string) (*carepoint.DeviceToken, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return fetchOne[carepoint.DeviceToken](ctx, c.httpClient, notificationPath("device-tokens", id), "device token")
}

// RegisterDevice implements carepoint.NotificationsClient.RegisterDevice
func (c *NotificationsClient) RegisterDevice(
	ctx context.Context,
	request *carepoint.DeviceTokenRequest,
) (*carepoint.MessageResponse, error) {
	if request == nil || request.Token == "" {
		return nil, constants.ErrDeviceTokenRequired
	}

	return sendOne[carepoint.MessageResponse](ctx, c.httpClient.Post, notificationPath("register-device"), request,
		"registering device")
}

// SetDeviceActive implements carepoint.NotificationsClient.SetDeviceActive
func (c *NotificationsClient) SetDeviceActive(ctx context.Context, id string, active bool) (*carepoint.DeviceToken, error) {
	if id == "" {
		return nil, constants.ErrIDRequired
	}

	return sendOne[carepoint.DeviceToken](ctx, c.httpClient.Patch, notificationPath("device-tokens", id),
		setActiveRequest{IsActive: active}, "updating device token")
}

// DeleteDeviceToken implements carepoint.NotificationsClient.DeleteDeviceToken
func (c *NotificationsClient) DeleteDeviceToken(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrIDRequired
	}

	return c.remove(ctx, notificationPath("device-tokens", id), "device token")
}
