package carepoint

import (
	"net/url"
	"strconv"
)

// Notification types.
const (
	NotificationMedication = "medication"
	NotificationHealthTip  = "health-tip"
	NotificationSync       = "sync"
	NotificationGeneral    = "general"
)

// Bulk notification actions.
const (
	BulkMarkRead   = "mark_read"
	BulkMarkUnread = "mark_unread"
	BulkDelete     = "delete"
)

// Notification is a message delivered to the user.
type Notification struct {
	ID            string                 `json:"id"                       yaml:"id"`
	Type          string                 `json:"type"                     yaml:"type"`
	TypeDisplay   string                 `json:"type_display,omitempty"   yaml:"type_display,omitempty"`
	Title         string                 `json:"title"                    yaml:"title"`
	Message       string                 `json:"message"                  yaml:"message"`
	IsRead        bool                   `json:"is_read"                  yaml:"is_read"`
	Status        string                 `json:"status"                   yaml:"status"`
	StatusDisplay string                 `json:"status_display,omitempty" yaml:"status_display,omitempty"`
	ScheduledFor  string                 `json:"scheduled_for,omitempty"  yaml:"scheduled_for,omitempty"`
	SentAt        string                 `json:"sent_at,omitempty"        yaml:"sent_at,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"       yaml:"metadata,omitempty"`
	CreatedAt     string                 `json:"created_at"               yaml:"created_at"`
	UpdatedAt     string                 `json:"updated_at"               yaml:"updated_at"`
	TimeAgo       string                 `json:"time_ago,omitempty"       yaml:"time_ago,omitempty"`
}

// NotificationPage is one page of a notification listing.
type NotificationPage struct {
	Count    int            `json:"count"              yaml:"count"`
	Next     string         `json:"next,omitempty"     yaml:"next,omitempty"`
	Previous string         `json:"previous,omitempty" yaml:"previous,omitempty"`
	Results  []Notification `json:"results"            yaml:"results"`
}

// NotificationFilter narrows a notification listing.
type NotificationFilter struct {
	IsRead   *bool
	Type     string
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}

// ToValues renders the filter as query parameters.
func (f *NotificationFilter) ToValues() url.Values {
	values := url.Values{}
	if f == nil {
		return values
	}

	setBool(values, "is_read", f.IsRead)
	setIfNotEmpty(values, "type", f.Type)
	setIfNotEmpty(values, "date_from", f.DateFrom)
	setIfNotEmpty(values, "date_to", f.DateTo)

	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}

	if f.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(f.PageSize))
	}

	return values
}

// NotificationRequest schedules a notification.
type NotificationRequest struct {
	Type         string                 `json:"type"`
	Title        string                 `json:"title"`
	Message      string                 `json:"message"`
	ScheduledFor string                 `json:"scheduled_for,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NotificationStats summarises the inbox.
type NotificationStats struct {
	TotalNotifications  int            `json:"total_notifications"   yaml:"total_notifications"`
	UnreadNotifications int            `json:"unread_notifications"  yaml:"unread_notifications"`
	ByType              map[string]int `json:"notifications_by_type" yaml:"notifications_by_type"`
	Recent              []Notification `json:"recent_notifications"  yaml:"recent_notifications"`
}

// BulkNotificationRequest applies one action to several notifications.
type BulkNotificationRequest struct {
	NotificationIDs []string `json:"notification_ids"`
	Action          string   `json:"action"`
}

// NotificationPreference controls delivery channels for one notification type.
type NotificationPreference struct {
	ID                      string `json:"id"                                  yaml:"id"`
	NotificationType        string `json:"notification_type"                   yaml:"notification_type"`
	NotificationTypeDisplay string `json:"notification_type_display,omitempty" yaml:"notification_type_display,omitempty"`
	PushEnabled             bool   `json:"push_enabled"                        yaml:"push_enabled"`
	EmailEnabled            bool   `json:"email_enabled"                       yaml:"email_enabled"`
	SMSEnabled              bool   `json:"sms_enabled"                         yaml:"sms_enabled"`
	CreatedAt               string `json:"created_at"                          yaml:"created_at"`
	UpdatedAt               string `json:"updated_at"                          yaml:"updated_at"`
}

// PreferenceRequest creates a preference or, in bulk, updates one.
type PreferenceRequest struct {
	NotificationType string `json:"notification_type"`
	PushEnabled      bool   `json:"push_enabled"`
	EmailEnabled     bool   `json:"email_enabled"`
	SMSEnabled       bool   `json:"sms_enabled"`
}

// PreferencePatch changes individual channels of one preference.
type PreferencePatch struct {
	PushEnabled  *bool `json:"push_enabled,omitempty"`
	EmailEnabled *bool `json:"email_enabled,omitempty"`
	SMSEnabled   *bool `json:"sms_enabled,omitempty"`
}

// DeviceToken is a push token registered for this account.
type DeviceToken struct {
	ID                string `json:"id"                            yaml:"id"`
	Token             string `json:"token,omitempty"               yaml:"token,omitempty"`
	TokenMasked       string `json:"token_masked,omitempty"        yaml:"token_masked,omitempty"`
	DeviceType        string `json:"device_type"                   yaml:"device_type"`
	DeviceTypeDisplay string `json:"device_type_display,omitempty" yaml:"device_type_display,omitempty"`
	IsActive          bool   `json:"is_active"                     yaml:"is_active"`
	LastUsed          string `json:"last_used,omitempty"           yaml:"last_used,omitempty"`
	CreatedAt         string `json:"created_at"                    yaml:"created_at"`
}

// DeviceTokenRequest registers a push token.
type DeviceTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}
