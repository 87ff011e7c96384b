package carepoint

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/carepoint-health/carepoint-client/internal/constants"
)

// Storage keys used by the client.
const (
	KeyAccessToken  = constants.KeyAccessToken
	KeyRefreshToken = constants.KeyRefreshToken
	KeyUser         = constants.KeyUser
)

// CredentialKeys lists every key cleared together when a session ends.
func CredentialKeys() []string {
	return []string{KeyAccessToken, KeyRefreshToken, KeyUser}
}

// TokenStore is the durable key/value storage holding credentials.
// Get returns "" with a nil error for a missing key. Implementations must
// make writes visible to subsequent reads from any goroutine.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	MultiRemove(ctx context.Context, keys ...string) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// AuthClient covers account and session endpoints.
type AuthClient interface {
	Register(ctx context.Context, request *RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error)
	VerifyOTP(ctx context.Context, request *VerifyOTPRequest) (*AuthResponse, error)
	ResendVerification(ctx context.Context, email string) (*MessageResponse, error)
	GoogleAuth(ctx context.Context, accessToken string) (*AuthResponse, error)
	Profile(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, request *UpdateProfileRequest) (*User, error)
	ChangePassword(ctx context.Context, request *ChangePasswordRequest) (*MessageResponse, error)
	PasswordResetRequest(ctx context.Context, email string) (*MessageResponse, error)
	PasswordResetConfirm(ctx context.Context, request *PasswordResetConfirmRequest) (*MessageResponse, error)
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	RefreshToken(ctx context.Context) (string, error)
	CurrentUser(ctx context.Context) (*User, error)
}

// MedicationsClient covers medication tracking.
type MedicationsClient interface {
	List(ctx context.Context, filter *MedicationFilter) ([]Medication, error)
	Get(ctx context.Context, id string) (*Medication, error)
	Create(ctx context.Context, request *MedicationRequest) (*Medication, error)
	Update(ctx context.Context, id string, request *MedicationRequest) (*Medication, error)
	Delete(ctx context.Context, id string) error
	ToggleTaken(ctx context.Context, id string) (*TakenRecord, error)
	Today(ctx context.Context) ([]TodayMedication, error)
	Calendar(ctx context.Context, month, year int) (MedicationCalendar, error)
	TakenRecords(ctx context.Context, filter *TakenRecordFilter) ([]TakenRecord, error)
	CreateTakenRecord(ctx context.Context, request *TakenRecordRequest) (*TakenRecord, error)
}

// HealthRecordsClient covers uploaded health records.
type HealthRecordsClient interface {
	List(ctx context.Context, filter *HealthRecordFilter) ([]HealthRecord, error)
	Get(ctx context.Context, id string) (*HealthRecord, error)
	Create(ctx context.Context, request *HealthRecordRequest, file *Attachment) (*HealthRecord, error)
	Update(ctx context.Context, id string, request *HealthRecordRequest, file *Attachment) (*HealthRecord, error)
	Delete(ctx context.Context, id string) error
}

// EmergencyContactsClient covers emergency contacts.
type EmergencyContactsClient interface {
	List(ctx context.Context) (*EmergencyContactList, error)
	Get(ctx context.Context, id int) (*EmergencyContact, error)
	Create(ctx context.Context, request *EmergencyContactRequest) (*EmergencyContact, error)
	Update(ctx context.Context, id int, request *EmergencyContactRequest) (*EmergencyContact, error)
	Delete(ctx context.Context, id int) (*MessageResponse, error)
	SetPrimary(ctx context.Context, id int) (*SetPrimaryContactResponse, error)
	Primary(ctx context.Context) (*EmergencyContact, error)
	Stats(ctx context.Context) (*ContactStats, error)
	BulkDelete(ctx context.Context, ids []int) (*BulkDeleteResponse, error)
}

// MedicalHistoryClient covers conditions, surgeries and allergies.
type MedicalHistoryClient interface {
	Conditions(ctx context.Context) ([]MedicalCondition, error)
	Condition(ctx context.Context, id string) (*MedicalCondition, error)
	CreateCondition(ctx context.Context, request *MedicalConditionRequest) (*MedicalCondition, error)
	UpdateCondition(ctx context.Context, id string, request *MedicalConditionRequest) (*MedicalCondition, error)
	DeleteCondition(ctx context.Context, id string) error

	Surgeries(ctx context.Context) ([]Surgery, error)
	Surgery(ctx context.Context, id string) (*Surgery, error)
	CreateSurgery(ctx context.Context, request *SurgeryRequest) (*Surgery, error)
	UpdateSurgery(ctx context.Context, id string, request *SurgeryRequest) (*Surgery, error)
	DeleteSurgery(ctx context.Context, id string) error

	Allergies(ctx context.Context) ([]Allergy, error)
	Allergy(ctx context.Context, id string) (*Allergy, error)
	CreateAllergy(ctx context.Context, request *AllergyRequest) (*Allergy, error)
	UpdateAllergy(ctx context.Context, id string, request *AllergyRequest) (*Allergy, error)
	DeleteAllergy(ctx context.Context, id string) error
}

// NotificationsClient covers the inbox, delivery preferences and push tokens.
type NotificationsClient interface {
	List(ctx context.Context, filter *NotificationFilter) (*NotificationPage, error)
	Get(ctx context.Context, id string) (*Notification, error)
	Create(ctx context.Context, request *NotificationRequest) (*Notification, error)
	SetRead(ctx context.Context, id string, read bool) (*Notification, error)
	Delete(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) (*MessageResponse, error)
	MarkAllRead(ctx context.Context) (*MessageResponse, error)
	BulkAction(ctx context.Context, request *BulkNotificationRequest) (*MessageResponse, error)
	Stats(ctx context.Context) (*NotificationStats, error)

	Preferences(ctx context.Context) ([]NotificationPreference, error)
	Preference(ctx context.Context, id string) (*NotificationPreference, error)
	CreatePreference(ctx context.Context, request *PreferenceRequest) (*NotificationPreference, error)
	UpdatePreference(ctx context.Context, id string, patch *PreferencePatch) (*NotificationPreference, error)
	UpdatePreferences(ctx context.Context, preferences []PreferenceRequest) (*MessageResponse, error)
	DeletePreference(ctx context.Context, id string) error

	DeviceTokens(ctx context.Context) ([]DeviceToken, error)
	DeviceToken(ctx context.Context, id string) (*DeviceToken, error)
	RegisterDevice(ctx context.Context, request *DeviceTokenRequest) (*MessageResponse, error)
	SetDeviceActive(ctx context.Context, id string, active bool) (*DeviceToken, error)
	DeleteDeviceToken(ctx context.Context, id string) error
}

// Client aggregates the resource clients.
type Client interface {
	Auth() AuthClient
	Medications() MedicationsClient
	HealthRecords() HealthRecordsClient
	EmergencyContacts() EmergencyContactsClient
	MedicalHistory() MedicalHistoryClient
	Notifications() NotificationsClient
	TokenStore() TokenStore
	// Close releases resources held by a store the client built itself.
	Close() error
}

// Config represents client configuration for building a carepoint.Client.
//
// # Base URL
//
// APIEndpoint wins when set. Otherwise CAREPOINT_API_BASE_URL is used (trimmed,
// trailing slash removed), and finally the hosted default backend.
//
// # Credentials
//
// Credentials live in a TokenStore. Pass one directly, or describe a backend
// with Store and let carepointclient.New build it. With neither, an in-memory
// store is used and credentials vanish with the process.
//
// # Timeouts and retries
//
// Every request gets RequestTimeout per attempt. A transport failure on the
// first attempt is retried once with ColdStartTimeout. RetryMax > 0
// additionally enables backoff retries on 429 and 5xx responses.
type Config struct {
	// APIEndpoint: base URL for the backend (e.g., "https://youdoc.onrender.com").
	APIEndpoint string

	// TokenStore: credential storage. Takes precedence over Store.
	TokenStore TokenStore
	// Store: backend description used when TokenStore is nil.
	Store *StoreConfig

	// RequestTimeout: per-attempt timeout. Defaults to 30s.
	RequestTimeout time.Duration
	// ColdStartTimeout: timeout of the cold-start retry. Defaults to 90s.
	ColdStartTimeout time.Duration
	// RetryMax: opt-in retries for 429/5xx responses. 0 disables them.
	RetryMax int
	// RetryWaitMin: minimum backoff between status retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between status retries.
	RetryWaitMax time.Duration

	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}

// ResolveAPIEndpoint picks the base URL: explicit value, then environment,
// then the hosted default.
func ResolveAPIEndpoint(explicit string) string {
	if endpoint := normalizeEndpoint(explicit); endpoint != "" {
		return endpoint
	}

	if endpoint := normalizeEndpoint(os.Getenv(constants.APIEndpointEnvVar)); endpoint != "" {
		return endpoint
	}

	return constants.DefaultAPIEndpoint
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)

	return strings.TrimSuffix(endpoint, "/")
}
