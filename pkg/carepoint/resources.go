package carepoint

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
)

// User represents an account profile.
type User struct {
	PublicID        string   `json:"public_id"               yaml:"public_id"`
	Email           string   `json:"email"                   yaml:"email"`
	FirstName       string   `json:"first_name"              yaml:"first_name"`
	LastName        string   `json:"last_name"               yaml:"last_name"`
	Mobile          string   `json:"mobile,omitempty"        yaml:"mobile,omitempty"`
	DateOfBirth     string   `json:"date_of_birth,omitempty" yaml:"date_of_birth,omitempty"`
	Gender          string   `json:"gender,omitempty"        yaml:"gender,omitempty"`
	BloodType       string   `json:"blood_type,omitempty"    yaml:"blood_type,omitempty"`
	Height          *float64 `json:"height,omitempty"        yaml:"height,omitempty"`
	Weight          *float64 `json:"weight,omitempty"        yaml:"weight,omitempty"`
	IsEmailVerified bool     `json:"is_email_verified"       yaml:"is_email_verified"`
	CreatedAt       string   `json:"created_at"              yaml:"created_at"`
	UpdatedAt       string   `json:"updated_at"              yaml:"updated_at"`
}

// userCamel is the camelCase rendition some backend versions return.
type userCamel struct {
	PublicID        string `json:"publicId"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	DateOfBirth     string `json:"dateOfBirth"`
	BloodType       string `json:"bloodType"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// UnmarshalJSON accepts both snake_case and camelCase field names.
// snake_case wins when both are present.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User

	var snake alias
	if err := json.Unmarshal(data, &snake); err != nil {
		return fmt.Errorf("failed to decode user: %w", err)
	}

	var camel userCamel
	if err := json.Unmarshal(data, &camel); err != nil {
		return fmt.Errorf("failed to decode user: %w", err)
	}

	*u = User(snake)
	u.PublicID = firstNonEmpty(u.PublicID, camel.PublicID)
	u.FirstName = firstNonEmpty(u.FirstName, camel.FirstName)
	u.LastName = firstNonEmpty(u.LastName, camel.LastName)
	u.DateOfBirth = firstNonEmpty(u.DateOfBirth, camel.DateOfBirth)
	u.BloodType = firstNonEmpty(u.BloodType, camel.BloodType)
	u.CreatedAt = firstNonEmpty(u.CreatedAt, camel.CreatedAt)
	u.UpdatedAt = firstNonEmpty(u.UpdatedAt, camel.UpdatedAt)
	u.IsEmailVerified = u.IsEmailVerified || camel.IsEmailVerified

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// FullName returns "First Last", trimmed of missing parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"password_confirm"`
	Mobile          string   `json:"mobile,omitempty"`
	DateOfBirth     string   `json:"date_of_birth,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	BloodType       string   `json:"blood_type,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
}

// RegisterResponse is returned by registration.
type RegisterResponse struct {
	Success              bool   `json:"success"              yaml:"success"`
	Message              string `json:"message"              yaml:"message"`
	Email                string `json:"email"                yaml:"email"`
	RequiresVerification bool   `json:"requiresVerification" yaml:"requires_verification"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest confirms an email with a one-time code.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// AuthResponse is returned by every endpoint that issues a session.
type AuthResponse struct {
	Success bool   `json:"success"        yaml:"success"`
	Message string `json:"message"        yaml:"message"`
	Access  string `json:"access"         yaml:"-"`
	Refresh string `json:"refresh"        yaml:"-"`
	User    *User  `json:"user,omitempty" yaml:"user,omitempty"`
}

// MessageResponse is the generic {"message": ...} body.
type MessageResponse struct {
	Success bool   `json:"success,omitempty" yaml:"success,omitempty"`
	Message string `json:"message"           yaml:"message"`
}

// UpdateProfileRequest patches profile fields. Empty fields are left untouched.
type UpdateProfileRequest struct {
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Mobile      string   `json:"mobile,omitempty"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	BloodType   string   `json:"blood_type,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
}

// UpdateProfileResponse wraps the updated user.
type UpdateProfileResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// ChangePasswordRequest changes the password of the logged-in user.
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// PasswordResetConfirmRequest completes a password reset.
type PasswordResetConfirmRequest struct {
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Medication represents a tracked medication.
type Medication struct {
	ID              string         `json:"id"                      yaml:"id"`
	Name            string         `json:"name"                    yaml:"name"`
	MedicationType  string         `json:"medication_type"         yaml:"medication_type"`
	DosageDisplay   string         `json:"dosage_display"          yaml:"dosage_display"`
	DosageAmount    float64        `json:"dosage_amount"           yaml:"dosage_amount"`
	DosageUnit      string         `json:"dosage_unit"             yaml:"dosage_unit"`
	Frequency       string         `json:"frequency"               yaml:"frequency"`
	StartDate       string         `json:"start_date"              yaml:"start_date"`
	EndDate         string         `json:"end_date,omitempty"      yaml:"end_date,omitempty"`
	Notes           string         `json:"notes,omitempty"         yaml:"notes,omitempty"`
	ReminderEnabled bool           `json:"reminder_enabled"        yaml:"reminder_enabled"`
	IsActive        bool           `json:"is_active"               yaml:"is_active"`
	IsCurrent       bool           `json:"is_current"              yaml:"is_current"`
	Time            []string       `json:"time,omitempty"          yaml:"time,omitempty"`
	Taken           bool           `json:"taken"                   yaml:"taken"`
	CreatedAt       string         `json:"created_at"              yaml:"created_at"`
	UpdatedAt       string         `json:"updated_at"              yaml:"updated_at"`
	ReminderTimes   []ReminderTime `json:"reminder_times,omitempty" yaml:"reminder_times,omitempty"`
	TakenRecords    []TakenRecord  `json:"taken_records,omitempty"  yaml:"taken_records,omitempty"`
}

// ReminderTime is one scheduled reminder of a medication.
type ReminderTime struct {
	ID          string `json:"id"           yaml:"id"`
	Time        string `json:"time"         yaml:"time"`
	TimeDisplay string `json:"time_display" yaml:"time_display"`
	IsActive    bool   `json:"is_active"    yaml:"is_active"`
	CreatedAt   string `json:"created_at"   yaml:"created_at"`
}

// TakenRecord records whether a medication was taken on a date.
type TakenRecord struct {
	ID         string `json:"id"                   yaml:"id"`
	Medication string `json:"medication,omitempty" yaml:"medication,omitempty"`
	Date       string `json:"date"                 yaml:"date"`
	Taken      bool   `json:"taken"                yaml:"taken"`
	CreatedAt  string `json:"created_at"           yaml:"created_at"`
	UpdatedAt  string `json:"updated_at"           yaml:"updated_at"`
}

// TodayMedication is the condensed view returned for the current day.
type TodayMedication struct {
	ID             string   `json:"id"              yaml:"id"`
	Name           string   `json:"name"            yaml:"name"`
	Dosage         string   `json:"dosage"          yaml:"dosage"`
	Time           []string `json:"time"            yaml:"time"`
	Taken          bool     `json:"taken"           yaml:"taken"`
	MedicationType string   `json:"medication_type" yaml:"medication_type"`
	Notes          string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// MedicationCalendar maps YYYY-MM-DD dates to the medications scheduled that day.
type MedicationCalendar map[string][]Medication

// MedicationRequest creates or patches a medication.
type MedicationRequest struct {
	Name            string   `json:"name,omitempty"`
	MedicationType  string   `json:"medication_type,omitempty"`
	DosageAmount    float64  `json:"dosage_amount,omitempty"`
	DosageUnit      string   `json:"dosage_unit,omitempty"`
	Frequency       string   `json:"frequency,omitempty"`
	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	ReminderEnabled *bool    `json:"reminder_enabled,omitempty"`
	ReminderTimes   []string `json:"reminder_times,omitempty"`
}

// MedicationFilter narrows a medication listing.
type MedicationFilter struct {
	Date      string
	StartDate string
	EndDate   string
	IsActive  *bool
}

// ToValues renders the filter as query parameters.
func (f *MedicationFilter) ToValues() url.Values {
	values := url.Values{}
	if f == nil {
		return values
	}

	setIfNotEmpty(values, "date", f.Date)
	setIfNotEmpty(values, "start_date", f.StartDate)
	setIfNotEmpty(values, "end_date", f.EndDate)
	setBool(values, "is_active", f.IsActive)

	return values
}

// TakenRecordFilter narrows a taken-record listing.
type TakenRecordFilter struct {
	Medication string
	Date       string
	Taken      *bool
}

// ToValues renders the filter as query parameters.
func (f *TakenRecordFilter) ToValues() url.Values {
	values := url.Values{}
	if f == nil {
		return values
	}

	setIfNotEmpty(values, "medication", f.Medication)
	setIfNotEmpty(values, "date", f.Date)
	setBool(values, "taken", f.Taken)

	return values
}

// TakenRecordRequest records a dose explicitly.
type TakenRecordRequest struct {
	Medication string `json:"medication"`
	Date       string `json:"date"`
	Taken      bool   `json:"taken"`
}

// HealthRecord is an uploaded document such as a lab result.
type HealthRecord struct {
	ID          string `json:"id"                    yaml:"id"`
	Title       string `json:"title"                 yaml:"title"`
	Type        string `json:"type"                  yaml:"type"`
	Date        string `json:"date"                  yaml:"date"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	FileURI     string `json:"file_uri,omitempty"    yaml:"file_uri,omitempty"`
	FileName    string `json:"file_name,omitempty"   yaml:"file_name,omitempty"`
	Notes       string `json:"notes,omitempty"       yaml:"notes,omitempty"`
	CreatedAt   string `json:"created_at"            yaml:"created_at"`
	UpdatedAt   string `json:"updated_at"            yaml:"updated_at"`
}

// HealthRecordRequest carries the text fields of a health record upload.
// Empty fields are not sent.
type HealthRecordRequest struct {
	Title       string
	Type        string
	Date        string
	Description string
	Notes       string
}

// Fields returns the non-empty text fields in a stable order.
func (r *HealthRecordRequest) Fields() [][2]string {
	if r == nil {
		return nil
	}

	all := [][2]string{
		{"title", r.Title},
		{"type", r.Type},
		{"date", r.Date},
		{"description", r.Description},
		{"notes", r.Notes},
	}

	out := make([][2]string, 0, len(all))
	for _, field := range all {
		if field[1] != "" {
			out = append(out, field)
		}
	}

	return out
}

// HealthRecordFilter narrows a health record listing.
type HealthRecordFilter struct {
	Type     string
	DateFrom string
	DateTo   string
	HasFile  *bool
	Search   string
	Ordering string
}

// ToValues renders the filter as query parameters.
func (f *HealthRecordFilter) ToValues() url.Values {
	values := url.Values{}
	if f == nil {
		return values
	}

	setIfNotEmpty(values, "type", f.Type)
	setIfNotEmpty(values, "date_from", f.DateFrom)
	setIfNotEmpty(values, "date_to", f.DateTo)
	setBool(values, "has_file", f.HasFile)
	setIfNotEmpty(values, "search", f.Search)
	setIfNotEmpty(values, "ordering", f.Ordering)

	return values
}

// Attachment is a file uploaded alongside a health record.
type Attachment struct {
	// Name defaults to "file.jpg".
	Name string
	// ContentType defaults to "image/jpeg".
	ContentType string
	Reader      io.Reader
}

// Default attachment metadata.
const (
	DefaultAttachmentName        = "file.jpg"
	DefaultAttachmentContentType = "image/jpeg"
)

// EmergencyContact is a person to notify in an emergency.
type EmergencyContact struct {
	ID                  int    `json:"id"                             yaml:"id"`
	Name                string `json:"name"                           yaml:"name"`
	Relationship        string `json:"relationship,omitempty"         yaml:"relationship,omitempty"`
	DisplayRelationship string `json:"display_relationship,omitempty" yaml:"display_relationship,omitempty"`
	PhoneNumber         string `json:"phone_number"                   yaml:"phone_number"`
	Email               string `json:"email,omitempty"                yaml:"email,omitempty"`
	IsPrimary           bool   `json:"is_primary"                     yaml:"is_primary"`
	ContactInfo         string `json:"contact_info,omitempty"         yaml:"contact_info,omitempty"`
	CreatedAt           string `json:"created_at"                     yaml:"created_at"`
	UpdatedAt           string `json:"updated_at,omitempty"           yaml:"updated_at,omitempty"`
}

// EmergencyContactRequest creates or patches a contact.
type EmergencyContactRequest struct {
	Name         string `json:"name,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Email        string `json:"email,omitempty"`
	IsPrimary    *bool  `json:"is_primary,omitempty"`
}

// EmergencyContactList is the listing with its quota metadata.
type EmergencyContactList struct {
	Contacts []EmergencyContact   `json:"contacts" yaml:"contacts"`
	Metadata EmergencyContactMeta `json:"metadata" yaml:"metadata"`
}

// EmergencyContactMeta describes how many contacts may still be added.
type EmergencyContactMeta struct {
	TotalContacts  int  `json:"total_contacts"  yaml:"total_contacts"`
	MaxContacts    int  `json:"max_contacts"    yaml:"max_contacts"`
	RemainingSlots int  `json:"remaining_slots" yaml:"remaining_slots"`
	CanAddMore     bool `json:"can_add_more"    yaml:"can_add_more"`
}

// SetPrimaryContactResponse is returned after promoting a contact.
type SetPrimaryContactResponse struct {
	Message string            `json:"message" yaml:"message"`
	Contact *EmergencyContact `json:"contact" yaml:"contact"`
}

// ContactStats summarises the contact quota.
type ContactStats struct {
	TotalContacts      int    `json:"total_contacts"                 yaml:"total_contacts"`
	MaxContacts        int    `json:"max_contacts"                   yaml:"max_contacts"`
	RemainingSlots     int    `json:"remaining_slots"                yaml:"remaining_slots"`
	HasPrimary         bool   `json:"has_primary"                    yaml:"has_primary"`
	PrimaryContactName string `json:"primary_contact_name,omitempty" yaml:"primary_contact_name,omitempty"`
}

// BulkDeleteResponse reports which contacts were removed.
type BulkDeleteResponse struct {
	Message         string   `json:"message"          yaml:"message"`
	DeletedContacts []string `json:"deleted_contacts" yaml:"deleted_contacts"`
	DeletedCount    int      `json:"deleted_count"    yaml:"deleted_count"`
}

func setIfNotEmpty(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

func setBool(values url.Values, key string, value *bool) {
	if value != nil {
		values.Set(key, strconv.FormatBool(*value))
	}
}
