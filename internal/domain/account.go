package domain

import "time"

// Role tags what an account may do in the app
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Account represents a registered user of the app
type Account struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Username     string      `json:"username"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	LastLoginAt  *time.Time  `json:"last_login_at"`
	IsActive     bool        `json:"is_active"`
	Role         Role        `json:"role"`
	Preferences  Preferences `json:"preferences"`
	Profile      Profile     `json:"profile"`
}

// Preferences holds per-account UI and notification settings
type Preferences struct {
	RememberMe         bool `json:"remember_me"`
	EmailNotifications bool `json:"email_notifications"`
	StudyReminders     bool `json:"study_reminders"`
}

// Profile holds optional study details filled in after registration
type Profile struct {
	School         string `json:"school"`
	GraduationDate string `json:"graduation_date"`
	ExamDate       string `json:"exam_date"`
	StudyGoal      string `json:"study_goal"`
}

// DefaultPreferences returns the preferences a new account starts with
func DefaultPreferences(rememberMe bool) Preferences {
	return Preferences{
		RememberMe:         rememberMe,
		EmailNotifications: true,
		StudyReminders:     true,
	}
}

// SanitizedAccount is the account view handed to callers. It has no
// password hash field, so nothing can leak it by accident.
type SanitizedAccount struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	LastLoginAt *time.Time  `json:"last_login_at"`
	IsActive    bool        `json:"is_active"`
	Role        Role        `json:"role"`
	Preferences Preferences `json:"preferences"`
	Profile     Profile     `json:"profile"`
}

// Sanitize strips the password hash
func (a *Account) Sanitize() *SanitizedAccount {
	return &SanitizedAccount{
		ID:          a.ID,
		Email:       a.Email,
		Username:    a.Username,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		LastLoginAt: a.LastLoginAt,
		IsActive:    a.IsActive,
		Role:        a.Role,
		Preferences: a.Preferences,
		Profile:     a.Profile,
	}
}

// AccountUpdate lists the fields a profile update may touch. Nil fields are
// left unchanged. Identity, role, activation, hash and timestamps are not
// updatable here.
type AccountUpdate struct {
	Email       *string      `json:"email,omitempty"`
	Username    *string      `json:"username,omitempty"`
	FirstName   *string      `json:"first_name,omitempty"`
	LastName    *string      `json:"last_name,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Profile     *Profile     `json:"profile,omitempty"`
}

// Apply shallow-merges the update onto the account
func (u AccountUpdate) Apply(a *Account) {
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.FirstName != nil {
		a.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.Preferences != nil {
		a.Preferences = *u.Preferences
	}
	if u.Profile != nil {
		a.Profile = *u.Profile
	}
}
