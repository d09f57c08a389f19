package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive     UserStatus = "ACTIVE"
	UserStatusSuspended  UserStatus = "SUSPENDED"
	UserStatusAnonymized UserStatus = "ANONYMIZED"
)

const (
	bcryptCost = 12

	// AnonymizedName replaces the display name of erased users
	AnonymizedName = "Deleted user"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a buyer, seller operator or administrator of one marketplace
type User struct {
	shared.TenantAggregateRoot
	Email          string
	DisplayName    string
	PasswordHash   string
	Role           shared.Role
	Status         UserStatus
	LastLoginAt    *time.Time
	LastLoginIP    string
	FailedAttempts int
	LockedUntil    *time.Time
	AnonymizedAt   *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(tenantID uuid.UUID, email, displayName, password string, role shared.Role) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if role != shared.RoleBuyer && role != shared.RoleSeller && role != shared.RoleAdmin {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be BUYER, SELLER or ADMIN")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Email:               email,
		DisplayName:         strings.TrimSpace(displayName),
		PasswordHash:        hash,
		Role:                role,
		Status:              UserStatusActive,
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor returns the request actor for this user
func (u *User) Actor(sellerID *uuid.UUID) shared.Actor {
	return shared.Actor{UserID: u.ID, Role: u.Role, SellerID: sellerID}
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if err := u.ensureNotAnonymized(); err != nil {
		return err
	}
	if err := validateDisplayName(displayName); err != nil {
		return err
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.Touch()
	u.IncrementVersion()
	return nil
}

// ChangePassword replaces the password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if err := u.ensureNotAnonymized(); err != nil {
		return err
	}
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Suspend blocks the user from logging in
func (u *User) Suspend() error {
	if u.Status != UserStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active users can be suspended")
	}
	u.setStatus(UserStatusSuspended)
	return nil
}

// Reactivate lifts a suspension
func (u *User) Reactivate() error {
	if u.Status != UserStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Only suspended users can be reactivated")
	}
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.setStatus(UserStatusActive)
	return nil
}

// Anonymize erases personal data. The record stays so orders and audit
// entries keep a valid reference.
func (u *User) Anonymize(at time.Time) error {
	if err := u.ensureNotAnonymized(); err != nil {
		return err
	}
	u.Email = AnonymizedEmail(u.ID)
	u.DisplayName = AnonymizedName
	u.PasswordHash = ""
	u.LastLoginIP = ""
	u.AnonymizedAt = &at
	u.setStatus(UserStatusAnonymized)
	return nil
}

// AnonymizedEmail is the placeholder address of an erased user
func AnonymizedEmail(id uuid.UUID) string {
	return fmt.Sprintf("deleted-%s@anonymized.invalid", id)
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
}

// RecordLoginFailure counts a failed attempt and locks the account for
// lockDuration once maxAttempts is reached. Returns true when locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.Touch()
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := time.Now().UTC().Add(lockDuration)
		u.LockedUntil = &until
		return true
	}
	return false
}

// IsLocked reports a temporary lock after repeated failures
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive && !u.IsLocked()
}

func (u *User) IsAnonymized() bool {
	return u.Status == UserStatusAnonymized
}

func (u *User) setStatus(status UserStatus) {
	old := u.Status
	u.Status = status
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, status))
}

func (u *User) ensureNotAnonymized() error {
	if u.IsAnonymized() {
		return shared.NewDomainError("USER_ANONYMIZED", "User has been anonymized")
	}
	return nil
}

// Validation functions

func validateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
