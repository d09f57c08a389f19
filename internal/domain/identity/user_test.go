package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T) *User {
	t.Helper()
	u, err := NewUser(uuid.New(), "  Anna@Example.COM ", "Anna", "s3cret-pass", shared.RoleBuyer)
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestNewUser(t *testing.T) {
	t.Run("normalizes email and hashes password", func(t *testing.T) {
		u, err := NewUser(uuid.New(), "  Anna@Example.COM ", "Anna", "s3cret-pass", shared.RoleSeller)
		require.NoError(t, err)
		assert.Equal(t, "anna@example.com", u.Email)
		assert.Equal(t, UserStatusActive, u.Status)
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
		assert.True(t, u.VerifyPassword("s3cret-pass"))
		assert.False(t, u.VerifyPassword("wrong-pass"))
		require.Len(t, u.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeUserRegistered, u.GetDomainEvents()[0].EventType())
	})

	tests := []struct {
		name     string
		email    string
		display  string
		password string
		role     shared.Role
		code     string
	}{
		{"invalid email", "not-an-email", "A", "password1", shared.RoleBuyer, "INVALID_EMAIL"},
		{"empty name", "a@b.io", " ", "password1", shared.RoleBuyer, "INVALID_DISPLAY_NAME"},
		{"short password", "a@b.io", "A", "short", shared.RoleBuyer, "INVALID_PASSWORD"},
		{"system role", "a@b.io", "A", "password1", shared.RoleSystem, "INVALID_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(uuid.New(), tt.email, tt.display, tt.password, tt.role)
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.CodeOf(err))
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	u := newTestUser(t)

	err := u.ChangePassword("wrong-pass", "another-pass")
	assert.Equal(t, "INVALID_PASSWORD", shared.CodeOf(err))

	require.NoError(t, u.ChangePassword("s3cret-pass", "another-pass"))
	assert.True(t, u.VerifyPassword("another-pass"))
	assert.Equal(t, EventTypeUserPasswordChanged, u.GetDomainEvents()[0].EventType())
}

func TestUser_SuspendReactivate(t *testing.T) {
	u := newTestUser(t)

	require.NoError(t, u.Suspend())
	assert.False(t, u.CanLogin())
	assert.Error(t, u.Suspend())

	require.NoError(t, u.Reactivate())
	assert.True(t, u.CanLogin())
	assert.Error(t, u.Reactivate())
}

func TestUser_Anonymize(t *testing.T) {
	u := newTestUser(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, u.Anonymize(at))
	assert.Equal(t, "deleted-"+u.ID.String()+"@anonymized.invalid", u.Email)
	assert.Equal(t, AnonymizedName, u.DisplayName)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, UserStatusAnonymized, u.Status)
	assert.Equal(t, at, *u.AnonymizedAt)
	assert.False(t, u.CanLogin())
	assert.False(t, u.VerifyPassword("s3cret-pass"))

	assert.Equal(t, "USER_ANONYMIZED", shared.CodeOf(u.Anonymize(at)))
	assert.Equal(t, "USER_ANONYMIZED", shared.CodeOf(u.SetDisplayName("Back")))
	assert.Error(t, u.Reactivate())
}

func TestUser_LoginLockout(t *testing.T) {
	u := newTestUser(t)

	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.IsLocked())
	assert.False(t, u.CanLogin())

	u.RecordLoginSuccess("10.0.0.1")
	assert.Equal(t, 0, u.FailedAttempts)
	assert.True(t, u.CanLogin())
	assert.NotNil(t, u.LastLoginAt)
}

func TestNewTenant(t *testing.T) {
	tenant, err := NewTenant(" acme-market ", "Acme Market", "", "pl")
	require.NoError(t, err)
	assert.Equal(t, "ACME-MARKET", tenant.Code)
	assert.Equal(t, valueobject.EUR, tenant.DefaultCurrency)
	assert.Equal(t, "PL", tenant.Country)
	assert.True(t, tenant.IsActive())

	require.NoError(t, tenant.Suspend())
	assert.False(t, tenant.IsActive())
	require.NoError(t, tenant.Activate())

	_, err = NewTenant("x", "Name", "EUR", "PL")
	assert.Equal(t, "INVALID_TENANT_CODE", shared.CodeOf(err))
	_, err = NewTenant("ACME", strings.Repeat("n", 201), "EUR", "PL")
	assert.Equal(t, "INVALID_TENANT_NAME", shared.CodeOf(err))
	_, err = NewTenant("ACME", "Acme", "EURO", "PL")
	assert.Equal(t, "INVALID_CURRENCY", shared.CodeOf(err))
	_, err = NewTenant("ACME", "Acme", "EUR", "POL")
	assert.Equal(t, "INVALID_COUNTRY", shared.CodeOf(err))
}
