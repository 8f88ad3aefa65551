package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(&form{Name: "Ada", Email: "ada@example.com", Password: "Secret123", ConfirmPassword: "Secret123"})
	assert.NoError(t, err)
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(&form{Email: "not-an-email", Password: "weak", ConfirmPassword: "other"})
	require.Error(t, err)

	var fields Errors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "Invalid email address", fields["email"])
	assert.Contains(t, fields["password"], "at least 8 characters")
	assert.Equal(t, "Passwords do not match", fields["confirm_password"])
}

func TestErrors_ErrorIsSorted(t *testing.T) {
	err := Errors{"password": "bad", "email": "bad"}
	assert.Equal(t, "email: bad; password: bad", err.Error())
}

func TestStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Secret123":  true,
		"aB3aB3aB":   true,
		"Sec123":     false, // too short
		"secret123":  false, // no upper
		"SECRET123":  false, // no lower
		"SecretPass": false, // no digit
		"Secret 123": false, // space not allowed
		"Secret!123": false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, StrongPassword(pw), pw)
	}
}

func TestOTPCode(t *testing.T) {
	assert.True(t, OTPCode("123456"))
	assert.True(t, OTPCode("000000"))
	assert.False(t, OTPCode("12345"))
	assert.False(t, OTPCode("1234567"))
	assert.False(t, OTPCode("12a456"))
	assert.False(t, OTPCode("-12345"))
	assert.False(t, OTPCode("١٢٣٤٥٦")) // non-ASCII digits
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("a@b.com"))
	assert.False(t, Email(""))
	assert.False(t, Email("a@"))
}
