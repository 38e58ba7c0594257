package validation

import (
	"errors"
	"fmt"
	"testing"

	"lireddit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     []models.FieldError
	}{
		{"valid", "bob", "pw1", nil},
		{"empty username", "", "secret", []models.FieldError{{Field: "username", Message: MsgUsernameTooShort}}},
		{"two char username", "ab", "secret", []models.FieldError{{Field: "username", Message: MsgUsernameTooShort}}},
		{"two char password", "alice", "pw", []models.FieldError{{Field: "password", Message: MsgPasswordTooShort}}},
		{"both short reports username only", "a", "b", []models.FieldError{{Field: "username", Message: MsgUsernameTooShort}}},
		{"two multibyte chars username", "日本", "secret", []models.FieldError{{Field: "username", Message: MsgUsernameTooShort}}},
		{"two multibyte chars password", "alice", "éé", []models.FieldError{{Field: "password", Message: MsgPasswordTooShort}}},
		{"three multibyte chars valid", "日本語", "ééé", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCredentials(tt.username, tt.password))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Nil(t, ValidatePassword("abc"))
	fe := ValidatePassword("ab")
	require.NotNil(t, fe)
	assert.Equal(t, "password", fe.Field)

	// four bytes, two characters
	assert.NotNil(t, ValidatePassword("éé"))
}

func TestFieldErrorFromStorage(t *testing.T) {
	t.Run("conflict maps to username taken", func(t *testing.T) {
		err := fmt.Errorf("create: %w", models.NewConflictError("username already exists", errors.New("23505")))
		fe, ok := FieldErrorFromStorage(err)
		require.True(t, ok)
		assert.Equal(t, models.FieldError{Field: "username", Message: "already taken"}, *fe)
	})

	t.Run("other errors are not mapped", func(t *testing.T) {
		fe, ok := FieldErrorFromStorage(models.NewInternalError(errors.New("timeout")))
		assert.False(t, ok)
		assert.Nil(t, fe)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := FieldErrorFromStorage(nil)
		assert.False(t, ok)
	})
}
