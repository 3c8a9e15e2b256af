package auth_test

import (
	stderrors "errors"
	"testing"

	auth "github.com/goliatone/go-orgauth"
	"github.com/stretchr/testify/assert"
)

func TestLoginRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload auth.LoginRequest
		wantErr bool
	}{
		{
			name:    "valid",
			payload: auth.LoginRequest{Identifier: "test@example.com", Password: "password123"},
			wantErr: false,
		},
		{
			name:    "missing identifier",
			payload: auth.LoginRequest{Password: "password123"},
			wantErr: true,
		},
		{
			name:    "identifier must be an email",
			payload: auth.LoginRequest{Identifier: "not-an-email", Password: "password123"},
			wantErr: true,
		},
		{
			name:    "missing password",
			payload: auth.LoginRequest{Identifier: "test@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistrationCreatePayloadValidate(t *testing.T) {
	valid := auth.RegistrationCreatePayload{
		FirstName:       "Pepper",
		LastName:        "Potts",
		Email:           "pepper@example.com",
		Password:        "rescue12345",
		ConfirmPassword: "rescue12345",
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("password confirmation must match", func(t *testing.T) {
		payload := valid
		payload.ConfirmPassword = "different123"
		assert.Error(t, payload.Validate())
	})

	t.Run("password too short", func(t *testing.T) {
		payload := valid
		payload.Password = "short"
		payload.ConfirmPassword = "short"
		assert.Error(t, payload.Validate())
	})

	t.Run("bad email", func(t *testing.T) {
		payload := valid
		payload.Email = "nope"
		assert.Error(t, payload.Validate())
	})
}

func TestCreateOrganizationPayloadValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		payload := auth.CreateOrganizationPayload{Name: "Acme", Description: "desc"}
		assert.NoError(t, payload.Validate())
	})

	t.Run("name required", func(t *testing.T) {
		payload := auth.CreateOrganizationPayload{}
		assert.Error(t, payload.Validate())
	})

	t.Run("name too short", func(t *testing.T) {
		payload := auth.CreateOrganizationPayload{Name: "A"}
		assert.Error(t, payload.Validate())
	})
}

func TestUpdateOrganizationPayloadValidate(t *testing.T) {
	t.Run("all fields optional", func(t *testing.T) {
		assert.NoError(t, auth.UpdateOrganizationPayload{}.Validate())
	})

	t.Run("present name must not be empty", func(t *testing.T) {
		empty := ""
		payload := auth.UpdateOrganizationPayload{Name: &empty}
		assert.Error(t, payload.Validate())
	})

	t.Run("valid name", func(t *testing.T) {
		name := "Acme Corp"
		payload := auth.UpdateOrganizationPayload{Name: &name}
		assert.NoError(t, payload.Validate())
	})
}

func TestFormatValidationErrorToMap(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, auth.FormatValidationErrorToMap(nil))
	})

	t.Run("ozzo errors flatten per field", func(t *testing.T) {
		err := auth.LoginRequest{Identifier: "nope"}.Validate()
		out := auth.FormatValidationErrorToMap(err)

		assert.Contains(t, out, "identifier")
		assert.Contains(t, out, "password")
	})

	t.Run("plain errors land under a generic key", func(t *testing.T) {
		out := auth.FormatValidationErrorToMap(stderrors.New("boom"))
		assert.Equal(t, "boom", out["error"])
	})
}

func TestValidateStringEquals(t *testing.T) {
	rule := auth.ValidateStringEquals("secret")

	assert.NoError(t, rule("secret"))
	assert.Error(t, rule("other"))
	assert.Error(t, rule(42))
}
