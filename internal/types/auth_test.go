package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRequests_Tags(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name    string
		req     any
		failTag string
	}{
		{"signup", &CreateUserRequest{Username: "jdoe", Email: "j@example.com", Password: "12345678"}, ""},
		{"signup without email", &CreateUserRequest{Username: "jdoe", Password: "password123"}, ""},
		{"signup short username", &CreateUserRequest{Username: "jd", Password: "password123"}, "min"},
		{"signup long username", &CreateUserRequest{Username: strings.Repeat("u", 65), Password: "password123"}, "max"},
		{"signup bad email", &CreateUserRequest{Username: "jdoe", Email: "nope", Password: "password123"}, "email"},
		{"signup short password", &CreateUserRequest{Username: "jdoe", Password: "short"}, "min"},
		{"login", &LoginRequest{Username: "jdoe", Password: "x"}, ""},
		{"login no username", &LoginRequest{Password: "x"}, "required"},
		{"update", &UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "newpassword"}, ""},
		{"update short", &UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "new"}, "min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			if tt.failTag == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.failTag, verrs[0].Tag())
		})
	}
}

func TestLoginResponse_JSON(t *testing.T) {
	id := uuid.New()
	raw, err := json.Marshal(LoginResponse{User: &User{ID: id, Username: "jdoe"}, Token: "tok"})
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"token":"tok"`)
	assert.Contains(t, string(raw), id.String())
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "external", "false flags are omitted")
}

func TestResume_Section(t *testing.T) {
	r := &Resume{Sections: []ResumeSection{
		{Name: "Experience", StartLine: 10, EndLine: 20},
		{Name: "Skills", StartLine: 21, EndLine: 25},
	}}

	got := r.Section(" skills ")
	require.NotNil(t, got)
	assert.Equal(t, 21, got.StartLine)

	assert.Nil(t, r.Section("Education"))
}
