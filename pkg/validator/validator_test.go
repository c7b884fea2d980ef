package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(credentials{Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(credentials{Email: "not-an-email"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)

	fields := map[string]string{}
	for _, f := range failures {
		fields[f.Field] = f.Tag
	}
	require.Equal(t, "email", fields["email"])
	require.Equal(t, "required", fields["password"])
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidateStruct(credentials{})
	require.Contains(t, err.Error(), "email failed on required")
}
