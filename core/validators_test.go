package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)
	return validate, translator
}

type testForm struct {
	Name   string `form:"name" validate:"required"`
	Amount string `json:"amount" validate:"omitempty,digits"`
	Date   string `validate:"omitempty,datetime=2006-01-02"`
	Hidden string `form:"-" validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	validate, translator := newValidator()

	tests := []struct {
		name    string
		form    testForm
		texts   map[string]string
		wantErr map[string]string
	}{
		{name: "valid", form: testForm{Name: "a", Amount: "120", Date: "2024-01-10"}},
		{
			name:    "default texts",
			form:    testForm{Amount: "-1", Date: "10/01/2024"},
			wantErr: map[string]string{"name": "this field is required", "amount": "Must be a number", "Date": "must be a date (YYYY-MM-DD)"},
		},
		{
			name:    "custom text",
			form:    testForm{Amount: "1.5"},
			texts:   map[string]string{"name.required": "Name is required"},
			wantErr: map[string]string{"name": "Name is required", "amount": "Must be a number"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(validate, translator, tt.form, tt.texts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			vErr, ok := AsValidationError(err)
			require.True(t, ok, "want a *ValidationError, got %v", err)
			assert.Equal(t, tt.wantErr, vErr.FieldMap())
		})
	}
}

func Test_digitsValidation(t *testing.T) {
	validate, _ := newValidator()
	for _, s := range []string{"0", "42", "007"} {
		assert.NoError(t, validate.Var(s, "digits"), s)
	}
	for _, s := range []string{"", "-1", "1.5", "1e3", " 1"} {
		assert.Error(t, validate.Var(s, "digits"), s)
	}
}
