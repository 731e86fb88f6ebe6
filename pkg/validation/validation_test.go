package validation_test

import (
	"testing"

	"inys-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,valid_name,no_emoji"`
	Phone string `validate:"omitempty,valid_phone"`
	Birth string `validate:"omitempty,datetime=2006-01-02"`
}

func TestCustomTags(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name    string
		in      sample
		wantErr bool
	}{
		{"valid", sample{Name: "Anna Maria O'Neil", Phone: "+628123456789", Birth: "2001-04-30"}, false},
		{"accented name", sample{Name: "José Müller-Łukasz"}, false},
		{"digits in name", sample{Name: "R2D2"}, true},
		{"emoji in name", sample{Name: "Jane 😀"}, true},
		{"short phone", sample{Name: "Jane", Phone: "12345"}, true},
		{"bad birth", sample{Name: "Jane", Birth: "30-04-2001"}, true},
		{"missing name", sample{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	v := validation.New()
	err := v.Struct(sample{Phone: "abc"})
	require.Error(t, err)

	msg := validation.Message(err)
	assert.Contains(t, msg, "Name is required")
	assert.Contains(t, msg, "Phone number is not a valid phone number")
}
