package sl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/todo-auth/internal/lib/sl"
)

func TestErr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "something went wrong", attr.Value.String())

	assert.NotPanics(t, func() {
		assert.Equal(t, "", sl.Err(nil).Value.String())
	})
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "alice@example.com", want: "a***@example.com"},
		{in: "a@b.c", want: "a***@b.c"},
		{in: "no-at-sign", want: "***"},
		{in: "@example.com", want: "***"},
		{in: "", want: "***"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			attr := sl.Email(tt.in)
			assert.Equal(t, "email", attr.Key)
			assert.Equal(t, tt.want, attr.Value.String())
		})
	}
}
