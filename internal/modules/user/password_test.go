package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attrs    []string
		want     []string
	}{
		{name: "strong", password: "Str0ng-Passw0rd!", attrs: []string{"newbie", "newbie@example.com"}},
		{name: "too short", password: "x9!kQ", want: []string{"This password is too short. It must contain at least 8 characters."}},
		{name: "common", password: "Password", want: []string{"This password is too common."}},
		{name: "numeric", password: "90817263544", want: []string{"This password is entirely numeric."}},
		{
			name:     "similar to username",
			password: "alice_wonder1",
			attrs:    []string{"alice_wonder"},
			want:     []string{"The password is too similar to the user's details."},
		},
		{
			name:     "similar to email local part",
			password: "margaretha77",
			attrs:    []string{"margaretha@example.com"},
			want:     []string{"The password is too similar to the user's details."},
		},
		{
			name:     "several problems",
			password: "123456",
			want: []string{
				"This password is too short. It must contain at least 8 characters.",
				"This password is too common.",
				"This password is entirely numeric.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password, tt.attrs...))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
	assert.InDelta(t, 0.75, similarity("abcd", "abce"), 1e-9)
}
