package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdentityKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  ALICE@x.COM ", "alice@x.com"},
		{"Alice@X.com", "alice@x.com"},
		{"Straße@X.com", "straße@x.com"},
		{"strasse@x.com", "strasse@x.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeIdentityKey(tt.raw), tt.raw)
	}

	assert.NotEqual(t, NormalizeIdentityKey("straße@x.com"), NormalizeIdentityKey("strasse@x.com"))
}
