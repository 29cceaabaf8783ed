package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrganizationEmail(t *testing.T) {
	v := New("epn.edu.ec")

	tests := []struct {
		email string
		want  bool
	}{
		{"ana.perez@epn.edu.ec", true},
		{"ana.perez2@epn.edu.ec", true},
		{"Ana.Perez@epn.edu.ec", true},
		{"ana.perez@gmail.com", false},
		{"anaperez@epn.edu.ec", false},
		{"ana.perez.extra@epn.edu.ec", false},
		{"1ana.perez@epn.edu.ec", false},
		{"ana.2perez@epn.edu.ec", false},
		{"ana.perez@epnXedu.ec", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.OrganizationEmail(tt.email), "email %q", tt.email)
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Str0ng", true},
		{"Strong!", true},
		{"Str0ngpass", true},
		{"Sh0r", false},
		{"str0ngpass", false},
		{"STR0NGPASS", false},
		{"Strongpass", false},
		{"Str0ng" + strings.Repeat("a", 50), false},
		// Length counts runes, not bytes.
		{"Aa1áé", false},
		{"Aa1áéz", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrongPassword(tt.password), "password %q", tt.password)
	}
}
