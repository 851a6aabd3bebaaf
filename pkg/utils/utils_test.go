package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		valid bool
	}{
		{"jane@example.com", true},
		{"jane.doe+club@mail.example.org", true},
		{"", false},
		{"jane", false},
		{"jane@localhost", false},
		{"Jane <jane@example.com>", false},
		{"jane@@example.com", false},
	}

	for _, c := range cases {
		err := ValidateEmail(c.email)
		if c.valid && err != nil {
			t.Errorf("ValidateEmail(%q) => %v, want nil", c.email, err)
		}
		if !c.valid && err == nil {
			t.Errorf("ValidateEmail(%q) => nil, want error", c.email)
		}
	}
}

func TestValidateSlug(t *testing.T) {
	cases := []struct {
		slug  string
		valid bool
	}{
		{"gold", true},
		{"family-plan", true},
		{"tier_2", true},
		{"", false},
		{"gold plan", false},
		{"gold/plan", false},
	}

	for _, c := range cases {
		err := ValidateSlug(c.slug)
		if c.valid && err != nil {
			t.Errorf("ValidateSlug(%q) => %v, want nil", c.slug, err)
		}
		if !c.valid && err == nil {
			t.Errorf("ValidateSlug(%q) => nil, want error", c.slug)
		}
	}
}
