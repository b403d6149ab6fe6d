package security

import (
	"strings"
	"testing"
)

func TestDefaultPasswordValidator(t *testing.T) {
	validator := DefaultPasswordValidator()

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "strong password", password: "kV9#mPls2&xQz7!b", wantErr: false},
		{name: "too short", password: "aB1!x", wantErr: true},
		{name: "too long", password: strings.Repeat("a", 129), wantErr: true},
		{name: "common word", password: "password", wantErr: true},
		{name: "keyboard walk", password: "qwertyui", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(tc.password)
			if tc.wantErr && err == nil {
				t.Fatalf("Validate(%q) = nil, want error", tc.password)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate(%q) error = %v", tc.password, err)
			}
		})
	}
}

func TestPasswordValidatorCustomRules(t *testing.T) {
	called := false
	validator := NewPasswordValidator(PasswordRuleFunc(func(string) error {
		called = true
		return nil
	}))

	if err := validator.Validate("anything"); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !called {
		t.Fatal("custom rule was not invoked")
	}
}
