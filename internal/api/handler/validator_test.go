package handler

import "testing"

func TestStrongPassword(t *testing.T) {
	type req struct {
		Password string `validate:"strongpassword"`
	}
	v := NewValidator()

	cases := map[string]bool{
		"Str0ng!pass":  true,
		"Aa1@aaaa":     true,
		"Aa1@aaa":      false, // too short
		"str0ng!pass":  false, // no upper
		"STR0NG!PASS":  false, // no lower
		"Strong!pass":  false, // no digit
		"Str0ngpass":   false, // no symbol
		"Str0ng pass!": false,
		"Str0ng#pass":  false, // symbol outside the allowed set
		"Str0ng!päss":  false,
	}
	for pw, want := range cases {
		err := v.Validate(&req{Password: pw})
		if got := err == nil; got != want {
			t.Errorf("password %q: valid=%v, want %v (%v)", pw, got, want, err)
		}
	}
}

func TestValidator_Messages(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		ID    string `validate:"mongodb"`
	}
	err := NewValidator().Validate(&req{Email: "x", ID: "123"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	want := "email must be a valid email; id must be a valid id"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
