package models

import "testing"

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "Secret1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"empty username", RegisterRequest{Username: "  ", Email: "a@b.com", Password: "Secret1"}},
		{"short username", RegisterRequest{Username: "ab", Email: "a@b.com", Password: "Secret1"}},
		{"bad email", RegisterRequest{Username: "alice", Email: "not-an-email", Password: "Secret1"}},
		{"short password", RegisterRequest{Username: "alice", Email: "a@b.com", Password: "Ab1"}},
		{"no capital", RegisterRequest{Username: "alice", Email: "a@b.com", Password: "secret1"}},
		{"no digit", RegisterRequest{Username: "alice", Email: "a@b.com", Password: "Secrets"}},
	}

	for _, tc := range cases {
		if err := tc.req.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
