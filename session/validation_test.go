package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DinhTQSE/schoolmed-client/authapi"
	"github.com/DinhTQSE/schoolmed-client/session"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := session.RegisterRequest{
		Username: "bob",
		Email:    "bob@school.edu",
		Password: "Password1",
		FullName: "Bob Tran",
		Role:     "ROLE_STUDENT",
	}

	tests := []struct {
		name    string
		mutate  func(*session.RegisterRequest)
		wantErr bool
	}{
		{"valid", func(r *session.RegisterRequest) {}, false},
		{"valid with phone", func(r *session.RegisterRequest) { r.Phone = "0912345678" }, false},
		{"missing username", func(r *session.RegisterRequest) { r.Username = "" }, true},
		{"short username", func(r *session.RegisterRequest) { r.Username = "ab" }, true},
		{"bad email", func(r *session.RegisterRequest) { r.Email = "not-an-email" }, true},
		{"weak password", func(r *session.RegisterRequest) { r.Password = "password" }, true},
		{"missing full name", func(r *session.RegisterRequest) { r.FullName = "" }, true},
		{"garbage phone", func(r *session.RegisterRequest) { r.Phone = "abc" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := req.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRegisterNormalizesPhone(t *testing.T) {
	f := setupTestFixture(t)

	var sent authapi.SignUpRequest
	f.api.signUpFn = func(ctx context.Context, req authapi.SignUpRequest) (*authapi.SignUpResponse, error) {
		sent = req
		return &authapi.SignUpResponse{Message: "ok"}, nil
	}

	result := f.manager.Register(context.Background(), session.RegisterRequest{
		Username: "bob",
		Email:    "bob@school.edu",
		Password: "Password1",
		FullName: "Bob Tran",
		Phone:    "0912 345 678",
	})

	require.True(t, result.Success)
	require.Equal(t, "+84912345678", sent.Phone)
}
