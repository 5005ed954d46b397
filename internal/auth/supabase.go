package auth

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// SupabaseVerifier validates access tokens issued by Supabase Auth.
type SupabaseVerifier struct {
	client *supabase.Client
}

// NewSupabaseVerifier constructs a verifier backed by the project client.
func NewSupabaseVerifier(client *supabase.Client) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

func (v *SupabaseVerifier) Verify(_ context.Context, token string) (*Session, error) {
	user, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Session{UserID: user.ID.String(), Email: user.Email}, nil
}

func (v *SupabaseVerifier) Revoke(_ context.Context, token string) error {
	return v.client.Auth.WithToken(token).Logout()
}
