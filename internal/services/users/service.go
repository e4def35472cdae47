// Package users wraps the user profile routes of the resource API.
package users

import (
	"context"

	"github.com/ma-crm/crm-go/internal/api"
	"github.com/ma-crm/crm-go/internal/domain"
)

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Me refetches the authenticated profile. Callers pass the result to the
// auth store's SetUser to pick up out-of-band profile changes.
func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	user := new(domain.User)
	if err := s.client.Get(ctx, "/users/me/", user); err != nil {
		return nil, err
	}
	return user, nil
}
