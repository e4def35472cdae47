// Package contacts wraps the contact routes of the resource API.
package contacts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ma-crm/crm-go/internal/api"
	"github.com/ma-crm/crm-go/internal/domain"
)

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Params is a partial contact payload for create and update calls.
type Params struct {
	Company     *int    `json:"company,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Role        *string `json:"role,omitempty"`
	Seniority   *string `json:"seniority,omitempty"`
	LinkedinURL *string `json:"linkedin_url,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (s *Service) List(ctx context.Context, params url.Values) (domain.Page[domain.Contact], error) {
	var page domain.Page[domain.Contact]
	err := s.client.Get(ctx, "/contacts/"+api.QueryString(params), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Contact, error) {
	contact := new(domain.Contact)
	if err := s.client.Get(ctx, fmt.Sprintf("/contacts/%d/", id), contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*domain.Contact, error) {
	contact := new(domain.Contact)
	if err := s.client.Post(ctx, "/contacts/", params, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) Update(ctx context.Context, id int, params Params) (*domain.Contact, error) {
	contact := new(domain.Contact)
	if err := s.client.Patch(ctx, fmt.Sprintf("/contacts/%d/", id), params, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/contacts/%d/", id))
}
