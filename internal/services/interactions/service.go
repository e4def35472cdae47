// Package interactions wraps the interaction log routes of the resource API.
package interactions

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

// Params is a partial interaction payload for create and update calls.
type Params struct {
	Deal       *int    `json:"deal,omitempty"`
	Company    *int    `json:"company,omitempty"`
	Contact    *int    `json:"contact,omitempty"`
	Type       *string `json:"type,omitempty"`
	Subject    *string `json:"subject,omitempty"`
	Body       *string `json:"body,omitempty"`
	OccurredAt *string `json:"occurred_at,omitempty"`
}

func (s *Service) List(ctx context.Context, params url.Values) (domain.Page[domain.Interaction], error) {
	var page domain.Page[domain.Interaction]
	err := s.client.Get(ctx, "/interactions/"+api.QueryString(params), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Interaction, error) {
	interaction := new(domain.Interaction)
	if err := s.client.Get(ctx, fmt.Sprintf("/interactions/%d/", id), interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*domain.Interaction, error) {
	interaction := new(domain.Interaction)
	if err := s.client.Post(ctx, "/interactions/", params, interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

func (s *Service) Update(ctx context.Context, id int, params Params) (*domain.Interaction, error) {
	interaction := new(domain.Interaction)
	if err := s.client.Patch(ctx, fmt.Sprintf("/interactions/%d/", id), params, interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/interactions/%d/", id))
}
