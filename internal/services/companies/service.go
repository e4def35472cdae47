// Package companies wraps the company routes of the resource API.
package companies

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

// Params is a partial company payload for create and update calls.
type Params struct {
	Name    *string `json:"name,omitempty"`
	LegalID *string `json:"legal_id,omitempty"`
	Country *string `json:"country,omitempty"`
	Website *string `json:"website,omitempty"`
	Sector  *string `json:"sector,omitempty"`
	Size    *string `json:"size,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func (s *Service) List(ctx context.Context, params url.Values) (domain.Page[domain.Company], error) {
	var page domain.Page[domain.Company]
	err := s.client.Get(ctx, "/companies/"+api.QueryString(params), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Company, error) {
	company := new(domain.Company)
	if err := s.client.Get(ctx, fmt.Sprintf("/companies/%d/", id), company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*domain.Company, error) {
	company := new(domain.Company)
	if err := s.client.Post(ctx, "/companies/", params, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) Update(ctx context.Context, id int, params Params) (*domain.Company, error) {
	company := new(domain.Company)
	if err := s.client.Patch(ctx, fmt.Sprintf("/companies/%d/", id), params, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/companies/%d/", id))
}
