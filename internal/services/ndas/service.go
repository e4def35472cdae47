// Package ndas wraps the NDA routes of the resource API.
package ndas

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

// Params is a partial NDA payload for create and update calls.
type Params struct {
	Deal         *int    `json:"deal,omitempty"`
	Counterparty *string `json:"counterparty,omitempty"`
	Status       *string `json:"status,omitempty"`
	SignedAt     *string `json:"signed_at,omitempty"`
	File         *int    `json:"file,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (s *Service) List(ctx context.Context, params url.Values) (domain.Page[domain.NDA], error) {
	var page domain.Page[domain.NDA]
	err := s.client.Get(ctx, "/ndas/"+api.QueryString(params), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.NDA, error) {
	nda := new(domain.NDA)
	if err := s.client.Get(ctx, fmt.Sprintf("/ndas/%d/", id), nda); err != nil {
		return nil, err
	}
	return nda, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*domain.NDA, error) {
	nda := new(domain.NDA)
	if err := s.client.Post(ctx, "/ndas/", params, nda); err != nil {
		return nil, err
	}
	return nda, nil
}

func (s *Service) Update(ctx context.Context, id int, params Params) (*domain.NDA, error) {
	nda := new(domain.NDA)
	if err := s.client.Patch(ctx, fmt.Sprintf("/ndas/%d/", id), params, nda); err != nil {
		return nil, err
	}
	return nda, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/ndas/%d/", id))
}
