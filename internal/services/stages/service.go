// Package stages wraps the pipeline stage routes of the resource API.
package stages

import (
	"context"
	"fmt"

	"github.com/ma-crm/crm-go/internal/api"
	"github.com/ma-crm/crm-go/internal/domain"
)

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Params is a partial stage payload for create and update calls.
type Params struct {
	Name               *string `json:"name,omitempty"`
	Order              *int    `json:"order,omitempty"`
	IsClosed           *bool   `json:"is_closed,omitempty"`
	IsWon              *bool   `json:"is_won,omitempty"`
	DefaultProbability *int    `json:"default_probability,omitempty"`
}

func (s *Service) List(ctx context.Context) (domain.Page[domain.Stage], error) {
	var page domain.Page[domain.Stage]
	err := s.client.Get(ctx, "/stages/", &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Stage, error) {
	stage := new(domain.Stage)
	if err := s.client.Get(ctx, fmt.Sprintf("/stages/%d/", id), stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*domain.Stage, error) {
	stage := new(domain.Stage)
	if err := s.client.Post(ctx, "/stages/", params, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *Service) Update(ctx context.Context, id int, params Params) (*domain.Stage, error) {
	stage := new(domain.Stage)
	if err := s.client.Patch(ctx, fmt.Sprintf("/stages/%d/", id), params, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/stages/%d/", id))
}
