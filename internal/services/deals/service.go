// Package deals wraps the deal pipeline routes of the resource API.
package deals

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

// Params is a partial deal payload for create and update calls. Nil fields
// are omitted from the request.
type Params struct {
	Title          *string  `json:"title,omitempty"`
	Company        *int     `json:"company,omitempty"`
	Owner          *int     `json:"owner,omitempty"`
	Stage          *int     `json:"stage,omitempty"`
	AmountEstimate *float64 `json:"amount_estimate,omitempty"`
	Probability    *int     `json:"probability,omitempty"`
	NextActionAt   *string  `json:"next_action_at,omitempty"`
	Description    *string  `json:"description,omitempty"`
}

type moveStageRequest struct {
	StageID           int  `json:"stage_id"`
	UpdateProbability bool `json:"update_probability"`
}

func (s *Service) List(ctx context.Context, params url.Values) (domain.Page[domain.Deal], error) {
	var page domain.Page[domain.Deal]
	err := s.client.Get(ctx, "/deals/"+api.QueryString(params), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Deal, error) {
	deal := new(domain.Deal)
	if err := s.client.Get(ctx, fmt.Sprintf("/deals/%d/", id), deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*domain.Deal, error) {
	deal := new(domain.Deal)
	if err := s.client.Post(ctx, "/deals/", params, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *Service) Update(ctx context.Context, id int, params Params) (*domain.Deal, error) {
	deal := new(domain.Deal)
	if err := s.client.Patch(ctx, fmt.Sprintf("/deals/%d/", id), params, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/deals/%d/", id))
}

// Kanban returns the board snapshot: deals grouped by pipeline stage, each
// column holding its ordered deal list and count.
func (s *Service) Kanban(ctx context.Context) ([]domain.KanbanColumn, error) {
	var columns []domain.KanbanColumn
	if err := s.client.Get(ctx, "/deals/kanban/", &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

// MoveStage transitions a deal to another pipeline stage. When
// updateProbability is set the backend resets the deal's probability to the
// stage default.
func (s *Service) MoveStage(ctx context.Context, id, stageID int, updateProbability bool) (*domain.Deal, error) {
	body := moveStageRequest{StageID: stageID, UpdateProbability: updateProbability}

	deal := new(domain.Deal)
	if err := s.client.Patch(ctx, fmt.Sprintf("/deals/%d/move_stage/", id), body, deal); err != nil {
		return nil, err
	}
	return deal, nil
}
