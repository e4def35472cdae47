// Package tasks wraps the task routes of the resource API.
package tasks

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

// Params is a partial task payload for create and update calls.
type Params struct {
	Deal        *int    `json:"deal,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueAt       *string `json:"due_at,omitempty"`
	Status      *string `json:"status,omitempty"`
	Assignee    *int    `json:"assignee,omitempty"`
}

func (s *Service) List(ctx context.Context, params url.Values) (domain.Page[domain.Task], error) {
	var page domain.Page[domain.Task]
	err := s.client.Get(ctx, "/tasks/"+api.QueryString(params), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Task, error) {
	task := new(domain.Task)
	if err := s.client.Get(ctx, fmt.Sprintf("/tasks/%d/", id), task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Create(ctx context.Context, params Params) (*domain.Task, error) {
	task := new(domain.Task)
	if err := s.client.Post(ctx, "/tasks/", params, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Update(ctx context.Context, id int, params Params) (*domain.Task, error) {
	task := new(domain.Task)
	if err := s.client.Patch(ctx, fmt.Sprintf("/tasks/%d/", id), params, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/tasks/%d/", id))
}

// MyTasks lists the tasks assigned to the authenticated user.
func (s *Service) MyTasks(ctx context.Context) (domain.Page[domain.Task], error) {
	var page domain.Page[domain.Task]
	err := s.client.Get(ctx, "/tasks/my_tasks/", &page)
	return page, err
}
