// Package documents wraps the document routes of the resource API,
// including the multipart upload.
package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"

	"github.com/ma-crm/crm-go/internal/api"
	"github.com/ma-crm/crm-go/internal/domain"
)

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context, params url.Values) (domain.Page[domain.Document], error) {
	var page domain.Page[domain.Document]
	err := s.client.Get(ctx, "/documents/"+api.QueryString(params), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Document, error) {
	doc := new(domain.Document)
	if err := s.client.Get(ctx, fmt.Sprintf("/documents/%d/", id), doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Upload sends a file as a multipart form with an optional deal attachment
// (dealID 0 means unattached). The form's own content type is preserved so
// the multipart boundary reaches the server intact.
func (s *Service) Upload(ctx context.Context, filename string, file io.Reader, dealID int) (*domain.Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload payload: %w", err)
	}
	if dealID != 0 {
		if err := writer.WriteField("deal", strconv.Itoa(dealID)); err != nil {
			return nil, fmt.Errorf("failed to build multipart form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	doc := new(domain.Document)
	if err := s.client.Upload(ctx, "/documents/upload/", writer.FormDataContentType(), &buf, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/documents/%d/", id))
}
