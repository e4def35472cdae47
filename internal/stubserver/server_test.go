package stubserver

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ma-crm/crm-go/internal/api"
	"github.com/ma-crm/crm-go/internal/auth"
	"github.com/ma-crm/crm-go/internal/services/deals"
	"github.com/ma-crm/crm-go/internal/services/documents"
	"github.com/ma-crm/crm-go/internal/services/tasks"
	"github.com/ma-crm/crm-go/pkg/httpext"
)

type clientStack struct {
	store  *auth.Store
	client *api.Client
}

func newStack(t *testing.T) (*httptest.Server, *clientStack) {
	t.Helper()

	server := httptest.NewServer(New(Config{}))
	t.Cleanup(server.Close)

	authService := auth.NewService(server.URL+"/auth", server.URL+"/api/v1", nil)
	store, err := auth.NewStore(authService, auth.NewMemoryStorage())
	require.NoError(t, err)

	return server, &clientStack{
		store:  store,
		client: api.NewClient(server.URL+"/api/v1", store, nil),
	}
}

func login(t *testing.T, stack *clientStack) {
	t.Helper()
	err := stack.store.Login(context.Background(), auth.Credentials{
		Email:    "demo@ma-crm.local",
		Password: "demo1234",
	})
	require.NoError(t, err)
}

func TestLoginFlow(t *testing.T) {
	t.Run("valid credentials establish a session", func(t *testing.T) {
		_, stack := newStack(t)
		login(t, stack)

		user := stack.store.User()
		require.NotNil(t, user)
		assert.Equal(t, "demo@ma-crm.local", user.Email)
		require.NotNil(t, stack.store.Tokens())
	})

	t.Run("wrong password is rejected with the backend detail", func(t *testing.T) {
		_, stack := newStack(t)
		err := stack.store.Login(context.Background(), auth.Credentials{
			Email:    "demo@ma-crm.local",
			Password: "nope",
		})
		require.Error(t, err)

		var apiErr *httpext.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "No active account found with the given credentials", apiErr.Message)
		assert.Nil(t, stack.store.User())
	})
}

func TestRefreshFlow(t *testing.T) {
	_, stack := newStack(t)
	login(t, stack)
	before := stack.store.Tokens()

	require.NoError(t, stack.store.Refresh(context.Background()))

	after := stack.store.Tokens()
	assert.NotEqual(t, before.Access, after.Access)
	assert.NotEqual(t, before.Refresh, after.Refresh, "the stub rotates refresh tokens")
	assert.Equal(t, "demo@ma-crm.local", stack.store.User().Email)
}

func TestUnauthenticatedRequests(t *testing.T) {
	_, stack := newStack(t)

	service := deals.NewService(stack.client)
	_, err := service.List(context.Background(), nil)
	require.Error(t, err)

	var apiErr *httpext.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Authentication credentials were not provided.", apiErr.Message)
}

func TestDealPipeline(t *testing.T) {
	_, stack := newStack(t)
	login(t, stack)
	service := deals.NewService(stack.client)
	ctx := context.Background()

	page, err := service.List(ctx, url.Values{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	deal := page.Results[0]
	assert.Equal(t, "Project Anvil", deal.Title)

	columns, err := service.Kanban(ctx)
	require.NoError(t, err)
	require.Len(t, columns, 4)
	assert.Equal(t, 1, columns[0].Count)
	assert.Equal(t, "Project Anvil", columns[0].Deals[0].Title)

	// Move the deal into the second column, adopting its default probability.
	target := columns[1].Stage
	moved, err := service.MoveStage(ctx, deal.ID, target.ID, true)
	require.NoError(t, err)
	assert.Equal(t, target.ID, moved.Stage)
	assert.Equal(t, target.Name, moved.StageName)
	assert.Equal(t, 40, moved.Probability)

	columns, err = service.Kanban(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, columns[0].Count)
	assert.Equal(t, 1, columns[1].Count)

	_, err = service.MoveStage(ctx, deal.ID, 9999, false)
	var apiErr *httpext.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, `{"error":"Stage not found"}`, strings.TrimSpace(apiErr.Message))
}

func TestDocumentUpload(t *testing.T) {
	_, stack := newStack(t)
	login(t, stack)
	service := documents.NewService(stack.client)
	ctx := context.Background()

	dealsPage, err := deals.NewService(stack.client).List(ctx, nil)
	require.NoError(t, err)
	dealID := dealsPage.Results[0].ID

	doc, err := service.Upload(ctx, "teaser.pdf", strings.NewReader("pdf-bytes"), dealID)
	require.NoError(t, err)
	assert.Equal(t, "teaser.pdf", doc.Filename)
	assert.Equal(t, dealID, doc.Deal)
	assert.Equal(t, int64(9), doc.Size)

	page, err := service.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
}

func TestMyTasks(t *testing.T) {
	_, stack := newStack(t)
	login(t, stack)

	page, err := tasks.NewService(stack.client).MyTasks(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Prepare teaser", page.Results[0].Title)
	assert.Equal(t, stack.store.User().ID, page.Results[0].Assignee)
}

func TestCompanyCRUD(t *testing.T) {
	_, stack := newStack(t)
	login(t, stack)
	ctx := context.Background()

	var created map[string]any
	err := stack.client.Post(ctx, "/companies/", map[string]any{
		"name": "Acme Holdings", "legal_id": "AC-1", "country": "FR",
		"sector": "services", "size": "small",
	}, &created)
	require.NoError(t, err)
	id := int(created["id"].(float64))

	var fetched map[string]any
	require.NoError(t, stack.client.Get(ctx, "/companies/"+itoa(id)+"/", &fetched))
	assert.Equal(t, "Acme Holdings", fetched["name"])

	var updated map[string]any
	require.NoError(t, stack.client.Patch(ctx, "/companies/"+itoa(id)+"/", map[string]any{"country": "BE"}, &updated))
	assert.Equal(t, "BE", updated["country"])

	require.NoError(t, stack.client.Delete(ctx, "/companies/"+itoa(id)+"/"))

	err = stack.client.Get(ctx, "/companies/"+itoa(id)+"/", &fetched)
	var apiErr *httpext.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
