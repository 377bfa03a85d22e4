package item

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, i *domain.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockStore) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	if i, _ := args.Get(0).(*domain.Item); i != nil {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ScanPublic(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if items, _ := args.Get(0).([]domain.Item); items != nil {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ScanAll(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if items, _ := args.Get(0).([]domain.Item); items != nil {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Update(ctx context.Context, itemID string, updates map[string]interface{}) error {
	return m.Called(ctx, itemID, updates).Error(0)
}
func (m *mockStore) Delete(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}
func (m *mockStore) IncrementLikes(ctx context.Context, itemID string) (int, error) {
	args := m.Called(ctx, itemID)
	return args.Int(0), args.Error(1)
}

type mockImages struct{ mock.Mock }

func (m *mockImages) UploadBase64(ctx context.Context, key, b64 string) (string, error) {
	args := m.Called(ctx, key, b64)
	return args.String(0), args.Error(1)
}

func (m *mockImages) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// --- Create ---

func TestCreate_InvalidType_ReturnsBadRequest(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Create(context.Background(), domain.CreateItemRequest{
		Type: "poem", Title: "t", Author: "amar",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_InvalidAuthor_ReturnsBadRequest(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Create(context.Background(), domain.CreateItemRequest{
		Type: domain.TypeIdea, Title: "t", Author: "someone",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_Idea_SetsTextOnly(t *testing.T) {
	repo := &mockStore{}
	var stored *domain.Item
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Item")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Item) }).Return(nil)

	svc := NewService(repo, nil)
	i, err := svc.Create(context.Background(), domain.CreateItemRequest{
		Type: domain.TypeIdea, Title: "Une idée", Author: "lakhdar",
		Text: "le texte", BodyHTML: "<p>ignored</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, "le texte", stored.Text)
	assert.Empty(t, stored.BodyHTML)
	assert.NotEmpty(t, i.ItemID)
	assert.False(t, i.IsPublic)
}

func TestCreate_Drawing_UploadsBase64Image(t *testing.T) {
	repo := &mockStore{}
	images := &mockImages{}
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	images.On("UploadBase64", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("items/") && key[:6] == "items/"
	}), "iVBORw0KGgo=").Return("s3://frelsi-drawings/items/x.png", nil)

	svc := NewService(repo, images)
	i, err := svc.Create(context.Background(), domain.CreateItemRequest{
		Type: domain.TypeDrawing, Title: "Dessin", Author: "amar",
		ImageBase64: "iVBORw0KGgo=",
	})

	require.NoError(t, err)
	assert.Equal(t, "s3://frelsi-drawings/items/x.png", i.ImageURL)
	images.AssertExpectations(t)
}

// --- Get ---

func TestGet_PrivateWithoutAuth_ReturnsForbidden(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "i1").Return(&domain.Item{ItemID: "i1", IsPublic: false}, nil)

	svc := NewService(repo, nil)
	_, err := svc.Get(context.Background(), "i1", false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestGet_PrivateWithAuth_Succeeds(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "i1").Return(&domain.Item{ItemID: "i1", IsPublic: false}, nil)

	svc := NewService(repo, nil)
	i, err := svc.Get(context.Background(), "i1", true)

	require.NoError(t, err)
	assert.Equal(t, "i1", i.ItemID)
}

// --- ListPublic ---

func TestListPublic_FiltersAndSortsNewestFirst(t *testing.T) {
	now := time.Now()
	repo := &mockStore{}
	repo.On("ScanPublic", mock.Anything).Return([]domain.Item{
		{ItemID: "old", Type: domain.TypeIdea, Author: "amar", Title: "vieux carnet", CreatedAt: now.Add(-2 * time.Hour)},
		{ItemID: "new", Type: domain.TypeIdea, Author: "amar", Title: "nouveau carnet", CreatedAt: now},
		{ItemID: "other", Type: domain.TypeDrawing, Author: "lakhdar", Title: "dessin", CreatedAt: now.Add(-time.Hour)},
	}, nil)

	svc := NewService(repo, nil)

	items, err := svc.ListPublic(context.Background(), domain.ItemFilter{Type: domain.TypeIdea})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].ItemID)
	assert.Equal(t, "old", items[1].ItemID)
}

func TestListPublic_SearchMatchesTitleCaseInsensitive(t *testing.T) {
	repo := &mockStore{}
	repo.On("ScanPublic", mock.Anything).Return([]domain.Item{
		{ItemID: "a", Title: "Carnet de Voyage"},
		{ItemID: "b", Title: "Autre chose"},
	}, nil)

	svc := NewService(repo, nil)
	items, err := svc.ListPublic(context.Background(), domain.ItemFilter{Query: "voyage"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ItemID)
}

// --- Update / TogglePublic / Like ---

func TestUpdate_NoFields_ReturnsBadRequest(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Update(context.Background(), "i1", domain.UpdateItemRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_OnlyProvidedFields(t *testing.T) {
	repo := &mockStore{}
	title := "Nouveau titre"
	repo.On("Update", mock.Anything, "i1", map[string]interface{}{"title": title}).Return(nil)
	repo.On("Get", mock.Anything, "i1").Return(&domain.Item{ItemID: "i1", Title: title}, nil)

	svc := NewService(repo, nil)
	i, err := svc.Update(context.Background(), "i1", domain.UpdateItemRequest{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, title, i.Title)
	repo.AssertExpectations(t)
}

func TestTogglePublic_Flips(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "i1").Return(&domain.Item{ItemID: "i1", IsPublic: false}, nil)
	repo.On("Update", mock.Anything, "i1", map[string]interface{}{"is_public": true}).Return(nil)

	svc := NewService(repo, nil)
	i, err := svc.TogglePublic(context.Background(), "i1")

	require.NoError(t, err)
	assert.True(t, i.IsPublic)
	repo.AssertExpectations(t)
}

func TestLike_ReturnsNewCount(t *testing.T) {
	repo := &mockStore{}
	repo.On("IncrementLikes", mock.Anything, "i1").Return(4, nil)

	svc := NewService(repo, nil)
	likes, err := svc.Like(context.Background(), "i1")

	require.NoError(t, err)
	assert.Equal(t, 4, likes)
}

func TestDelete_Drawing_RemovesStoredImage(t *testing.T) {
	repo := &mockStore{}
	images := &mockImages{}
	repo.On("Get", mock.Anything, "d1").Return(&domain.Item{
		ItemID: "d1", Type: domain.TypeDrawing,
		ImageURL: "s3://frelsi-drawings/items/d1.png",
	}, nil)
	repo.On("Delete", mock.Anything, "d1").Return(nil)
	images.On("Delete", mock.Anything, "items/d1.png").Return(nil)

	svc := NewService(repo, images)
	require.NoError(t, svc.Delete(context.Background(), "d1"))
	images.AssertExpectations(t)
}

func TestDelete_ExternalImageURL_LeftAlone(t *testing.T) {
	repo := &mockStore{}
	images := &mockImages{}
	repo.On("Get", mock.Anything, "d1").Return(&domain.Item{
		ItemID: "d1", Type: domain.TypeDrawing,
		ImageURL: "https://example.com/a.png",
	}, nil)
	repo.On("Delete", mock.Anything, "d1").Return(nil)

	svc := NewService(repo, images)
	require.NoError(t, svc.Delete(context.Background(), "d1"))
	images.AssertNotCalled(t, "Delete")
}

func TestDelete_ImageCleanupFailure_DoesNotFailDelete(t *testing.T) {
	repo := &mockStore{}
	images := &mockImages{}
	repo.On("Get", mock.Anything, "d1").Return(&domain.Item{
		ItemID: "d1", Type: domain.TypeDrawing,
		ImageURL: "s3://frelsi-drawings/items/d1.png",
	}, nil)
	repo.On("Delete", mock.Anything, "d1").Return(nil)
	images.On("Delete", mock.Anything, mock.Anything).Return(errors.New("s3 down"))

	svc := NewService(repo, images)
	assert.NoError(t, svc.Delete(context.Background(), "d1"))
}

func TestLike_UnknownItem_ReturnsNotFound(t *testing.T) {
	repo := &mockStore{}
	repo.On("IncrementLikes", mock.Anything, "missing").Return(0, domain.ErrNotFound)

	svc := NewService(repo, nil)
	_, err := svc.Like(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
