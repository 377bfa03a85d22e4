package item

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/frelsi/frelsi-api/internal/pkg/id"
	"github.com/frelsi/frelsi-api/internal/pkg/validate"
)

// Store is the persistence the item service needs.
type Store interface {
	Put(ctx context.Context, i *domain.Item) error
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	ScanPublic(ctx context.Context) ([]domain.Item, error)
	ScanAll(ctx context.Context) ([]domain.Item, error)
	Update(ctx context.Context, itemID string, updates map[string]interface{}) error
	Delete(ctx context.Context, itemID string) error
	IncrementLikes(ctx context.Context, itemID string) (int, error)
}

// ImageStore holds drawing images uploaded as base64.
type ImageStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service interface {
	ListPublic(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	ListAll(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, itemID string, authenticated bool) (*domain.Item, error)
	Create(ctx context.Context, req domain.CreateItemRequest) (*domain.Item, error)
	Update(ctx context.Context, itemID string, req domain.UpdateItemRequest) (*domain.Item, error)
	TogglePublic(ctx context.Context, itemID string) (*domain.Item, error)
	Delete(ctx context.Context, itemID string) error
	Like(ctx context.Context, itemID string) (int, error)
}

type service struct {
	repo   Store
	images ImageStore // may be nil when object storage is not configured
}

func NewService(repo Store, images ImageStore) Service {
	return &service{repo: repo, images: images}
}

func (s *service) ListPublic(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	items, err := s.repo.ScanPublic(ctx)
	if err != nil {
		return nil, err
	}

	filtered := items[:0]
	q := strings.ToLower(filter.Query)
	for _, i := range items {
		if filter.Type != "" && i.Type != filter.Type {
			continue
		}
		if filter.Author != "" && i.Author != filter.Author {
			continue
		}
		if q != "" {
			searchable := strings.ToLower(i.Title + " " + i.Type + " " + i.Text + " " + i.BodyHTML)
			if !strings.Contains(searchable, q) {
				continue
			}
		}
		filtered = append(filtered, i)
	}
	sortNewestFirst(filtered)
	return filtered, nil
}

func (s *service) ListAll(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *service) Get(ctx context.Context, itemID string, authenticated bool) (*domain.Item, error) {
	i, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !i.IsPublic && !authenticated {
		return nil, fmt.Errorf("this item is private: %w", domain.ErrForbidden)
	}
	return i, nil
}

func (s *service) Create(ctx context.Context, req domain.CreateItemRequest) (*domain.Item, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	i := &domain.Item{
		ItemID:    id.New(),
		Type:      req.Type,
		Title:     req.Title,
		Author:    req.Author,
		IsPublic:  req.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch req.Type {
	case domain.TypeNotebook:
		i.BodyHTML = req.BodyHTML
	case domain.TypeIdea:
		i.Text = req.Text
	case domain.TypeDrawing:
		i.ImageURL = req.ImageURL
		if req.ImageBase64 != "" {
			if s.images == nil {
				return nil, fmt.Errorf("image storage not configured: %w", domain.ErrBadRequest)
			}
			url, err := s.images.UploadBase64(ctx, "items/"+i.ItemID+".png", req.ImageBase64)
			if err != nil {
				return nil, fmt.Errorf("store drawing image: %w", err)
			}
			i.ImageURL = url
		}
	}

	if err := s.repo.Put(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) Update(ctx context.Context, itemID string, req domain.UpdateItemRequest) (*domain.Item, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.BodyHTML != nil {
		updates["body_html"] = *req.BodyHTML
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}

	if err := s.repo.Update(ctx, itemID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, itemID)
}

func (s *service) TogglePublic(ctx context.Context, itemID string) (*domain.Item, error) {
	i, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, itemID, map[string]interface{}{"is_public": !i.IsPublic}); err != nil {
		return nil, err
	}
	i.IsPublic = !i.IsPublic
	return i, nil
}

// Delete removes an item and, for drawings, its stored image. A failed image
// cleanup does not fail the delete: the row is gone either way.
func (s *service) Delete(ctx context.Context, itemID string) error {
	i, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}
	if i.Type == domain.TypeDrawing && s.images != nil {
		if key, ok := objectKey(i.ImageURL); ok {
			if err := s.images.Delete(ctx, key); err != nil {
				slog.Warn("failed to delete drawing image", "item_id", itemID, "key", key, "err", err)
			}
		}
	}
	return nil
}

// objectKey extracts the object key from an s3://bucket/key URL. External
// image URLs are left alone.
func objectKey(imageURL string) (string, bool) {
	rest, ok := strings.CutPrefix(imageURL, "s3://")
	if !ok {
		return "", false
	}
	_, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func (s *service) Like(ctx context.Context, itemID string) (int, error) {
	return s.repo.IncrementLikes(ctx, itemID)
}

func sortNewestFirst(items []domain.Item) {
	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})
}
