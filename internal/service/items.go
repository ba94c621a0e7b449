package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/upload"
)

// ItemService handles item reports and their review.
type ItemService struct {
	store         store.Store
	uploader      upload.Uploader
	maxUploadSize int64
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewItemService creates an ItemService. Images larger than maxUploadSize
// bytes are rejected; zero selects imaging.MaxUploadSize.
func NewItemService(st store.Store, up upload.Uploader, maxUploadSize int64, m *metrics.Metrics, logger zerolog.Logger) *ItemService {
	if maxUploadSize <= 0 {
		maxUploadSize = imaging.MaxUploadSize
	}
	return &ItemService{
		store:         st,
		uploader:      up,
		maxUploadSize: maxUploadSize,
		metrics:       m,
		logger:        logger.With().Str("service", "items").Logger(),
	}
}

// NewItem contains the fields of a new report. Image is nil when no photo
// was attached.
type NewItem struct {
	Title       string
	Description string
	Image       io.Reader
}

// ListAll returns every item, newest first.
func (s *ItemService) ListAll(ctx context.Context) ([]model.Item, error) {
	return s.list(ctx, "")
}

// ListApproved returns approved items, newest first.
func (s *ItemService) ListApproved(ctx context.Context) ([]model.Item, error) {
	return s.list(ctx, model.ItemStatusApproved)
}

func (s *ItemService) list(ctx context.Context, status model.ItemStatus) ([]model.Item, error) {
	items, err := s.store.ListItems(ctx, status)
	if err != nil {
		s.logger.Error().Err(err).Str("status", string(status)).Msg("failed to list items")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return items, nil
}

// Create stores the attached image, if any, and then records a pending item
// owned by the caller.
func (s *ItemService) Create(ctx context.Context, caller *auth.Claims, in NewItem) (*model.Item, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if !caller.Role.CanReport() {
		return nil, fmt.Errorf("%w: role %q cannot report items", ErrForbidden, caller.Role)
	}

	if _, err := callerUser(ctx, s.store, caller, s.logger); err != nil {
		return nil, err
	}

	title := model.NormalizeText(in.Title)
	description := model.NormalizeText(in.Description)
	if err := model.ValidateItem(title, description); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var image string
	if in.Image != nil {
		ref, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		image = ref
	}

	reporter := caller.Email
	if reporter == "" {
		reporter = model.UnknownReporterEmail
	}

	item := &model.Item{
		Title:         title,
		Description:   description,
		Image:         image,
		Status:        model.ItemStatusPending,
		CreatedByID:   caller.UserID,
		ReporterEmail: reporter,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		// The uploaded image, if any, stays behind.
		s.logger.Error().Err(err).Str("image", image).Msg("failed to create item")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.metrics.Event(metrics.EventItemCreated)
	s.logger.Info().
		Str("item_id", item.ID).
		Str("user_id", caller.UserID).
		Bool("has_image", image != "").
		Msg("item reported")

	// Reload so the creator is populated.
	return s.get(ctx, item.ID)
}

func (s *ItemService) storeImage(ctx context.Context, r io.Reader) (string, error) {
	result, err := imaging.Process(r, s.maxUploadSize)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) ||
			errors.Is(err, imaging.ErrTooLarge) ||
			errors.Is(err, imaging.ErrTooManyPixels) {
			s.metrics.Event(metrics.EventImageRejected)
			return "", fmt.Errorf("%w: %v", ErrStorage, err)
		}
		s.logger.Error().Err(err).Msg("failed to process image")
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	ref, err := s.uploader.Save(ctx, result.Data, result.MIME, result.Ext)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to store image")
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.metrics.Event(metrics.EventImageStored)
	return ref, nil
}

// SetStatus changes the review status of an item. An empty status approves.
func (s *ItemService) SetStatus(ctx context.Context, caller *auth.Claims, id, status string) (*model.Item, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	next := model.ItemStatusApproved
	if status != "" {
		next = model.ItemStatus(status)
		if !next.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
	}

	if err := s.store.SetItemStatus(ctx, id, next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: item", ErrNotFound)
		}
		s.logger.Error().Err(err).Str("item_id", id).Msg("failed to update item status")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if next == model.ItemStatusApproved {
		s.metrics.Event(metrics.EventItemApproved)
	} else {
		s.metrics.Event(metrics.EventItemReverted)
	}
	s.logger.Info().
		Str("item_id", id).
		Str("status", string(next)).
		Str("admin_id", caller.UserID).
		Msg("item status changed")

	return s.get(ctx, id)
}

// Delete permanently removes an item. Its comments are left in place.
func (s *ItemService) Delete(ctx context.Context, caller *auth.Claims, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: item", ErrNotFound)
		}
		s.logger.Error().Err(err).Str("item_id", id).Msg("failed to delete item")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.metrics.Event(metrics.EventItemDeleted)
	s.logger.Info().Str("item_id", id).Str("admin_id", caller.UserID).Msg("item deleted")
	return nil
}

func (s *ItemService) get(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", id).Msg("failed to load item")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return item, nil
}
