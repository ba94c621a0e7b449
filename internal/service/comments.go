package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// CommentService handles comments and replies on approved items.
type CommentService struct {
	store   store.Store
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(st store.Store, m *metrics.Metrics, logger zerolog.Logger) *CommentService {
	return &CommentService{
		store:   st,
		metrics: m,
		logger:  logger.With().Str("service", "comments").Logger(),
	}
}

// NewComment contains the fields of a comment. ParentCommentID is nil or
// empty for top-level comments.
type NewComment struct {
	ItemID          string
	Content         string
	ParentCommentID *string
}

// Create adds a comment to an approved item. A parent, when given, must be a
// comment on the same item.
func (s *CommentService) Create(ctx context.Context, caller *auth.Claims, in NewComment) (*model.Comment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	if in.ItemID == "" {
		return nil, fmt.Errorf("%w: itemId is required", ErrValidation)
	}
	if _, err := callerUser(ctx, s.store, caller, s.logger); err != nil {
		return nil, err
	}
	content := model.NormalizeText(in.Content)
	if err := model.ValidateComment(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	item, err := s.store.GetItem(ctx, in.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", in.ItemID).Msg("failed to load item")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if item.Status != model.ItemStatusApproved {
		return nil, fmt.Errorf("%w: item is not approved", ErrForbidden)
	}

	var parent *string
	if in.ParentCommentID != nil && *in.ParentCommentID != "" {
		if err := s.checkParent(ctx, item.ID, *in.ParentCommentID); err != nil {
			return nil, err
		}
		p := *in.ParentCommentID
		parent = &p
	}

	c := &model.Comment{
		ItemID:          item.ID,
		UserID:          caller.UserID,
		Content:         content,
		ParentCommentID: parent,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to create comment")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.metrics.Event(metrics.EventCommentCreated)
	s.logger.Info().
		Str("comment_id", c.ID).
		Str("item_id", item.ID).
		Str("user_id", caller.UserID).
		Bool("reply", parent != nil).
		Msg("comment created")

	created, err := s.store.GetComment(ctx, c.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("comment_id", c.ID).Msg("failed to reload comment")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return created, nil
}

func (s *CommentService) checkParent(ctx context.Context, itemID, parentID string) error {
	parent, err := s.store.GetComment(ctx, parentID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: parent comment does not exist", ErrValidation)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("comment_id", parentID).Msg("failed to load parent comment")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if parent.ItemID != itemID {
		return fmt.Errorf("%w: parent comment belongs to another item", ErrValidation)
	}
	return nil
}

// List returns the comments of an approved item oldest first. Replies are
// included in the flat list and reference their parent by id.
func (s *CommentService) List(ctx context.Context, caller *auth.Claims, itemID string) ([]model.Comment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if itemID == "" {
		return nil, fmt.Errorf("%w: itemId is required", ErrValidation)
	}

	item, err := s.store.GetItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID).Msg("failed to load item")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if item.Status != model.ItemStatusApproved {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}

	comments, err := s.store.ListComments(ctx, itemID)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID).Msg("failed to list comments")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return comments, nil
}
