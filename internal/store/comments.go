package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

const commentColumns = `c.id, c.item_id, c.user_id, c.content, c.parent_comment_id, c.created_at,
        u.id, u.name, u.email, u.role`

const commentFrom = ` FROM comments c LEFT JOIN users u ON u.id = c.user_id`

// CreateComment creates a new comment or reply.
func (s *SQLStore) CreateComment(ctx context.Context, c *model.Comment) error {
	id := uuid.NewString()
	now := time.Now().UTC()

	var parent sql.NullString
	if c.ParentCommentID != nil {
		parent = sql.NullString{String: *c.ParentCommentID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, item_id, user_id, content, parent_comment_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, c.ItemID, c.UserID, c.Content, parent, toUnix(now),
	)
	if err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}

	c.ID = id
	c.CreatedAt = now
	return nil
}

// GetComment returns a comment by ID with its author resolved.
func (s *SQLStore) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+commentFrom+` WHERE c.id = ?`, id)
	c, err := scanComment(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment: %w", err)
	}
	return c, nil
}

// ListComments returns all comments of an item in creation order.
func (s *SQLStore) ListComments(ctx context.Context, itemID string) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+commentFrom+`
		 WHERE c.item_id = ?
		 ORDER BY c.created_at ASC, c.rowid ASC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func scanComment(row rowScanner) (*model.Comment, error) {
	var c model.Comment
	var parent sql.NullString
	var createdAt int64
	var userID, userName, userEmail, userRole sql.NullString

	err := row.Scan(&c.ID, &c.ItemID, &c.UserID, &c.Content, &parent, &createdAt,
		&userID, &userName, &userEmail, &userRole)
	if err != nil {
		return nil, err
	}

	if parent.Valid {
		p := parent.String
		c.ParentCommentID = &p
	}
	c.CreatedAt = fromUnix(createdAt)
	if userID.Valid {
		c.User = &model.UserSummary{
			ID:    userID.String,
			Name:  userName.String,
			Email: userEmail.String,
			Role:  model.Role(userRole.String),
		}
	}
	return &c, nil
}
