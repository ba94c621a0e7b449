package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

const itemColumns = `i.id, i.title, i.description, i.image, i.status, i.created_by, i.reporter_email, i.created_at,
        u.id, u.name, u.email, u.role`

const itemFrom = ` FROM items i LEFT JOIN users u ON u.id = i.created_by`

// CreateItem creates a new item report.
func (s *SQLStore) CreateItem(ctx context.Context, item *model.Item) error {
	id := uuid.NewString()
	now := time.Now().UTC()
	if item.Status == "" {
		item.Status = model.ItemStatusPending
	}

	var image sql.NullString
	if item.Image != "" {
		image = sql.NullString{String: item.Image, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, title, description, image, status, created_by, reporter_email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, item.Title, item.Description, image, string(item.Status), item.CreatedByID, item.ReporterEmail, toUnix(now),
	)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	return nil
}

// GetItem returns an item by ID with its creator resolved.
func (s *SQLStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id)
	item, err := scanItem(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items newest first, optionally filtered by status.
func (s *SQLStore) ListItems(ctx context.Context, status model.ItemStatus) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	const order = ` ORDER BY i.created_at DESC, i.rowid DESC`
	if status != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+itemColumns+itemFrom+` WHERE i.status = ?`+order, string(status),
		)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+itemColumns+itemFrom+order)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetItemStatus changes the review status of an item.
func (s *SQLStore) SetItemStatus(ctx context.Context, id string, status model.ItemStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ?`, string(status), id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return requireAffected(result)
}

// DeleteItem permanently removes an item. Its comments are left in place.
func (s *SQLStore) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var item model.Item
	var image sql.NullString
	var status string
	var createdAt int64
	var userID, userName, userEmail, userRole sql.NullString

	err := row.Scan(&item.ID, &item.Title, &item.Description, &image, &status, &item.CreatedByID,
		&item.ReporterEmail, &createdAt, &userID, &userName, &userEmail, &userRole)
	if err != nil {
		return nil, err
	}

	item.Image = image.String
	item.Status = model.ItemStatus(status)
	item.CreatedAt = fromUnix(createdAt)
	if userID.Valid {
		item.CreatedBy = &model.UserSummary{
			ID:    userID.String,
			Name:  userName.String,
			Email: userEmail.String,
			Role:  model.Role(userRole.String),
		}
	}
	return &item, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
