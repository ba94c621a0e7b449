// Package store persists users, items and comments. Two backends implement
// Store: SQLStore (embedded SQLite) and MongoStore (MongoDB). Referential
// integrity between the three collections is kept by the callers.
package store

import (
	"context"
	"errors"

	"github.com/erazemk/najdeno/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist or its id is malformed.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that is already in use.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the persistence contract shared by the backends.
type Store interface {
	// CreateUser inserts u and fills its ID and CreatedAt.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	HasAdmin(ctx context.Context) (bool, error)

	// CreateItem inserts item and fills its ID and CreatedAt.
	CreateItem(ctx context.Context, item *model.Item) error
	// GetItem returns an item with its creator resolved.
	GetItem(ctx context.Context, id string) (*model.Item, error)
	// ListItems returns items newest first with creators resolved. An empty
	// status returns every item.
	ListItems(ctx context.Context, status model.ItemStatus) ([]model.Item, error)
	SetItemStatus(ctx context.Context, id string, status model.ItemStatus) error
	DeleteItem(ctx context.Context, id string) error

	// CreateComment inserts c and fills its ID and CreatedAt.
	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListComments returns the comments of an item oldest first with authors resolved.
	ListComments(ctx context.Context, itemID string) ([]model.Comment, error)

	// JWTSecret returns the persisted token signing key, creating it on first use.
	JWTSecret(ctx context.Context) (string, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
