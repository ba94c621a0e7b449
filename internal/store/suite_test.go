package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/model"
)

// runStoreSuite exercises the Store contract against a backend. newStore must
// return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, newStore(t)) })
	t.Run("HasAdmin", func(t *testing.T) { testHasAdmin(t, newStore(t)) })
	t.Run("Items", func(t *testing.T) { testItems(t, newStore(t)) })
	t.Run("ListItemsByStatus", func(t *testing.T) { testListItemsByStatus(t, newStore(t)) })
	t.Run("DeleteItem", func(t *testing.T) { testDeleteItem(t, newStore(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("JWTSecret", func(t *testing.T) { testJWTSecret(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

func createUser(t *testing.T, s Store, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "User " + email, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createItem(t *testing.T, s Store, owner *model.User, title string) *model.Item {
	t.Helper()
	item := &model.Item{
		Title:         title,
		Description:   "description of " + title,
		CreatedByID:   owner.ID,
		ReporterEmail: owner.Email,
	}
	require.NoError(t, s.CreateItem(context.Background(), item))
	return item
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()

	user := createUser(t, s, "alice@x.edu", model.RoleStudent)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.edu", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, model.RoleStudent, got.Role)

	byEmail, err := s.GetUserByEmail(ctx, "alice@x.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	// Emails are matched as stored.
	_, err = s.GetUserByEmail(ctx, "ALICE@x.edu")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUser(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testDuplicateEmail(t *testing.T, s Store) {
	createUser(t, s, "bob@x.edu", model.RoleStudent)

	err := s.CreateUser(context.Background(), &model.User{Name: "Bob 2", Email: "bob@x.edu", PasswordHash: "h", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func testHasAdmin(t *testing.T, s Store) {
	ctx := context.Background()

	createUser(t, s, "student@x.edu", model.RoleStudent)
	has, err := s.HasAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	createUser(t, s, "admin@x.edu", model.RoleAdmin)
	has, err = s.HasAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func testItems(t *testing.T, s Store) {
	ctx := context.Background()
	owner := createUser(t, s, "carol@x.edu", model.RoleStudent)

	item := createItem(t, s, owner, "Lost Wallet")
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, model.ItemStatusPending, item.Status)

	got, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lost Wallet", got.Title)
	assert.Equal(t, model.ItemStatusPending, got.Status)
	assert.Equal(t, "carol@x.edu", got.ReporterEmail)
	assert.Empty(t, got.Image)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, owner.ID, got.CreatedBy.ID)
	assert.Equal(t, "carol@x.edu", got.CreatedBy.Email)
	assert.Equal(t, model.RoleStudent, got.CreatedBy.Role)

	require.NoError(t, s.SetItemStatus(ctx, item.ID, model.ItemStatusApproved))
	got, err = s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusApproved, got.Status)

	assert.ErrorIs(t, s.SetItemStatus(ctx, "missing", model.ItemStatusApproved), ErrNotFound)
	_, err = s.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	withImage := &model.Item{Title: "Keys", Description: "d", Image: "/uploads/keys.jpg", CreatedByID: owner.ID, ReporterEmail: owner.Email}
	require.NoError(t, s.CreateItem(ctx, withImage))
	got, err = s.GetItem(ctx, withImage.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/keys.jpg", got.Image)
}

func testListItemsByStatus(t *testing.T, s Store) {
	ctx := context.Background()
	owner := createUser(t, s, "dave@x.edu", model.RoleStudent)

	first := createItem(t, s, owner, "First")
	second := createItem(t, s, owner, "Second")
	third := createItem(t, s, owner, "Third")
	require.NoError(t, s.SetItemStatus(ctx, second.ID, model.ItemStatusApproved))

	all, err := s.ListItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)
	require.NotNil(t, all[0].CreatedBy)
	assert.Equal(t, "dave@x.edu", all[0].CreatedBy.Email)

	approved, err := s.ListItems(ctx, model.ItemStatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, second.ID, approved[0].ID)

	none, err := s.ListItems(ctx, model.ItemStatus("unknown"))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testDeleteItem(t *testing.T, s Store) {
	ctx := context.Background()
	owner := createUser(t, s, "erin@x.edu", model.RoleStudent)
	item := createItem(t, s, owner, "Umbrella")
	require.NoError(t, s.SetItemStatus(ctx, item.ID, model.ItemStatusApproved))

	comment := &model.Comment{ItemID: item.ID, UserID: owner.ID, Content: "mine"}
	require.NoError(t, s.CreateComment(ctx, comment))

	require.NoError(t, s.DeleteItem(ctx, item.ID))
	_, err := s.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteItem(ctx, item.ID), ErrNotFound)

	// Comments are not cascaded.
	comments, err := s.ListComments(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func testComments(t *testing.T, s Store) {
	ctx := context.Background()
	author := createUser(t, s, "frank@x.edu", model.RoleStudent)
	item := createItem(t, s, author, "Phone")

	var created []*model.Comment
	for _, content := range []string{"one", "two", "three", "four"} {
		c := &model.Comment{ItemID: item.ID, UserID: author.ID, Content: content}
		require.NoError(t, s.CreateComment(ctx, c))
		assert.NotEmpty(t, c.ID)
		assert.Nil(t, c.ParentCommentID)
		created = append(created, c)
	}

	parentID := created[0].ID
	reply := &model.Comment{ItemID: item.ID, UserID: author.ID, Content: "reply", ParentCommentID: &parentID}
	require.NoError(t, s.CreateComment(ctx, reply))

	got, err := s.GetComment(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentCommentID)
	assert.Equal(t, parentID, *got.ParentCommentID)

	comments, err := s.ListComments(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 5)
	for i, c := range created {
		assert.Equal(t, c.ID, comments[i].ID)
	}
	assert.Equal(t, reply.ID, comments[4].ID)
	for i := 1; i < len(comments); i++ {
		assert.False(t, comments[i].CreatedAt.Before(comments[i-1].CreatedAt))
	}
	require.NotNil(t, comments[0].User)
	assert.Equal(t, "frank@x.edu", comments[0].User.Email)

	empty, err := s.ListComments(ctx, "no-such-item")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.GetComment(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testJWTSecret(t *testing.T, s Store) {
	ctx := context.Background()

	secret1, err := s.JWTSecret(ctx)
	require.NoError(t, err)
	assert.Len(t, secret1, 64) // 32 bytes = 64 hex chars

	secret2, err := s.JWTSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, secret1, secret2)
}
