package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/erazemk/najdeno/internal/model"
)

// MongoStore implements Store on a MongoDB database with the collections
// users, items, comments and settings.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	items    *mongo.Collection
	comments *mongo.Collection
	settings *mongo.Collection

	indexMu sync.Mutex
	indexed bool
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type itemDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Image         string             `bson:"image,omitempty"`
	Status        string             `bson:"status"`
	CreatedBy     primitive.ObjectID `bson:"created_by"`
	ReporterEmail string             `bson:"reporter_email"`
	CreatedAt     time.Time          `bson:"created_at"`
}

type commentDoc struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	ItemID          primitive.ObjectID  `bson:"item_id"`
	UserID          primitive.ObjectID  `bson:"user_id"`
	Content         string              `bson:"content"`
	ParentCommentID *primitive.ObjectID `bson:"parent_comment_id"`
	CreatedAt       time.Time           `bson:"created_at"`
}

type settingDoc struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// ConnectMongo creates a client for uri and selects database. The driver
// connects lazily, so an unreachable server is reported by Ping rather than here.
func ConnectMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:   client,
		users:    db.Collection("users"),
		items:    db.Collection("items"),
		comments: db.Collection("comments"),
		settings: db.Collection("settings"),
	}, nil
}

// EnsureIndexes creates the unique email index and the listing indexes. It
// is a no-op once it has succeeded; CreateUser calls it so the unique index
// exists even when the server was unreachable at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if s.indexed {
		return nil
	}
	if err := s.createIndexes(ctx); err != nil {
		return err
	}
	s.indexed = true
	return nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("creating users index: %w", err)
	}

	if _, err := s.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("creating items index: %w", err)
	}

	if _, err := s.comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "parent_comment_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("creating comments indexes: %w", err)
	}

	return nil
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mongoNow returns the current time at the precision MongoDB stores.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// CreateUser creates a new user.
func (s *MongoStore) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensuring indexes: %w", err)
	}

	err := s.users.FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return ErrDuplicateEmail
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("checking email: %w", err)
	}

	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    mongoNow(),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating user: %w", err)
	}

	u.ID = doc.ID.Hex()
	u.CreatedAt = doc.CreatedAt
	return nil
}

// GetUser returns a user by ID.
func (s *MongoStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

// GetUserByEmail returns a user by email.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return doc.model(), nil
}

// HasAdmin reports whether at least one admin account exists.
func (s *MongoStore) HasAdmin(ctx context.Context) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"role": string(model.RoleAdmin)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("counting admins: %w", err)
	}
	return n > 0, nil
}

// CreateItem creates a new item report.
func (s *MongoStore) CreateItem(ctx context.Context, item *model.Item) error {
	owner, err := primitive.ObjectIDFromHex(item.CreatedByID)
	if err != nil {
		return fmt.Errorf("creating item: invalid owner id %q", item.CreatedByID)
	}
	if item.Status == "" {
		item.Status = model.ItemStatusPending
	}

	doc := itemDoc{
		ID:            primitive.NewObjectID(),
		Title:         item.Title,
		Description:   item.Description,
		Image:         item.Image,
		Status:        string(item.Status),
		CreatedBy:     owner,
		ReporterEmail: item.ReporterEmail,
		CreatedAt:     mongoNow(),
	}
	if _, err := s.items.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("creating item: %w", err)
	}

	item.ID = doc.ID.Hex()
	item.CreatedAt = doc.CreatedAt
	return nil
}

// GetItem returns an item by ID with its creator resolved.
func (s *MongoStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc itemDoc
	err = s.items.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	users, err := s.usersByID(ctx, []primitive.ObjectID{doc.CreatedBy})
	if err != nil {
		return nil, err
	}
	item := doc.model(users)
	return &item, nil
}

// ListItems returns items newest first, optionally filtered by status.
func (s *MongoStore) ListItems(ctx context.Context, status model.ItemStatus) ([]model.Item, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.CreatedBy)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.model(users))
	}
	return items, nil
}

// SetItemStatus changes the review status of an item.
func (s *MongoStore) SetItemStatus(ctx context.Context, id string, status model.ItemStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.items.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem permanently removes an item. Its comments are left in place.
func (s *MongoStore) DeleteItem(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.items.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateComment creates a new comment or reply.
func (s *MongoStore) CreateComment(ctx context.Context, c *model.Comment) error {
	itemID, err := primitive.ObjectIDFromHex(c.ItemID)
	if err != nil {
		return ErrNotFound
	}
	userID, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return fmt.Errorf("creating comment: invalid user id %q", c.UserID)
	}

	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		ItemID:    itemID,
		UserID:    userID,
		Content:   c.Content,
		CreatedAt: mongoNow(),
	}
	if c.ParentCommentID != nil {
		parent, err := primitive.ObjectIDFromHex(*c.ParentCommentID)
		if err != nil {
			return ErrNotFound
		}
		doc.ParentCommentID = &parent
	}

	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}

	c.ID = doc.ID.Hex()
	c.CreatedAt = doc.CreatedAt
	return nil
}

// GetComment returns a comment by ID with its author resolved.
func (s *MongoStore) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc commentDoc
	err = s.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment: %w", err)
	}

	users, err := s.usersByID(ctx, []primitive.ObjectID{doc.UserID})
	if err != nil {
		return nil, err
	}
	c := doc.model(users)
	return &c, nil
}

// ListComments returns all comments of an item in creation order.
func (s *MongoStore) ListComments(ctx context.Context, itemID string) ([]model.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return []model.Comment{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.comments.Find(ctx, bson.M{"item_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.UserID)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	comments := make([]model.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, d.model(users))
	}
	return comments, nil
}

// JWTSecret returns the persisted signing key, creating it on first use.
func (s *MongoStore) JWTSecret(ctx context.Context) (string, error) {
	candidate, err := newSecret()
	if err != nil {
		return "", err
	}

	_, err = s.settings.UpdateOne(ctx,
		bson.M{"_id": jwtSecretKey},
		bson.M{"$setOnInsert": bson.M{"value": candidate}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var doc settingDoc
	if err := s.settings.FindOne(ctx, bson.M{"_id": jwtSecretKey}).Decode(&doc); err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}
	return doc.Value, nil
}

// usersByID resolves a batch of user references in one query.
func (s *MongoStore) usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.UserSummary, error) {
	users := make(map[primitive.ObjectID]*model.UserSummary, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	opts := options.Find().SetProjection(bson.M{"password_hash": 0})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("resolving users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	for _, d := range docs {
		users[d.ID] = d.model().Summary()
	}
	return users, nil
}

func (d userDoc) model() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         model.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func (d itemDoc) model(users map[primitive.ObjectID]*model.UserSummary) model.Item {
	return model.Item{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Image:         d.Image,
		Status:        model.ItemStatus(d.Status),
		CreatedByID:   d.CreatedBy.Hex(),
		CreatedBy:     users[d.CreatedBy],
		ReporterEmail: d.ReporterEmail,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

func (d commentDoc) model(users map[primitive.ObjectID]*model.UserSummary) model.Comment {
	c := model.Comment{
		ID:        d.ID.Hex(),
		ItemID:    d.ItemID.Hex(),
		UserID:    d.UserID.Hex(),
		User:      users[d.UserID],
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.ParentCommentID != nil {
		p := d.ParentCommentID.Hex()
		c.ParentCommentID = &p
	}
	return c
}
