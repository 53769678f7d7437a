package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
)

type mongoSession struct {
	ID          int64     `bson:"_id"`
	UserEmail   string    `bson:"user_email"`
	Title       string    `bson:"title"`
	Tags        []string  `bson:"tags"`
	JSONFileURL string    `bson:"json_file_url"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d *mongoSession) toDomain() *domain.Session {
	return &domain.Session{
		ID:          d.ID,
		OwnerEmail:  d.UserEmail,
		Title:       d.Title,
		Tags:        d.Tags,
		JSONFileURL: d.JSONFileURL,
		Status:      domain.SessionStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoSessionRepository implements domain.SessionRepository on the
// "user_sessions" collection. Documents reference the owner by email
// rather than by id, so only owner.Email is consulted.
type MongoSessionRepository struct {
	db       *mongo.Database
	sessions *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoSessionRepository.
func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{db: db, sessions: db.Collection("user_sessions")}
}

func (r *MongoSessionRepository) find(ctx context.Context, filter bson.M) ([]domain.Session, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.sessions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []mongoSession
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(docs))
	for i := range docs {
		sessions = append(sessions, *docs[i].toDomain())
	}
	return sessions, nil
}

// ListPublished returns every published session, newest first.
func (r *MongoSessionRepository) ListPublished(ctx context.Context) ([]domain.Session, error) {
	return r.find(ctx, bson.M{"status": string(domain.StatusPublished)})
}

// ListByOwner returns every session owned by the given identity, newest first.
func (r *MongoSessionRepository) ListByOwner(ctx context.Context, owner domain.Identity) ([]domain.Session, error) {
	return r.find(ctx, bson.M{"user_email": owner.Email})
}

// GetOwned returns the session with the given id if owned by the identity.
// Returns (nil, nil) when absent or owned by someone else.
func (r *MongoSessionRepository) GetOwned(ctx context.Context, owner domain.Identity, id int64) (*domain.Session, error) {
	var doc mongoSession
	err := r.sessions.FindOne(ctx, bson.M{"_id": id, "user_email": owner.Email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Create inserts a new session document and returns the stored record.
func (r *MongoSessionRepository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	id, err := nextID(ctx, r.db, "user_sessions")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tags := session.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := mongoSession{
		ID:          id,
		UserEmail:   session.OwnerEmail,
		Title:       session.Title,
		Tags:        tags,
		JSONFileURL: session.JSONFileURL,
		Status:      string(session.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.sessions.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Update rewrites the mutable fields of an owned session in a single
// document write. Owner and created_at stay untouched.
// Returns (nil, nil) when the document is absent or owned by someone else.
func (r *MongoSessionRepository) Update(ctx context.Context, owner domain.Identity, session *domain.Session) (*domain.Session, error) {
	tags := session.Tags
	if tags == nil {
		tags = []string{}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoSession
	err := r.sessions.FindOneAndUpdate(ctx,
		bson.M{"_id": session.ID, "user_email": owner.Email},
		bson.M{"$set": bson.M{
			"title":         session.Title,
			"tags":          tags,
			"json_file_url": session.JSONFileURL,
			"status":        string(session.Status),
			"updated_at":    time.Now().UTC(),
		}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}
