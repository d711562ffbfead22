package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

const usersCollection = "users"

// userSequence names the counter backing user ids.
const userSequence = "user_id"

type UserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, coll: db.Collection(usersCollection)}
}

var _ ports.UserRepository = (*UserRepository)(nil)

type mongoUser struct {
	ID        int64  `bson:"_id"`
	Username  string `bson:"username"`
	Password  string `bson:"password"`
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
	Email     string `bson:"email"`
	Role      string `bson:"role"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:        u.ID,
		Username:  u.Username,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:        mu.ID,
		Username:  mu.Username,
		Password:  mu.Password,
		FirstName: mu.FirstName,
		LastName:  mu.LastName,
		Email:     mu.Email,
		Role:      mu.Role,
	}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByUniqueKey fetches the single user whose field equals value. The
// service layer has already vetted the field name against the declared set,
// so it can be used as a bson key directly.
func (r *UserRepository) GetByUniqueKey(ctx context.Context, field, value string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{field: value})
}

func (r *UserRepository) GetByCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username, "password": password})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNoRecord
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// Save assigns the next user id and inserts the document. The unique
// indexes on username and email are the final word on availability; their
// rejection surfaces as ports.ErrDuplicateKey.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, userSequence)
	if err != nil {
		return nil, err
	}

	doc := toMongoUser(u)
	doc.ID = id

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ports.ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(u)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, ports.ErrDuplicateKey
		}
		return false, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, ports.ErrNoRecord
	}
	return true, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates the unique indexes backing the identity invariants.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
