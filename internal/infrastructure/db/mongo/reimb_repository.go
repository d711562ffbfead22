package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

const reimbsCollection = "reimbursements"

const reimbSequence = "reimb_id"

// ReimbRepository persists reimbursements. Author and resolver arrive as
// name pairs; their user ids are resolved against the users collection at
// write time and stored alongside the denormalized names.
type ReimbRepository struct {
	db    *mongo.Database
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewReimbRepository(db *mongo.Database) *ReimbRepository {
	return &ReimbRepository{
		db:    db,
		coll:  db.Collection(reimbsCollection),
		users: db.Collection(usersCollection),
	}
}

var _ ports.ReimbRepository = (*ReimbRepository)(nil)

type mongoReimb struct {
	ID            int64      `bson:"_id"`
	Amount        float64    `bson:"amount"`
	Submitted     time.Time  `bson:"submitted"`
	Resolved      *time.Time `bson:"resolved,omitempty"`
	Description   string     `bson:"description"`
	Receipt       string     `bson:"receipt"`
	AuthorID      int64      `bson:"author_id"`
	AuthorFirst   string     `bson:"author_first"`
	AuthorLast    string     `bson:"author_last"`
	ResolverID    int64      `bson:"resolver_id,omitempty"`
	ResolverFirst string     `bson:"resolver_first,omitempty"`
	ResolverLast  string     `bson:"resolver_last,omitempty"`
	Status        string     `bson:"status"`
	Type          string     `bson:"type"`
}

func (mr mongoReimb) toDomain() domain.Reimbursement {
	return domain.Reimbursement{
		ID:            mr.ID,
		Amount:        mr.Amount,
		Submitted:     mr.Submitted,
		Resolved:      mr.Resolved,
		Description:   mr.Description,
		Receipt:       mr.Receipt,
		AuthorFirst:   mr.AuthorFirst,
		AuthorLast:    mr.AuthorLast,
		ResolverFirst: mr.ResolverFirst,
		ResolverLast:  mr.ResolverLast,
		Status:        domain.ReimbStatus(mr.Status),
		Type:          mr.Type,
	}
}

func (r *ReimbRepository) GetAll(ctx context.Context) ([]domain.Reimbursement, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *ReimbRepository) GetAllByAuthorID(ctx context.Context, authorID int64) ([]domain.Reimbursement, error) {
	return r.findMany(ctx, bson.M{"author_id": authorID})
}

func (r *ReimbRepository) findMany(ctx context.Context, filter bson.M) ([]domain.Reimbursement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find reimbursements: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Reimbursement
	for cur.Next(ctx) {
		var mr mongoReimb
		if err := cur.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode reimbursement: %w", err)
		}
		out = append(out, mr.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate reimbursements: %w", err)
	}
	return out, nil
}

func (r *ReimbRepository) GetByID(ctx context.Context, id int64) (*domain.Reimbursement, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ReimbRepository) GetByUniqueKey(ctx context.Context, field, value string) (*domain.Reimbursement, error) {
	return r.findOne(ctx, bson.M{field: value})
}

func (r *ReimbRepository) findOne(ctx context.Context, filter bson.M) (*domain.Reimbursement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoReimb
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNoRecord
		}
		return nil, fmt.Errorf("find reimbursement: %w", err)
	}
	d := mr.toDomain()
	return &d, nil
}

// userIDByName resolves a user id from a (first, last) name pair. An
// unknown pair surfaces as ports.ErrNoRecord.
func (r *ReimbRepository) userIDByName(ctx context.Context, first, last string) (int64, error) {
	var doc struct {
		ID int64 `bson:"_id"`
	}
	err := r.users.FindOne(ctx, bson.M{"first_name": first, "last_name": last}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ports.ErrNoRecord
		}
		return 0, fmt.Errorf("resolve user %s %s: %w", first, last, err)
	}
	return doc.ID, nil
}

func (r *ReimbRepository) Save(ctx context.Context, reimb *domain.Reimbursement) (*domain.Reimbursement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	authorID, err := r.userIDByName(ctx, reimb.AuthorFirst, reimb.AuthorLast)
	if err != nil {
		return nil, err
	}

	id, err := nextSequence(ctx, r.db, reimbSequence)
	if err != nil {
		return nil, err
	}

	doc := mongoReimb{
		ID:          id,
		Amount:      reimb.Amount,
		Submitted:   reimb.Submitted,
		Description: reimb.Description,
		Receipt:     reimb.Receipt,
		AuthorID:    authorID,
		AuthorFirst: reimb.AuthorFirst,
		AuthorLast:  reimb.AuthorLast,
		Status:      string(reimb.Status),
		Type:        reimb.Type,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert reimbursement: %w", err)
	}

	d := doc.toDomain()
	return &d, nil
}

// Resolve writes only the decision fields. Detail fields stay untouched no
// matter what the caller's payload carried. The filter requires the row to
// still be Pending, so of two racing decisions only one matches; the loser
// surfaces ErrConflict.
func (r *ReimbRepository) Resolve(ctx context.Context, id int64, status domain.ReimbStatus, resolvedAt time.Time, resolverFirst, resolverLast string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	resolverID, err := r.userIDByName(ctx, resolverFirst, resolverLast)
	if err != nil {
		return false, err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(domain.StatusPending)},
		bson.M{"$set": bson.M{
			"status":         string(status),
			"resolved":       resolvedAt,
			"resolver_id":    resolverID,
			"resolver_first": resolverFirst,
			"resolver_last":  resolverLast,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("resolve reimbursement: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, ports.ErrConflict
	}
	return true, nil
}

// UpdateDetails writes only the mutable detail fields of a pending request.
func (r *ReimbRepository) UpdateDetails(ctx context.Context, id int64, amount float64, description, receipt, reimbType string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"amount":      amount,
			"description": description,
			"receipt":     receipt,
			"type":        reimbType,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("update reimbursement details: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, ports.ErrNoRecord
	}
	return true, nil
}

func (r *ReimbRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete reimbursement: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates the lookup indexes for the reimbursements collection.
func (r *ReimbRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
