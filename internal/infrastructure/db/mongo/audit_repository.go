package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

const decisionsCollection = "reimb_decisions"

// AuditRepository persists the append-only decision trail.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(decisionsCollection)}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

type mongoDecision struct {
	ReimbID       int64     `bson:"reimb_id"`
	Status        string    `bson:"status"`
	ResolvedAt    time.Time `bson:"resolved_at"`
	ResolverFirst string    `bson:"resolver_first"`
	ResolverLast  string    `bson:"resolver_last"`
}

func (r *AuditRepository) InsertDecision(ctx context.Context, rec *domain.DecisionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoDecision{
		ReimbID:       rec.ReimbID,
		Status:        string(rec.Status),
		ResolvedAt:    rec.ResolvedAt,
		ResolverFirst: rec.ResolverFirst,
		ResolverLast:  rec.ResolverLast,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByReimbID(ctx context.Context, reimbID int64) ([]domain.DecisionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx,
		bson.M{"reimb_id": reimbID},
		options.Find().SetSort(bson.D{{Key: "resolved_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find decisions: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.DecisionRecord
	for cur.Next(ctx) {
		var md mongoDecision
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		out = append(out, domain.DecisionRecord{
			ReimbID:       md.ReimbID,
			Status:        domain.ReimbStatus(md.Status),
			ResolvedAt:    md.ResolvedAt,
			ResolverFirst: md.ResolverFirst,
			ResolverLast:  md.ResolverLast,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates the lookup index for the decisions collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "reimb_id", Value: 1}},
	})
	return err
}
