package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventreg/registration-system/internal/core/domain"
)

const (
	collectionParticipants = "participants"
	collectionCounters     = "counters"

	counterID = "participants"

	indexCallerID = "caller_id_1"
	indexPhone    = "phone_1"
)

// ParticipantRepository persists participants in MongoDB.
//
// Uniqueness on caller_id and phone is enforced by unique indexes, so racing
// inserts resolve to exactly one winner regardless of any pre-checks in the
// protocol layer. Sequential numbering comes from a counters document that
// is incremented in the same transaction as the insert: a losing duplicate
// aborts the transaction and consumes no number.
type ParticipantRepository struct {
	client *mongo.Client
	col    *mongo.Collection
	seq    *mongo.Collection
}

func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{
		client: db.Client(),
		col:    db.Collection(collectionParticipants),
		seq:    db.Collection(collectionCounters),
	}
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// FindByCallerID returns (nil, nil) when no record exists.
func (r *ParticipantRepository) FindByCallerID(ctx context.Context, callerID int64) (*domain.Participant, error) {
	return r.findOne(ctx, bson.M{"caller_id": callerID})
}

// FindByPhone returns (nil, nil) when no record exists.
func (r *ParticipantRepository) FindByPhone(ctx context.Context, phone string) (*domain.Participant, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *ParticipantRepository) findOne(ctx context.Context, filter bson.M) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Participant
	err := r.col.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Insert atomically assigns the next sequential number and persists p.
func (r *ParticipantRepository) Insert(ctx context.Context, p *domain.Participant) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return 0, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var counter counterDoc
		err := r.seq.FindOneAndUpdate(sc,
			bson.M{"_id": counterID},
			bson.M{"$inc": bson.M{"seq": 1}},
			options.FindOneAndUpdate().
				SetUpsert(true).
				SetReturnDocument(options.After),
		).Decode(&counter)
		if err != nil {
			return nil, err
		}

		doc := *p
		doc.Number = counter.Seq
		if _, err := r.col.InsertOne(sc, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, &domain.DuplicateError{Field: duplicateField(err)}
			}
			return nil, err
		}
		return counter.Seq, nil
	})
	if err != nil {
		return 0, err
	}

	number := result.(int64)
	p.Number = number
	return number, nil
}

// ListInRange returns participants registered within r, ascending by number.
func (r *ParticipantRepository) ListInRange(ctx context.Context, rng domain.Range) ([]domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, rangeFilter(rng), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []domain.Participant
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountInRange counts participants registered within r.
func (r *ParticipantRepository) CountInRange(ctx context.Context, rng domain.Range) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, rangeFilter(rng))
}

// WipeAll deletes every record and resets the number sequence in a single
// transaction, so the next insert receives number 1.
func (r *ParticipantRepository) WipeAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.col.DeleteMany(sc, bson.M{}); err != nil {
			return nil, err
		}
		_, err := r.seq.UpdateOne(sc,
			bson.M{"_id": counterID},
			bson.M{"$set": bson.M{"seq": int64(0)}},
			options.Update().SetUpsert(true),
		)
		return nil, err
	})
	return err
}

// EnsureIndexes creates the uniqueness-enforcing indexes on the participants
// collection. Must run before the service accepts traffic.
func (r *ParticipantRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "caller_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "registered_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func rangeFilter(rng domain.Range) bson.M {
	ts := bson.M{}
	if rng.From != nil {
		ts["$gte"] = *rng.From
	}
	if rng.To != nil {
		ts["$lt"] = *rng.To
	}
	if len(ts) == 0 {
		return bson.M{}
	}
	return bson.M{"registered_at": ts}
}

// duplicateField extracts which unique index an E11000 error names.
func duplicateField(err error) domain.DuplicateField {
	msg := err.Error()
	switch {
	case strings.Contains(msg, indexCallerID):
		return domain.DuplicateCallerID
	case strings.Contains(msg, indexPhone):
		return domain.DuplicatePhone
	default:
		return domain.DuplicateUnknown
	}
}
