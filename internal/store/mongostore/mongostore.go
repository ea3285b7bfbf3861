// Package mongostore implements the store interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/physiocare-api/internal/store"
)

const (
	UsersCollection    = "users"
	PatientsCollection = "patients"
	PhysiosCollection  = "physios"
	RecordsCollection  = "records"
)

// Connect opens a client and pings the primary before returning.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetTimeout(timeout)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// New wires the four collections of db into a store.Store.
func New(db *mongo.Database) *store.Store {
	return &store.Store{
		Patients: &PatientStore{coll: db.Collection(PatientsCollection)},
		Physios:  &PhysioStore{coll: db.Collection(PhysiosCollection)},
		Records:  &RecordStore{coll: db.Collection(RecordsCollection)},
		Users:    &UserStore{coll: db.Collection(UsersCollection)},
	}
}

// Drop removes the clinic collections. Used by the seed command before
// loading demo data.
func Drop(ctx context.Context, db *mongo.Database) error {
	for _, coll := range []string{UsersCollection, PatientsCollection, PhysiosCollection, RecordsCollection} {
		if err := db.Collection(coll).Drop(ctx); err != nil {
			return fmt.Errorf("dropping %s: %w", coll, err)
		}
	}
	return nil
}

// EnsureIndexes creates the unique indexes backing the uniqueness invariants
// and the indexes used by appointment lookups. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	plain := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	}

	indexes := map[string][]mongo.IndexModel{
		UsersCollection:    {unique("login")},
		PatientsCollection: {unique("insuranceNumber"), unique("email")},
		PhysiosCollection:  {unique("licenseNumber"), unique("email")},
		RecordsCollection: {
			unique("patient"),
			plain("appointments.appointmentId"),
			plain("appointments.physio"),
		},
	}
	for coll, idx := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

// contains builds a case-insensitive substring match on the literal text s.
func contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func nameQuery(name, surname string) bson.M {
	filter := bson.M{}
	if name != "" {
		filter["name"] = contains(name)
	}
	if surname != "" {
		filter["surname"] = contains(surname)
	}
	return filter
}

func byID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func deleteOne[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := coll.FindOneAndDelete(ctx, byID(id)).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func replaceOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
