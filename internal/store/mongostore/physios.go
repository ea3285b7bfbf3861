package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/store"
)

type PhysioStore struct {
	coll *mongo.Collection
}

func (s *PhysioStore) List(ctx context.Context, f store.PhysioFilter) ([]models.Physio, error) {
	filter := nameQuery(f.Name, f.Surname)
	if f.Specialty != "" {
		filter["specialty"] = contains(f.Specialty)
	}
	opts := options.Find().SetSort(bson.D{{Key: "surname", Value: 1}, {Key: "name", Value: 1}})
	return findAll[models.Physio](ctx, s.coll, filter, opts)
}

func (s *PhysioStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Physio, error) {
	return findOne[models.Physio](ctx, s.coll, byID(id))
}

func (s *PhysioStore) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Physio, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.Physio{}, nil
	}
	physios, err := findAll[models.Physio](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.Physio, len(physios))
	for _, p := range physios {
		out[p.ID] = p
	}
	return out, nil
}

func (s *PhysioStore) Create(ctx context.Context, p *models.Physio) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, p)
	return translate(err)
}

func (s *PhysioStore) Replace(ctx context.Context, p *models.Physio) error {
	return replaceOne(ctx, s.coll, p.ID, p)
}

func (s *PhysioStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Physio, error) {
	return deleteOne[models.Physio](ctx, s.coll, id)
}
