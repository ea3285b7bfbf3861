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

type PatientStore struct {
	coll *mongo.Collection
}

func (s *PatientStore) List(ctx context.Context, f store.NameFilter) ([]models.Patient, error) {
	opts := options.Find().SetSort(bson.D{{Key: "surname", Value: 1}, {Key: "name", Value: 1}})
	return findAll[models.Patient](ctx, s.coll, nameQuery(f.Name, f.Surname), opts)
}

func (s *PatientStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return findOne[models.Patient](ctx, s.coll, byID(id))
}

func (s *PatientStore) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Patient, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.Patient{}, nil
	}
	patients, err := findAll[models.Patient](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.Patient, len(patients))
	for _, p := range patients {
		out[p.ID] = p
	}
	return out, nil
}

func (s *PatientStore) Create(ctx context.Context, p *models.Patient) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, p)
	return translate(err)
}

func (s *PatientStore) Replace(ctx context.Context, p *models.Patient) error {
	return replaceOne(ctx, s.coll, p.ID, p)
}

func (s *PatientStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return deleteOne[models.Patient](ctx, s.coll, id)
}
