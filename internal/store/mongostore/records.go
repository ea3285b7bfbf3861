package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/physiocare-api/internal/models"
)

type RecordStore struct {
	coll *mongo.Collection
}

func (s *RecordStore) List(ctx context.Context) ([]models.Record, error) {
	return findAll[models.Record](ctx, s.coll, bson.M{})
}

func (s *RecordStore) ListByPatients(ctx context.Context, patientIDs []primitive.ObjectID) ([]models.Record, error) {
	return findAll[models.Record](ctx, s.coll, bson.M{"patient": bson.M{"$in": patientIDs}})
}

func (s *RecordStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Record, error) {
	return findOne[models.Record](ctx, s.coll, byID(id))
}

func (s *RecordStore) GetByPatient(ctx context.Context, patientID primitive.ObjectID) (*models.Record, error) {
	return findOne[models.Record](ctx, s.coll, bson.M{"patient": patientID})
}

func (s *RecordStore) GetByAppointment(ctx context.Context, appointmentID primitive.ObjectID) (*models.Record, error) {
	return findOne[models.Record](ctx, s.coll, bson.M{"appointments.appointmentId": appointmentID})
}

func (s *RecordStore) ListByPhysio(ctx context.Context, physioID primitive.ObjectID) ([]models.Record, error) {
	return findAll[models.Record](ctx, s.coll, bson.M{"appointments.physio": physioID})
}

func (s *RecordStore) Create(ctx context.Context, r *models.Record) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Appointments == nil {
		r.Appointments = []models.Appointment{}
	}
	_, err := s.coll.InsertOne(ctx, r)
	return translate(err)
}

func (s *RecordStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Record, error) {
	return deleteOne[models.Record](ctx, s.coll, id)
}

// PushAppointment is a single $push so concurrent additions to one record
// never overwrite each other.
func (s *RecordStore) PushAppointment(ctx context.Context, recordID primitive.ObjectID, a models.Appointment) (*models.Record, error) {
	update := bson.M{"$push": bson.M{"appointments": a}}
	return s.findAndUpdate(ctx, byID(recordID), update)
}

// PullAppointment puts the physio condition in the filter, so the ownership
// check and the removal happen in one write.
func (s *RecordStore) PullAppointment(ctx context.Context, recordID, appointmentID, physioID primitive.ObjectID) (*models.Record, error) {
	match := bson.M{"appointmentId": appointmentID}
	if !physioID.IsZero() {
		match["physio"] = physioID
	}
	filter := bson.M{
		"_id":          recordID,
		"appointments": bson.M{"$elemMatch": match},
	}
	update := bson.M{"$pull": bson.M{"appointments": bson.M{"appointmentId": appointmentID}}}
	return s.findAndUpdate(ctx, filter, update)
}

func (s *RecordStore) findAndUpdate(ctx context.Context, filter, update interface{}) (*models.Record, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec models.Record
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}
