// Package store declares the document store used by the services. The
// MongoDB adapter lives in mongostore; memstore is an in-memory double for tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate unique field")
)

// NameFilter is a case-insensitive partial match on name and surname. Empty
// fields are ignored; set fields are combined with AND.
type NameFilter struct {
	Name    string
	Surname string
}

type PhysioFilter struct {
	NameFilter
	Specialty string
}

type PatientStore interface {
	List(ctx context.Context, f NameFilter) ([]models.Patient, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Patient, error)
	Create(ctx context.Context, p *models.Patient) error
	// Replace overwrites every field but the id and returns ErrNotFound for unknown ids.
	Replace(ctx context.Context, p *models.Patient) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
}

type PhysioStore interface {
	List(ctx context.Context, f PhysioFilter) ([]models.Physio, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Physio, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Physio, error)
	Create(ctx context.Context, p *models.Physio) error
	Replace(ctx context.Context, p *models.Physio) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Physio, error)
}

// RecordStore persists records together with their embedded appointments.
// Appointment changes are single-document atomic updates.
type RecordStore interface {
	List(ctx context.Context) ([]models.Record, error)
	ListByPatients(ctx context.Context, patientIDs []primitive.ObjectID) ([]models.Record, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Record, error)
	GetByPatient(ctx context.Context, patientID primitive.ObjectID) (*models.Record, error)
	// GetByAppointment finds the record that owns an appointment.
	GetByAppointment(ctx context.Context, appointmentID primitive.ObjectID) (*models.Record, error)
	// ListByPhysio returns every record holding at least one appointment by physioID.
	ListByPhysio(ctx context.Context, physioID primitive.ObjectID) ([]models.Record, error)
	Create(ctx context.Context, r *models.Record) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Record, error)
	// PushAppointment appends a to the record and returns the updated record.
	PushAppointment(ctx context.Context, recordID primitive.ObjectID, a models.Appointment) (*models.Record, error)
	// PullAppointment removes the appointment from the record. When physioID is
	// not zero the appointment is only removed if it was scheduled by that physio.
	// It returns ErrNotFound when nothing matched.
	PullAppointment(ctx context.Context, recordID, appointmentID, physioID primitive.ObjectID) (*models.Record, error)
}

type UserStore interface {
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Store bundles the four collections.
type Store struct {
	Patients PatientStore
	Physios  PhysioStore
	Records  RecordStore
	Users    UserStore
}
