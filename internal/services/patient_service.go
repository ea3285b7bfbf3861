package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/policy"
	"github.com/harentsoaR/physiocare-api/internal/store"
)

type PatientInput struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	BirthDate       string `json:"birthDate"`
	Address         string `json:"address"`
	InsuranceNumber string `json:"insuranceNumber"`
	Email           string `json:"email"`
	Image           string `json:"image"`
}

// PatientPatch carries the fields of an update. ID and MongoID exist only to
// detect clients trying to change the patient's identity.
type PatientPatch struct {
	ID              *string `json:"id"`
	MongoID         *string `json:"_id"`
	Name            *string `json:"name"`
	Surname         *string `json:"surname"`
	BirthDate       *string `json:"birthDate"`
	Address         *string `json:"address"`
	InsuranceNumber *string `json:"insuranceNumber"`
	Email           *string `json:"email"`
	Image           *string `json:"image"`
}

// PatientDetail is a patient together with their records.
type PatientDetail struct {
	Patient models.Patient        `json:"patient"`
	Records []models.RecordDetail `json:"records"`
}

type PatientService struct {
	patients store.PatientStore
	records  store.RecordStore
	names    names
}

func NewPatientService(st *store.Store) *PatientService {
	return &PatientService{
		patients: st.Patients,
		records:  st.Records,
		names:    names{patients: st.Patients, physios: st.Physios},
	}
}

// List returns every patient. An empty collection is reported as not found.
func (s *PatientService) List(ctx context.Context, who policy.Principal) ([]models.Patient, error) {
	return s.Search(ctx, who, store.NameFilter{})
}

func (s *PatientService) Search(ctx context.Context, who policy.Principal, f store.NameFilter) ([]models.Patient, error) {
	if err := authorize(ctx, who, policy.ListPatients, policy.Resource{}); err != nil {
		return nil, err
	}
	patients, err := s.patients.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("listing patients", err)
	}
	if len(patients) == 0 {
		return nil, apperr.NotFound("No patients found.")
	}
	return patients, nil
}

func (s *PatientService) Get(ctx context.Context, who policy.Principal, rawID string) (*PatientDetail, error) {
	id, err := parseID(rawID, "patient")
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, who, policy.ReadPatient, policy.Owned(id)); err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "No patient found with that id.")
	}
	recs, err := s.records.ListByPatients(ctx, []primitive.ObjectID{id})
	if err != nil {
		return nil, apperr.Internal("loading patient records", err)
	}
	details, err := s.names.records(ctx, recs)
	if err != nil {
		return nil, err
	}
	return &PatientDetail{Patient: *patient, Records: details}, nil
}

func (s *PatientService) Create(ctx context.Context, who policy.Principal, in PatientInput) (*models.Patient, error) {
	if err := authorize(ctx, who, policy.WritePatient, policy.Resource{}); err != nil {
		return nil, err
	}
	birth, err := parseDate(in.BirthDate, "birthDate")
	if err != nil {
		return nil, err
	}
	p := &models.Patient{
		Name:            in.Name,
		Surname:         in.Surname,
		BirthDate:       birth,
		Address:         in.Address,
		InsuranceNumber: in.InsuranceNumber,
		Email:           in.Email,
		Image:           in.Image,
	}
	if err := check("patient", p); err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("A patient with this insurance number or email already exists.", err)
		}
		return nil, apperr.Internal("inserting patient", err)
	}
	zerolog.Ctx(ctx).Info().Str("patient_id", p.ID.Hex()).Msg("patient created")
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, who policy.Principal, rawID string, patch PatientPatch) (*models.Patient, error) {
	if err := authorize(ctx, who, policy.WritePatient, policy.Resource{}); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "patient")
	if err != nil {
		return nil, err
	}
	for _, bodyID := range []*string{patch.ID, patch.MongoID} {
		if bodyID != nil && *bodyID != id.Hex() {
			return nil, apperr.Validation("The patient id cannot be changed.", nil)
		}
	}

	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "The patient to update does not exist.")
	}
	if err := applyPatientPatch(p, patch); err != nil {
		return nil, err
	}
	if err := check("patient", p); err != nil {
		return nil, err
	}
	if err := s.patients.Replace(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("A patient with this insurance number or email already exists.", err)
		}
		return nil, storeErr(err, "The patient to update does not exist.")
	}
	return p, nil
}

func applyPatientPatch(p *models.Patient, patch PatientPatch) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, patch.Name)
	set(&p.Surname, patch.Surname)
	set(&p.Address, patch.Address)
	set(&p.InsuranceNumber, patch.InsuranceNumber)
	set(&p.Email, patch.Email)
	set(&p.Image, patch.Image)
	if patch.BirthDate != nil {
		birth, err := parseDate(*patch.BirthDate, "birthDate")
		if err != nil {
			return err
		}
		p.BirthDate = birth
	}
	return nil
}

// Delete removes the patient document only; an existing record keeps its reference.
func (s *PatientService) Delete(ctx context.Context, who policy.Principal, rawID string) (*models.Patient, error) {
	if err := authorize(ctx, who, policy.WritePatient, policy.Resource{}); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "patient")
	if err != nil {
		return nil, err
	}
	p, err := s.patients.Delete(ctx, id)
	if err != nil {
		return nil, storeErr(err, "The patient to delete does not exist.")
	}
	zerolog.Ctx(ctx).Info().Str("patient_id", id.Hex()).Msg("patient deleted")
	return p, nil
}
