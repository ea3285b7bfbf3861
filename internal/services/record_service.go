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

type RecordInput struct {
	Patient       string `json:"patient"`
	MedicalRecord string `json:"medicalRecord"`
}

// AppointmentInput is the body of an appointment booking. Physio is ignored
// when a physio books: the appointment is always theirs.
type AppointmentInput struct {
	Date         string   `json:"date"`
	Physio       string   `json:"physio"`
	Diagnosis    string   `json:"diagnosis"`
	Treatment    string   `json:"treatment"`
	Observations string   `json:"observations"`
	Price        *float64 `json:"price"`
}

type RecordService struct {
	records  store.RecordStore
	patients store.PatientStore
	physios  store.PhysioStore
	names    names
	notifier Notifier
}

func NewRecordService(st *store.Store, notifier Notifier) *RecordService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &RecordService{
		records:  st.Records,
		patients: st.Patients,
		physios:  st.Physios,
		names:    names{patients: st.Patients, physios: st.Physios},
		notifier: notifier,
	}
}

func (s *RecordService) List(ctx context.Context, who policy.Principal) ([]models.RecordDetail, error) {
	if err := authorize(ctx, who, policy.ListRecords, policy.Resource{}); err != nil {
		return nil, err
	}
	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, apperr.Internal("listing records", err)
	}
	if len(recs) == 0 {
		return nil, apperr.NotFound("No records found.")
	}
	return s.names.records(ctx, recs)
}

// Search finds the patients matching f and then their records.
func (s *RecordService) Search(ctx context.Context, who policy.Principal, f store.NameFilter) ([]models.RecordDetail, error) {
	if err := authorize(ctx, who, policy.ListRecords, policy.Resource{}); err != nil {
		return nil, err
	}
	patients, err := s.patients.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("searching patients", err)
	}
	if len(patients) == 0 {
		return nil, apperr.NotFound("No patients found with those criteria.")
	}
	ids := make([]primitive.ObjectID, 0, len(patients))
	for _, p := range patients {
		ids = append(ids, p.ID)
	}

	recs, err := s.records.ListByPatients(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("listing records by patient", err)
	}
	if len(recs) == 0 {
		return nil, apperr.NotFound("No records found for those patients.")
	}
	return s.names.records(ctx, recs)
}

// ListAppointments flattens the appointments of every record, newest first.
func (s *RecordService) ListAppointments(ctx context.Context, who policy.Principal) ([]models.AppointmentDetail, error) {
	if err := authorize(ctx, who, policy.ListRecords, policy.Resource{}); err != nil {
		return nil, err
	}
	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, apperr.Internal("listing records", err)
	}
	details, err := s.names.records(ctx, recs)
	if err != nil {
		return nil, err
	}
	apps := flatten(details, nil)
	if len(apps) == 0 {
		return nil, apperr.NotFound("No appointments found.")
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (s *RecordService) Get(ctx context.Context, who policy.Principal, rawID string) (*models.RecordDetail, error) {
	id, err := parseID(rawID, "record")
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "No record found with that id.")
	}
	if err := authorize(ctx, who, policy.ReadRecord, policy.Owned(rec.Patient)); err != nil {
		return nil, err
	}
	return s.detailOf(ctx, rec)
}

func (s *RecordService) GetByPatient(ctx context.Context, who policy.Principal, rawPatientID string) (*models.RecordDetail, error) {
	rec, err := s.patientRecord(ctx, who, rawPatientID)
	if err != nil {
		return nil, err
	}
	return s.detailOf(ctx, rec)
}

// AppointmentsByPatient returns the patient's appointments, newest first. A
// record without appointments gives an empty list.
func (s *RecordService) AppointmentsByPatient(ctx context.Context, who policy.Principal, rawPatientID string) ([]models.AppointmentDetail, error) {
	rec, err := s.patientRecord(ctx, who, rawPatientID)
	if err != nil {
		return nil, err
	}
	d, err := s.detailOf(ctx, rec)
	if err != nil {
		return nil, err
	}
	apps := d.Appointments
	sortNewestFirst(apps)
	return apps, nil
}

func (s *RecordService) RecordIDByPatient(ctx context.Context, who policy.Principal, rawPatientID string) (primitive.ObjectID, error) {
	rec, err := s.patientRecord(ctx, who, rawPatientID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return rec.ID, nil
}

func (s *RecordService) CountAppointments(ctx context.Context, who policy.Principal, rawPatientID string) (int, error) {
	rec, err := s.patientRecord(ctx, who, rawPatientID)
	if err != nil {
		return 0, err
	}
	return len(rec.Appointments), nil
}

// patientRecord checks the caller may read the patient's record before loading it.
func (s *RecordService) patientRecord(ctx context.Context, who policy.Principal, rawPatientID string) (*models.Record, error) {
	pid, err := parseID(rawPatientID, "patient")
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, who, policy.ReadRecord, policy.Owned(pid)); err != nil {
		return nil, err
	}
	rec, err := s.records.GetByPatient(ctx, pid)
	if err != nil {
		return nil, storeErr(err, "No record found for that patient.")
	}
	return rec, nil
}

func (s *RecordService) AppointmentsByPhysio(ctx context.Context, who policy.Principal, rawPhysioID string) ([]models.AppointmentDetail, error) {
	if err := authorize(ctx, who, policy.ListRecords, policy.Resource{}); err != nil {
		return nil, err
	}
	physioID, err := parseID(rawPhysioID, "physio")
	if err != nil {
		return nil, err
	}
	recs, err := s.records.ListByPhysio(ctx, physioID)
	if err != nil {
		return nil, apperr.Internal("listing records by physio", err)
	}
	details, err := s.names.records(ctx, recs)
	if err != nil {
		return nil, err
	}
	apps := flatten(details, func(a models.AppointmentDetail) bool { return a.Physio == physioID })
	if len(apps) == 0 {
		return nil, apperr.NotFound("No appointments found for that physio.")
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (s *RecordService) Create(ctx context.Context, who policy.Principal, in RecordInput) (*models.Record, error) {
	if err := authorize(ctx, who, policy.WriteRecord, policy.Resource{}); err != nil {
		return nil, err
	}
	pid, err := parseID(in.Patient, "patient")
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.Get(ctx, pid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Validation("The patient does not exist.", err)
		}
		return nil, apperr.Internal("loading patient", err)
	}

	rec := &models.Record{Patient: pid, MedicalRecord: in.MedicalRecord}
	if err := check("record", rec); err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("The patient already has a record.", err)
		}
		return nil, apperr.Internal("inserting record", err)
	}
	zerolog.Ctx(ctx).Info().Str("record_id", rec.ID.Hex()).Str("patient_id", pid.Hex()).Msg("record created")
	return rec, nil
}

func (s *RecordService) AddAppointment(ctx context.Context, who policy.Principal, rawRecordID string, in AppointmentInput) (*models.Record, models.Appointment, error) {
	if err := authorize(ctx, who, policy.WriteRecord, policy.Resource{}); err != nil {
		return nil, models.Appointment{}, err
	}
	recordID, err := parseID(rawRecordID, "record")
	if err != nil {
		return nil, models.Appointment{}, err
	}
	return s.addAppointment(ctx, who, recordID, in)
}

// AddAppointmentByPatient books into the record of the given patient.
func (s *RecordService) AddAppointmentByPatient(ctx context.Context, who policy.Principal, rawPatientID string, in AppointmentInput) (*models.Record, models.Appointment, error) {
	if err := authorize(ctx, who, policy.WriteRecord, policy.Resource{}); err != nil {
		return nil, models.Appointment{}, err
	}
	pid, err := parseID(rawPatientID, "patient")
	if err != nil {
		return nil, models.Appointment{}, err
	}
	rec, err := s.records.GetByPatient(ctx, pid)
	if err != nil {
		return nil, models.Appointment{}, storeErr(err, "No record found for that patient.")
	}
	return s.addAppointment(ctx, who, rec.ID, in)
}

func (s *RecordService) addAppointment(ctx context.Context, who policy.Principal, recordID primitive.ObjectID, in AppointmentInput) (*models.Record, models.Appointment, error) {
	var none models.Appointment

	physioID, err := s.bookingPhysio(who, in.Physio)
	if err != nil {
		return nil, none, err
	}
	physio, err := s.physios.Get(ctx, physioID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, none, apperr.Validation("The physio does not exist.", err)
		}
		return nil, none, apperr.Internal("loading physio", err)
	}
	date, err := parseDate(in.Date, "date")
	if err != nil {
		return nil, none, err
	}

	apt := models.Appointment{
		AppointmentID: primitive.NewObjectID(),
		Date:          date,
		Physio:        physioID,
		Diagnosis:     in.Diagnosis,
		Treatment:     in.Treatment,
		Observations:  in.Observations,
	}
	if in.Price != nil {
		apt.Price = *in.Price
	}
	if apt.Price < 0 {
		return nil, none, apperr.Validation("Invalid appointment: price cannot be negative.", nil)
	}
	if err := check("appointment", &apt); err != nil {
		return nil, none, err
	}

	rec, err := s.records.PushAppointment(ctx, recordID, apt)
	if err != nil {
		return nil, none, storeErr(err, "No record found with that id.")
	}
	zerolog.Ctx(ctx).Info().
		Str("record_id", rec.ID.Hex()).
		Str("appointment_id", apt.AppointmentID.Hex()).
		Str("physio_id", physioID.Hex()).
		Msg("appointment added")

	if patient, err := s.patients.Get(ctx, rec.Patient); err == nil {
		s.notifier.AppointmentBooked(ctx, *patient, *physio, apt)
	}
	return rec, apt, nil
}

// bookingPhysio picks the physio an appointment is booked under.
func (s *RecordService) bookingPhysio(who policy.Principal, requested string) (primitive.ObjectID, error) {
	if who.Role == policy.RolePhysio {
		if who.ID.IsZero() {
			return primitive.NilObjectID, apperr.Validation("The physio account is not linked to a physio.", nil)
		}
		return who.ID, nil
	}
	if requested == "" {
		return primitive.NilObjectID, apperr.Validation("Invalid appointment: field 'physio' is required.", nil)
	}
	return parseID(requested, "physio")
}

// DeleteAppointment removes one appointment from a record. Physios may only
// remove the appointments they booked.
func (s *RecordService) DeleteAppointment(ctx context.Context, who policy.Principal, rawRecordID, rawAppointmentID string) (*models.Record, error) {
	if err := authorize(ctx, who, policy.WriteRecord, policy.Resource{}); err != nil {
		return nil, err
	}
	recordID, err := parseID(rawRecordID, "record")
	if err != nil {
		return nil, err
	}
	aptID, err := parseID(rawAppointmentID, "appointment")
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(ctx, recordID)
	if err != nil {
		return nil, storeErr(err, "No record found with that id.")
	}
	return s.pull(ctx, who, rec, aptID)
}

// DeleteAppointmentByID finds the owning record first.
func (s *RecordService) DeleteAppointmentByID(ctx context.Context, who policy.Principal, rawAppointmentID string) (*models.Record, error) {
	if err := authorize(ctx, who, policy.WriteRecord, policy.Resource{}); err != nil {
		return nil, err
	}
	aptID, err := parseID(rawAppointmentID, "appointment")
	if err != nil {
		return nil, err
	}
	rec, err := s.records.GetByAppointment(ctx, aptID)
	if err != nil {
		return nil, storeErr(err, "Appointment not found.")
	}
	return s.pull(ctx, who, rec, aptID)
}

func (s *RecordService) pull(ctx context.Context, who policy.Principal, rec *models.Record, aptID primitive.ObjectID) (*models.Record, error) {
	i := rec.FindAppointment(aptID)
	if i < 0 {
		return nil, apperr.NotFound("Appointment not found.")
	}
	if err := authorize(ctx, who, policy.DeleteAppointment, policy.AppointmentBy(rec.Appointments[i].Physio)); err != nil {
		return nil, err
	}

	// The physio condition is repeated in the update filter so the check and
	// the removal happen in one atomic operation.
	var physioCond primitive.ObjectID
	if who.Role == policy.RolePhysio {
		physioCond = who.ID
	}
	updated, err := s.records.PullAppointment(ctx, rec.ID, aptID, physioCond)
	if err != nil {
		return nil, storeErr(err, "Appointment not found.")
	}
	zerolog.Ctx(ctx).Info().
		Str("record_id", rec.ID.Hex()).
		Str("appointment_id", aptID.Hex()).
		Msg("appointment deleted")
	return updated, nil
}

func (s *RecordService) Delete(ctx context.Context, who policy.Principal, rawID string) (*models.Record, error) {
	if err := authorize(ctx, who, policy.WriteRecord, policy.Resource{}); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "record")
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Delete(ctx, id)
	if err != nil {
		return nil, storeErr(err, "The record to delete does not exist.")
	}
	zerolog.Ctx(ctx).Info().Str("record_id", id.Hex()).Msg("record deleted")
	return rec, nil
}

func (s *RecordService) detailOf(ctx context.Context, rec *models.Record) (*models.RecordDetail, error) {
	details, err := s.names.records(ctx, []models.Record{*rec})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// flatten collects the appointments of every record that pass keep (all when nil).
func flatten(details []models.RecordDetail, keep func(models.AppointmentDetail) bool) []models.AppointmentDetail {
	out := []models.AppointmentDetail{}
	for _, d := range details {
		for _, a := range d.Appointments {
			if keep == nil || keep(a) {
				out = append(out, a)
			}
		}
	}
	return out
}
