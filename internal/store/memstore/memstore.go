// Package memstore is an in-memory store.Store used by tests. It mirrors the
// unique indexes and atomic appointment updates of the MongoDB adapter.
package memstore

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/store"
)

// New returns an empty store.
func New() *store.Store {
	m := &memory{
		patients: map[primitive.ObjectID]models.Patient{},
		physios:  map[primitive.ObjectID]models.Physio{},
		records:  map[primitive.ObjectID]models.Record{},
		users:    map[primitive.ObjectID]models.User{},
	}
	return &store.Store{
		Patients: &patients{m},
		Physios:  &physios{m},
		Records:  &records{m},
		Users:    &users{m},
	}
}

type memory struct {
	mu       sync.RWMutex
	patients map[primitive.ObjectID]models.Patient
	physios  map[primitive.ObjectID]models.Physio
	records  map[primitive.ObjectID]models.Record
	users    map[primitive.ObjectID]models.User
}

func contains(field, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}

func cloneRecord(r models.Record) models.Record {
	apps := make([]models.Appointment, len(r.Appointments))
	copy(apps, r.Appointments)
	r.Appointments = apps
	return r
}

type patients struct{ m *memory }

func (s *patients) List(_ context.Context, f store.NameFilter) ([]models.Patient, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]models.Patient, 0)
	for _, p := range s.m.patients {
		if contains(p.Name, f.Name) && contains(p.Surname, f.Surname) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *patients) Get(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *patients) GetMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Patient, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := map[primitive.ObjectID]models.Patient{}
	for _, id := range ids {
		if p, ok := s.m.patients[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *patients) conflict(p *models.Patient) bool {
	for id, other := range s.m.patients {
		if id != p.ID && (other.InsuranceNumber == p.InsuranceNumber || other.Email == p.Email) {
			return true
		}
	}
	return false
}

func (s *patients) Create(_ context.Context, p *models.Patient) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, exists := s.m.patients[p.ID]; exists || s.conflict(p) {
		return store.ErrDuplicate
	}
	s.m.patients[p.ID] = *p
	return nil
}

func (s *patients) Replace(_ context.Context, p *models.Patient) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.patients[p.ID]; !ok {
		return store.ErrNotFound
	}
	if s.conflict(p) {
		return store.ErrDuplicate
	}
	s.m.patients[p.ID] = *p
	return nil
}

func (s *patients) Delete(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.m.patients, id)
	return &p, nil
}

type physios struct{ m *memory }

func (s *physios) List(_ context.Context, f store.PhysioFilter) ([]models.Physio, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]models.Physio, 0)
	for _, p := range s.m.physios {
		if contains(p.Name, f.Name) && contains(p.Surname, f.Surname) && contains(p.Specialty, f.Specialty) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *physios) Get(_ context.Context, id primitive.ObjectID) (*models.Physio, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.physios[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *physios) GetMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Physio, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := map[primitive.ObjectID]models.Physio{}
	for _, id := range ids {
		if p, ok := s.m.physios[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *physios) conflict(p *models.Physio) bool {
	for id, other := range s.m.physios {
		if id != p.ID && (other.LicenseNumber == p.LicenseNumber || other.Email == p.Email) {
			return true
		}
	}
	return false
}

func (s *physios) Create(_ context.Context, p *models.Physio) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, exists := s.m.physios[p.ID]; exists || s.conflict(p) {
		return store.ErrDuplicate
	}
	s.m.physios[p.ID] = *p
	return nil
}

func (s *physios) Replace(_ context.Context, p *models.Physio) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.physios[p.ID]; !ok {
		return store.ErrNotFound
	}
	if s.conflict(p) {
		return store.ErrDuplicate
	}
	s.m.physios[p.ID] = *p
	return nil
}

func (s *physios) Delete(_ context.Context, id primitive.ObjectID) (*models.Physio, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.physios[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.m.physios, id)
	return &p, nil
}

type records struct{ m *memory }

func (s *records) filter(keep func(models.Record) bool) []models.Record {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]models.Record, 0)
	for _, r := range s.m.records {
		if keep(r) {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

func (s *records) first(keep func(models.Record) bool) (*models.Record, error) {
	found := s.filter(keep)
	if len(found) == 0 {
		return nil, store.ErrNotFound
	}
	return &found[0], nil
}

func (s *records) List(_ context.Context) ([]models.Record, error) {
	return s.filter(func(models.Record) bool { return true }), nil
}

func (s *records) ListByPatients(_ context.Context, patientIDs []primitive.ObjectID) ([]models.Record, error) {
	want := map[primitive.ObjectID]bool{}
	for _, id := range patientIDs {
		want[id] = true
	}
	return s.filter(func(r models.Record) bool { return want[r.Patient] }), nil
}

func (s *records) Get(_ context.Context, id primitive.ObjectID) (*models.Record, error) {
	return s.first(func(r models.Record) bool { return r.ID == id })
}

func (s *records) GetByPatient(_ context.Context, patientID primitive.ObjectID) (*models.Record, error) {
	return s.first(func(r models.Record) bool { return r.Patient == patientID })
}

func (s *records) GetByAppointment(_ context.Context, appointmentID primitive.ObjectID) (*models.Record, error) {
	return s.first(func(r models.Record) bool { return r.FindAppointment(appointmentID) >= 0 })
}

func (s *records) ListByPhysio(_ context.Context, physioID primitive.ObjectID) ([]models.Record, error) {
	return s.filter(func(r models.Record) bool {
		for _, a := range r.Appointments {
			if a.Physio == physioID {
				return true
			}
		}
		return false
	}), nil
}

func (s *records) Create(_ context.Context, r *models.Record) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Appointments == nil {
		r.Appointments = []models.Appointment{}
	}
	if _, exists := s.m.records[r.ID]; exists {
		return store.ErrDuplicate
	}
	for _, other := range s.m.records {
		if other.Patient == r.Patient {
			return store.ErrDuplicate
		}
	}
	s.m.records[r.ID] = cloneRecord(*r)
	return nil
}

func (s *records) Delete(_ context.Context, id primitive.ObjectID) (*models.Record, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.m.records, id)
	return &r, nil
}

func (s *records) PushAppointment(_ context.Context, recordID primitive.ObjectID, a models.Appointment) (*models.Record, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.records[recordID]
	if !ok {
		return nil, store.ErrNotFound
	}
	r = cloneRecord(r)
	r.Appointments = append(r.Appointments, a)
	s.m.records[recordID] = r
	out := cloneRecord(r)
	return &out, nil
}

func (s *records) PullAppointment(_ context.Context, recordID, appointmentID, physioID primitive.ObjectID) (*models.Record, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.records[recordID]
	if !ok {
		return nil, store.ErrNotFound
	}
	i := r.FindAppointment(appointmentID)
	if i < 0 || (!physioID.IsZero() && r.Appointments[i].Physio != physioID) {
		return nil, store.ErrNotFound
	}
	r = cloneRecord(r)
	r.Appointments = append(r.Appointments[:i], r.Appointments[i+1:]...)
	s.m.records[recordID] = r
	out := cloneRecord(r)
	return &out, nil
}

type users struct{ m *memory }

func (s *users) GetByLogin(_ context.Context, login string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, u := range s.m.users {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *users) Create(_ context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	for _, other := range s.m.users {
		if other.ID == u.ID || other.Login == u.Login {
			return store.ErrDuplicate
		}
	}
	s.m.users[u.ID] = *u
	return nil
}

func (s *users) Delete(_ context.Context, id primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.m.users, id)
	return nil
}
