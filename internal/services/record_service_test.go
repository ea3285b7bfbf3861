package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
	"github.com/harentsoaR/physiocare-api/internal/policy"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/store/memstore"
)

func booking(date string) AppointmentInput {
	return AppointmentInput{
		Date:      date,
		Diagnosis: "Lumbar muscle strain after lifting",
		Treatment: "Manual therapy and core exercises",
	}
}

func TestRecordCreate(t *testing.T) {
	c := newClinic(t)
	svc := c.records()
	ctx := context.Background()

	rec, err := svc.Create(ctx, policy.Physio(c.javier.ID), RecordInput{Patient: c.jose.ID.Hex(), MedicalRecord: "Knee surgery in 2019."})
	require.NoError(t, err)
	assert.Equal(t, c.jose.ID, rec.Patient)
	assert.NotNil(t, rec.Appointments)
	assert.Empty(t, rec.Appointments)

	_, err = svc.Create(ctx, policy.Admin(), RecordInput{Patient: c.jose.ID.Hex()})
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.Create(ctx, policy.Admin(), RecordInput{Patient: primitive.NewObjectID().Hex()})
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.Create(ctx, policy.Admin(), RecordInput{Patient: "123"})
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.Create(ctx, policy.Patient(c.jose.ID), RecordInput{Patient: c.jose.ID.Hex()})
	assertKind(t, apperr.KindAuthorizationDenied, err)
}

// A physio books Ana, Ana reads her own appointments, and only the booking
// physio or an admin can cancel them.
func TestAppointmentLifecycle(t *testing.T) {
	c := newClinic(t)
	svc := c.records()
	ctx := context.Background()
	javier := policy.Physio(c.javier.ID)
	ainhoa := policy.Physio(c.ainhoa.ID)
	ana := policy.Patient(c.ana.ID)

	in := booking("2024-03-01")
	in.Physio = c.ainhoa.ID.Hex()
	price := 45.0
	in.Price = &price
	rec, first, err := svc.AddAppointment(ctx, javier, c.anaRec.ID.Hex(), in)
	require.NoError(t, err)
	assert.Equal(t, c.javier.ID, first.Physio, "a physio always books under their own id")
	assert.False(t, first.AppointmentID.IsZero())
	assert.Equal(t, 45.0, first.Price)
	assert.Len(t, rec.Appointments, 1)

	_, second, err := svc.AddAppointmentByPatient(ctx, ainhoa, c.ana.ID.Hex(), booking("2024-04-10"))
	require.NoError(t, err)
	assert.Zero(t, second.Price)

	apps, err := svc.AppointmentsByPatient(ctx, ana, c.ana.ID.Hex())
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, second.AppointmentID, apps[0].AppointmentID, "newest first")
	assert.Equal(t, "Ainhoa Fernández", apps[0].PhysioName)
	assert.Equal(t, "Javier Martínez", apps[1].PhysioName)
	assert.Equal(t, "Ana Pérez", apps[1].PatientName)

	n, err := svc.CountAppointments(ctx, ana, c.ana.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.AppointmentsByPatient(ctx, policy.Patient(c.jose.ID), c.ana.ID.Hex())
	assertKind(t, apperr.KindAuthorizationDenied, err)

	_, err = svc.DeleteAppointment(ctx, ana, c.anaRec.ID.Hex(), first.AppointmentID.Hex())
	assertKind(t, apperr.KindAuthorizationDenied, err)

	_, err = svc.DeleteAppointment(ctx, ainhoa, c.anaRec.ID.Hex(), first.AppointmentID.Hex())
	assertKind(t, apperr.KindAuthorizationDenied, err)

	rec, err = svc.DeleteAppointment(ctx, javier, c.anaRec.ID.Hex(), first.AppointmentID.Hex())
	require.NoError(t, err)
	require.Len(t, rec.Appointments, 1)
	assert.Equal(t, second.AppointmentID, rec.Appointments[0].AppointmentID)

	_, err = svc.DeleteAppointment(ctx, javier, c.anaRec.ID.Hex(), first.AppointmentID.Hex())
	assertKind(t, apperr.KindNotFound, err)

	rec, err = svc.DeleteAppointmentByID(ctx, policy.Admin(), second.AppointmentID.Hex())
	require.NoError(t, err)
	assert.Empty(t, rec.Appointments)

	apps, err = svc.AppointmentsByPatient(ctx, ana, c.ana.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, apps)

	c.notifier.mu.Lock()
	defer c.notifier.mu.Unlock()
	assert.Len(t, c.notifier.sent, 2)
	assert.Equal(t, "Ana Pérez / Javier Martínez", c.notifier.names[0])
}

func TestAddAppointmentValidation(t *testing.T) {
	c := newClinic(t)
	svc := c.records()
	ctx := context.Background()

	_, _, err := svc.AddAppointment(ctx, policy.Admin(), c.anaRec.ID.Hex(), booking("2024-03-01"))
	assertKind(t, apperr.KindValidation, err)

	in := booking("2024-03-01")
	in.Physio = primitive.NewObjectID().Hex()
	_, _, err = svc.AddAppointment(ctx, policy.Admin(), c.anaRec.ID.Hex(), in)
	assertKind(t, apperr.KindValidation, err)

	in.Physio = c.javier.ID.Hex()
	in.Diagnosis = "short"
	_, _, err = svc.AddAppointment(ctx, policy.Admin(), c.anaRec.ID.Hex(), in)
	assertKind(t, apperr.KindValidation, err)
	assert.Contains(t, err.Error(), "diagnosis")

	in = booking("yesterday")
	_, _, err = svc.AddAppointment(ctx, policy.Physio(c.javier.ID), c.anaRec.ID.Hex(), in)
	assertKind(t, apperr.KindValidation, err)

	_, _, err = svc.AddAppointment(ctx, policy.Physio(c.javier.ID), primitive.NewObjectID().Hex(), booking("2024-03-01"))
	assertKind(t, apperr.KindNotFound, err)

	_, _, err = svc.AddAppointmentByPatient(ctx, policy.Physio(c.javier.ID), c.jose.ID.Hex(), booking("2024-03-01"))
	assertKind(t, apperr.KindNotFound, err)

	_, _, err = svc.AddAppointment(ctx, policy.Patient(c.ana.ID), c.anaRec.ID.Hex(), booking("2024-03-01"))
	assertKind(t, apperr.KindAuthorizationDenied, err)
}

func TestConcurrentBookingsAreAllKept(t *testing.T) {
	c := newClinic(t)
	svc := c.records()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			who := policy.Physio(c.javier.ID)
			if i%2 == 1 {
				who = policy.Physio(c.ainhoa.ID)
			}
			_, _, err := svc.AddAppointment(ctx, who, c.anaRec.ID.Hex(), booking(fmt.Sprintf("2024-05-%02d", i+1)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := svc.CountAppointments(ctx, policy.Admin(), c.ana.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestRecordReads(t *testing.T) {
	c := newClinic(t)
	svc := c.records()
	ctx := context.Background()

	_, apt, err := svc.AddAppointment(ctx, policy.Physio(c.javier.ID), c.anaRec.ID.Hex(), booking("2024-03-01"))
	require.NoError(t, err)

	list, err := svc.List(ctx, policy.Physio(c.ainhoa.ID))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.List(ctx, policy.Patient(c.ana.ID))
	assertKind(t, apperr.KindAuthorizationDenied, err)

	found, err := svc.Search(ctx, policy.Admin(), store.NameFilter{Name: "ANA"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.anaRec.ID, found[0].ID)

	_, err = svc.Search(ctx, policy.Admin(), store.NameFilter{Name: "José"})
	assertKind(t, apperr.KindNotFound, err)

	_, err = svc.Search(ctx, policy.Admin(), store.NameFilter{Name: "Nobody"})
	assertKind(t, apperr.KindNotFound, err)

	d, err := svc.Get(ctx, policy.Patient(c.ana.ID), c.anaRec.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Javier Martínez", d.Appointments[0].PhysioName)

	_, err = svc.Get(ctx, policy.Patient(c.jose.ID), c.anaRec.ID.Hex())
	assertKind(t, apperr.KindAuthorizationDenied, err)

	d, err = svc.GetByPatient(ctx, policy.Admin(), c.ana.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, c.anaRec.ID, d.ID)

	_, err = svc.GetByPatient(ctx, policy.Admin(), c.jose.ID.Hex())
	assertKind(t, apperr.KindNotFound, err)

	id, err := svc.RecordIDByPatient(ctx, policy.Patient(c.ana.ID), c.ana.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, c.anaRec.ID, id)

	_, err = svc.CountAppointments(ctx, policy.Admin(), c.jose.ID.Hex())
	assertKind(t, apperr.KindNotFound, err)

	all, err := svc.ListAppointments(ctx, policy.Admin())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, apt.AppointmentID, all[0].AppointmentID)
	assert.Equal(t, c.anaRec.ID, all[0].RecordID)
}

func TestAppointmentsByPhysio(t *testing.T) {
	c := newClinic(t)
	svc := c.records()
	ctx := context.Background()

	_, _, err := svc.AddAppointment(ctx, policy.Physio(c.javier.ID), c.anaRec.ID.Hex(), booking("2024-03-01"))
	require.NoError(t, err)
	_, _, err = svc.AddAppointment(ctx, policy.Physio(c.ainhoa.ID), c.anaRec.ID.Hex(), booking("2024-03-02"))
	require.NoError(t, err)

	apps, err := svc.AppointmentsByPhysio(ctx, policy.Admin(), c.javier.ID.Hex())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Ana Pérez", apps[0].PatientName)
	assert.Equal(t, "Javier Martínez", apps[0].PhysioName)

	_, err = svc.AppointmentsByPhysio(ctx, policy.Admin(), "zzz")
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.AppointmentsByPhysio(ctx, policy.Admin(), primitive.NewObjectID().Hex())
	assertKind(t, apperr.KindNotFound, err)

	_, err = svc.AppointmentsByPhysio(ctx, policy.Patient(c.ana.ID), c.javier.ID.Hex())
	assertKind(t, apperr.KindAuthorizationDenied, err)
}

func TestRecordDelete(t *testing.T) {
	c := newClinic(t)
	svc := c.records()
	ctx := context.Background()

	_, err := svc.Delete(ctx, policy.Patient(c.ana.ID), c.anaRec.ID.Hex())
	assertKind(t, apperr.KindAuthorizationDenied, err)

	rec, err := svc.Delete(ctx, policy.Physio(c.javier.ID), c.anaRec.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, c.anaRec.ID, rec.ID)

	_, err = svc.Delete(ctx, policy.Admin(), c.anaRec.ID.Hex())
	assertKind(t, apperr.KindNotFound, err)

	_, err = svc.List(ctx, policy.Admin())
	assertKind(t, apperr.KindNotFound, err)
}

func TestListAppointmentsEmpty(t *testing.T) {
	svc := NewRecordService(memstore.New(), nil)
	_, err := svc.ListAppointments(context.Background(), policy.Admin())
	assertKind(t, apperr.KindNotFound, err)
}
