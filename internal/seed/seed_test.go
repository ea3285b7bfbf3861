package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/physiocare-api/internal/policy"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/store/memstore"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	auth := services.NewAuthService(st, utils.NewTokenService("seed-secret", time.Hour), nil)

	sum, err := Load(ctx, st, auth)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Patients: 4, Physios: 6, Records: 3, Users: 3}, sum)

	pediatric, err := st.Physios.List(ctx, store.PhysioFilter{Specialty: "Pediatric"})
	require.NoError(t, err)
	assert.Len(t, pediatric, 2)

	// The demo patient account can read its own appointments.
	token, err := auth.Login(ctx, "patient", PatientPassword)
	require.NoError(t, err)
	claims, ok := utils.NewTokenService("seed-secret", time.Hour).Validate(token)
	require.True(t, ok)

	patient, err := st.Users.GetByLogin(ctx, "patient")
	require.NoError(t, err)
	assert.Equal(t, claims.SubjectID, patient.SubjectID.Hex())

	apps, err := services.NewRecordService(st, nil).AppointmentsByPatient(ctx, policy.Patient(patient.SubjectID), claims.SubjectID)
	require.NoError(t, err)
	require.Len(t, apps, 4)
	assert.Equal(t, 2025, apps[0].Date.Year())
	assert.Equal(t, "Javier Martínez", apps[0].PhysioName)
}

func TestLoadTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	auth := services.NewAuthService(st, utils.NewTokenService("seed-secret", time.Hour), nil)

	_, err := Load(ctx, st, auth)
	require.NoError(t, err)
	_, err = Load(ctx, st, auth)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}
