package handlers

import (
	"context"

	"github.com/harentsoaR/physiocare-api/internal/services"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services the HTTP endpoints delegate to. Every endpoint is
// a method on it.
type Handler struct {
	Patients *services.PatientService
	Physios  *services.PhysioService
	Records  *services.RecordService
	Auth     *services.AuthService
	DB       Pinger
}

func NewHandler(patients *services.PatientService, physios *services.PhysioService, records *services.RecordService, auth *services.AuthService, db Pinger) *Handler {
	return &Handler{
		Patients: patients,
		Physios:  physios,
		Records:  records,
		Auth:     auth,
		DB:       db,
	}
}
