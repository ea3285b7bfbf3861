// Package services holds the clinic use cases. Every method takes the caller
// as an explicit policy.Principal and returns *apperr.Error values that the
// HTTP layer maps onto status codes.
package services

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/apperr"
	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/policy"
	"github.com/harentsoaR/physiocare-api/internal/store"
)

const accessDenied = "Access denied."

// authorize asks the policy and logs denials.
func authorize(ctx context.Context, who policy.Principal, action policy.Action, res policy.Resource) error {
	if policy.Decide(who, action, res).Allowed() {
		return nil
	}
	zerolog.Ctx(ctx).Warn().
		Str("role", who.Role.String()).
		Str("subject_id", who.ID.Hex()).
		Str("action", action.String()).
		Msg("access denied")
	return apperr.Forbidden(accessDenied)
}

// storeErr maps store sentinels onto the taxonomy.
func storeErr(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Validation("A document with the same unique field already exists.", err)
	default:
		return apperr.Internal("store failure", err)
	}
}

// names resolves the display names referenced from records.
type names struct {
	patients store.PatientStore
	physios  store.PhysioStore
}

func (n names) lookup(ctx context.Context, recs []models.Record) (map[primitive.ObjectID]models.Patient, map[primitive.ObjectID]models.Physio, error) {
	var patientIDs, physioIDs []primitive.ObjectID
	seenPatient := map[primitive.ObjectID]bool{}
	seenPhysio := map[primitive.ObjectID]bool{}
	for _, r := range recs {
		if !seenPatient[r.Patient] {
			seenPatient[r.Patient] = true
			patientIDs = append(patientIDs, r.Patient)
		}
		for _, a := range r.Appointments {
			if !seenPhysio[a.Physio] {
				seenPhysio[a.Physio] = true
				physioIDs = append(physioIDs, a.Physio)
			}
		}
	}

	patients, err := n.patients.GetMany(ctx, patientIDs)
	if err != nil {
		return nil, nil, apperr.Internal("resolving patients", err)
	}
	physios, err := n.physios.GetMany(ctx, physioIDs)
	if err != nil {
		return nil, nil, apperr.Internal("resolving physios", err)
	}
	return patients, physios, nil
}

// records expands records into RecordDetails with every name filled in.
func (n names) records(ctx context.Context, recs []models.Record) ([]models.RecordDetail, error) {
	patients, physios, err := n.lookup(ctx, recs)
	if err != nil {
		return nil, err
	}
	out := make([]models.RecordDetail, 0, len(recs))
	for _, r := range recs {
		out = append(out, detail(r, patients, physios))
	}
	return out, nil
}

func detail(r models.Record, patients map[primitive.ObjectID]models.Patient, physios map[primitive.ObjectID]models.Physio) models.RecordDetail {
	d := models.RecordDetail{
		ID:            r.ID,
		Patient:       r.Patient,
		MedicalRecord: r.MedicalRecord,
		Appointments:  make([]models.AppointmentDetail, 0, len(r.Appointments)),
	}
	p, hasPatient := patients[r.Patient]
	if hasPatient {
		d.PatientName = p.FullName()
	}
	for _, a := range r.Appointments {
		ad := models.AppointmentDetail{
			Appointment: a,
			RecordID:    r.ID,
			PatientID:   r.Patient,
			PatientName: d.PatientName,
		}
		if ph, ok := physios[a.Physio]; ok {
			ad.PhysioName = ph.FullName()
		}
		d.Appointments = append(d.Appointments, ad)
	}
	return d
}

// sortNewestFirst orders appointments by date, most recent first.
func sortNewestFirst(apps []models.AppointmentDetail) {
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Date.After(apps[j].Date)
	})
}
