// Package policy decides who may do what. Decide is pure: it only looks at the
// caller and a description of the resource, never at the request or the store.
package policy

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/models"
)

type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RolePhysio
	RolePatient
)

// ParseRole maps a stored role name to a Role. Unrecognised names give RoleUnknown.
func ParseRole(s string) Role {
	switch s {
	case models.RoleAdmin:
		return RoleAdmin
	case models.RolePhysio:
		return RolePhysio
	case models.RolePatient:
		return RolePatient
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return models.RoleAdmin
	case RolePhysio:
		return models.RolePhysio
	case RolePatient:
		return models.RolePatient
	default:
		return "unknown"
	}
}

// Principal is the authenticated caller. ID is the patient or physio document
// the caller's account is linked to; it is zero for admins.
type Principal struct {
	Role  Role
	ID    primitive.ObjectID
	Login string
}

func Admin() Principal {
	return Principal{Role: RoleAdmin}
}

func Physio(id primitive.ObjectID) Principal {
	return Principal{Role: RolePhysio, ID: id}
}

func Patient(id primitive.ObjectID) Principal {
	return Principal{Role: RolePatient, ID: id}
}

type Action int

const (
	ListPatients Action = iota + 1
	ReadPatient
	WritePatient
	ReadPhysio
	WritePhysio
	ListRecords
	ReadRecord
	WriteRecord
	DeleteAppointment
)

var actionNames = map[Action]string{
	ListPatients:      "list_patients",
	ReadPatient:       "read_patient",
	WritePatient:      "write_patient",
	ReadPhysio:        "read_physio",
	WritePhysio:       "write_physio",
	ListRecords:       "list_records",
	ReadRecord:        "read_record",
	WriteRecord:       "write_record",
	DeleteAppointment: "delete_appointment",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// Resource describes ownership of the thing being accessed. Zero ids mean
// "not applicable" and never match a caller.
type Resource struct {
	OwnerPatientID      primitive.ObjectID
	AppointmentPhysioID primitive.ObjectID
}

// Owned is the resource belonging to a patient.
func Owned(patientID primitive.ObjectID) Resource {
	return Resource{OwnerPatientID: patientID}
}

// AppointmentBy is an appointment scheduled under a physio.
func AppointmentBy(physioID primitive.ObjectID) Resource {
	return Resource{AppointmentPhysioID: physioID}
}

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

func Decide(p Principal, a Action, r Resource) Decision {
	switch p.Role {
	case RoleAdmin:
		return Allow
	case RolePhysio:
		return decidePhysio(p, a, r)
	case RolePatient:
		return decidePatient(p, a, r)
	default:
		return Deny
	}
}

func decidePhysio(p Principal, a Action, r Resource) Decision {
	switch a {
	case WritePhysio:
		return Deny
	case DeleteAppointment:
		if sameID(p.ID, r.AppointmentPhysioID) {
			return Allow
		}
		return Deny
	case ListPatients, ReadPatient, WritePatient, ReadPhysio, ListRecords, ReadRecord, WriteRecord:
		return Allow
	default:
		return Deny
	}
}

func decidePatient(p Principal, a Action, r Resource) Decision {
	switch a {
	case ReadPhysio:
		return Allow
	case ReadPatient, ReadRecord:
		if sameID(p.ID, r.OwnerPatientID) {
			return Allow
		}
		return Deny
	default:
		return Deny
	}
}

func sameID(a, b primitive.ObjectID) bool {
	return !a.IsZero() && a == b
}
