package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Record is a patient's medical file. It is the only owner of its appointments:
// they are added and removed through the record and have no collection of their own.
type Record struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Patient       primitive.ObjectID `bson:"patient" json:"patient" validate:"required"`
	MedicalRecord string             `bson:"medicalRecord,omitempty" json:"medicalRecord,omitempty" validate:"max=1000"`
	Appointments  []Appointment      `bson:"appointments" json:"appointments"`
}

// FindAppointment returns the index of the appointment with the given id, or -1.
func (r *Record) FindAppointment(id primitive.ObjectID) int {
	for i, a := range r.Appointments {
		if a.AppointmentID == id {
			return i
		}
	}
	return -1
}

// RecordDetail is a record with the display names of everyone it references resolved.
type RecordDetail struct {
	ID            primitive.ObjectID  `json:"id"`
	Patient       primitive.ObjectID  `json:"patient"`
	PatientName   string              `json:"patientName,omitempty"`
	MedicalRecord string              `json:"medicalRecord,omitempty"`
	Appointments  []AppointmentDetail `json:"appointments"`
}
