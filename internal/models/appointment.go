package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment is one treatment session, stored inside its Record's appointments array.
type Appointment struct {
	AppointmentID primitive.ObjectID `bson:"appointmentId" json:"appointmentId"`
	Date          time.Time          `bson:"date" json:"date" validate:"required"`
	Physio        primitive.ObjectID `bson:"physio" json:"physio" validate:"required"`
	Diagnosis     string             `bson:"diagnosis" json:"diagnosis" validate:"required,min=10,max=500"`
	Treatment     string             `bson:"treatment" json:"treatment" validate:"required"`
	Observations  string             `bson:"observations,omitempty" json:"observations,omitempty" validate:"max=500"`
	Price         float64            `bson:"price" json:"price"`
}

// AppointmentDetail is an appointment as returned to clients, with names resolved.
type AppointmentDetail struct {
	Appointment
	RecordID    primitive.ObjectID `json:"recordId"`
	PatientID   primitive.ObjectID `json:"patientId"`
	PatientName string             `json:"patientName,omitempty"`
	PhysioName  string             `json:"physioName,omitempty"`
}
