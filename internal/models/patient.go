package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Patient struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name" validate:"required,min=2,max=50"`
	Surname         string             `bson:"surname" json:"surname" validate:"required,min=2,max=50"`
	BirthDate       time.Time          `bson:"birthDate" json:"birthDate" validate:"required"`
	Address         string             `bson:"address,omitempty" json:"address,omitempty" validate:"max=100"`
	InsuranceNumber string             `bson:"insuranceNumber" json:"insuranceNumber" validate:"required,insurance"`
	Email           string             `bson:"email" json:"email" validate:"required,email"`
	Image           string             `bson:"image,omitempty" json:"image,omitempty"`
}

// FullName is the display name used when a patient is referenced from an appointment.
func (p Patient) FullName() string {
	return p.Name + " " + p.Surname
}
