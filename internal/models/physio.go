package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Specialties accepted for a physio, in display order.
var Specialties = []string{"Sports", "Neurological", "Pediatric", "Geriatric", "Oncological"}

func IsSpecialty(s string) bool {
	for _, sp := range Specialties {
		if sp == s {
			return true
		}
	}
	return false
}

type Physio struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name" validate:"required,min=2,max=50"`
	Surname       string             `bson:"surname" json:"surname" validate:"required,min=2,max=50"`
	Specialty     string             `bson:"specialty" json:"specialty" validate:"specialty"`
	LicenseNumber string             `bson:"licenseNumber" json:"licenseNumber" validate:"required,license"`
	Email         string             `bson:"email" json:"email" validate:"required,email"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
}

func (p Physio) FullName() string {
	return p.Name + " " + p.Surname
}
