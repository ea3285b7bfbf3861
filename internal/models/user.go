package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleAdmin   = "admin"
	RolePhysio  = "physio"
	RolePatient = "patient"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Login     string             `bson:"login" json:"login" validate:"required,min=4"`
	Password  string             `bson:"password" json:"-"`                                   // bcrypt hash, never serialized
	Role      string             `bson:"role" json:"role" validate:"oneof=admin physio patient"` // "admin", "physio", "patient"
	SubjectID primitive.ObjectID `bson:"subjectId,omitempty" json:"subjectId"`               // Patient or Physio document, zero for admin
}
