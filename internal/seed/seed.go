// Package seed loads the demo clinic: four patients, one physio per
// specialty (two pediatric), three records with appointments and one account
// per role.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store"
)

// Demo account passwords. Change them on anything reachable from outside.
const (
	AdminPassword   = "admin1234"
	PhysioPassword  = "physio1234"
	PatientPassword = "patient1234"
)

type Summary struct {
	Patients int
	Physios  int
	Records  int
	Users    int
}

func day(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func patients() []models.Patient {
	return []models.Patient{
		{Name: "José", Surname: "López", BirthDate: day("1985-06-15T00:00:00Z"), Address: "Calle Mayor 123, Alicante", InsuranceNumber: "123456789", Email: "jose.lopez@example.com"},
		{Name: "Ana", Surname: "Pérez", BirthDate: day("1990-09-22T00:00:00Z"), Address: "Avenida del Sol 45, Valencia", InsuranceNumber: "987654321", Email: "ana.perez@example.com"},
		{Name: "Luis", Surname: "Martínez", BirthDate: day("1975-03-11T00:00:00Z"), Address: "Calle de la Luna 89, Alicante", InsuranceNumber: "456789123", Email: "luis.martinez@example.com"},
		{Name: "María", Surname: "Sanz", BirthDate: day("1992-05-30T00:00:00Z"), Address: "Plaza Mayor 22, Valencia", InsuranceNumber: "321654987", Email: "maria.sanz@example.com"},
	}
}

func physios() []models.Physio {
	return []models.Physio{
		{Name: "Javier", Surname: "Martínez", Specialty: "Sports", LicenseNumber: "A1234567", Email: "javier.martinez@example.com"},
		{Name: "Ainhoa", Surname: "Fernández", Specialty: "Neurological", LicenseNumber: "B7654321", Email: "ainhoa.fernandez@example.com"},
		{Name: "Mario", Surname: "Sánchez", Specialty: "Pediatric", LicenseNumber: "C9876543", Email: "mario.sanchez@example.com"},
		{Name: "Andrea", Surname: "Ortega", Specialty: "Pediatric", LicenseNumber: "D8796342", Email: "andrea.ortega@example.com"},
		{Name: "Ana", Surname: "Rodríguez", Specialty: "Geriatric", LicenseNumber: "E6543210", Email: "ana.rodriguez@example.com"},
		{Name: "Marcos", Surname: "Gómez", Specialty: "Oncological", LicenseNumber: "F4321098", Email: "marcos.gomez@example.com"},
	}
}

const pending = "Pendiente de evaluación"

func appointment(date string, physio primitive.ObjectID, diagnosis, treatment, observations string, price float64) models.Appointment {
	return models.Appointment{
		AppointmentID: primitive.NewObjectID(),
		Date:          day(date),
		Physio:        physio,
		Diagnosis:     diagnosis,
		Treatment:     treatment,
		Observations:  observations,
		Price:         price,
	}
}

func records(pat []models.Patient, phy []models.Physio) []models.Record {
	return []models.Record{
		{
			Patient:       pat[0].ID,
			MedicalRecord: "Paciente con antecedentes de lesiones en rodilla y cadera. Historial de múltiples intervenciones quirúrgicas en la rodilla izquierda y sesiones de fisioterapia prolongadas. Actualmente presenta molestias ocasionales al caminar largas distancias.",
			Appointments: []models.Appointment{
				appointment("2023-12-10T10:00:00Z", phy[0].ID, "Distensión de ligamentos de la rodilla", "Rehabilitación con ejercicios de fortalecimiento", "Se recomienda evitar actividad intensa por 6 semanas", 150),
				appointment("2024-01-15T14:00:00Z", phy[0].ID, "Mejoría notable, sin dolor agudo", "Continuar con ejercicios, añadir movilidad funcional", "Próxima revisión en un mes", 120),
				appointment("2025-06-01T09:00:00Z", phy[0].ID, pending, pending, pending, 100),
				appointment("2025-07-15T11:30:00Z", phy[0].ID, pending, pending, pending, 80),
			},
		},
		{
			Patient:       pat[1].ID,
			MedicalRecord: "Paciente con problemas neuromusculares desde la infancia. Ha recibido múltiples tratamientos para mejorar la movilidad y reducir la rigidez muscular. Actualmente en seguimiento para evaluar progresos.",
			Appointments: []models.Appointment{
				appointment("2023-11-20T09:30:00Z", phy[1].ID, "Debilidad muscular en miembros inferiores", "Terapia neuromuscular y estiramientos", "Revisar la evolución en 3 semanas", 90),
				appointment("2024-02-15T10:00:00Z", phy[1].ID, "Mejoría en la fuerza muscular, pero persiste rigidez", "Añadir ejercicios de resistencia y movilidad", "Próxima revisión en 6 semanas", 110),
				appointment("2025-05-20T15:00:00Z", phy[1].ID, pending, pending, pending, 130),
				appointment("2025-06-25T10:30:00Z", phy[1].ID, pending, pending, pending, 140),
			},
		},
		{
			Patient:       pat[2].ID,
			MedicalRecord: "Lesión de hombro recurrente con movilidad limitada. Historial de tendinitis crónica en el manguito rotador. Tratamientos previos han mostrado mejorías temporales.",
			Appointments: []models.Appointment{
				appointment("2023-10-05T08:00:00Z", phy[2].ID, "Tendinitis en el manguito rotador", "Ejercicios de movilidad y fortalecimiento", "Revisar en 4 semanas", 70),
				appointment("2024-01-25T09:00:00Z", phy[2].ID, "Mejoría en la movilidad, pero persiste dolor leve", "Continuar con ejercicios y añadir terapia manual", "Próxima revisión en 2 meses", 60),
				appointment("2025-06-10T14:00:00Z", phy[2].ID, pending, pending, pending, 50),
				appointment("2025-07-20T16:00:00Z", phy[2].ID, pending, pending, pending, 40),
			},
		},
	}
}

// Load writes the demo data into st. It expects empty collections; unique
// conflicts with existing documents are reported as errors.
func Load(ctx context.Context, st *store.Store, auth *services.AuthService) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	sum := &Summary{}

	pat := patients()
	for i := range pat {
		if err := st.Patients.Create(ctx, &pat[i]); err != nil {
			return sum, fmt.Errorf("adding patient %s: %w", pat[i].FullName(), err)
		}
		sum.Patients++
	}
	logger.Info().Int("count", sum.Patients).Msg("added patients")

	phy := physios()
	for i := range phy {
		if err := st.Physios.Create(ctx, &phy[i]); err != nil {
			return sum, fmt.Errorf("adding physio %s: %w", phy[i].FullName(), err)
		}
		sum.Physios++
	}
	logger.Info().Int("count", sum.Physios).Msg("added physios")

	for _, r := range records(pat, phy) {
		if err := st.Records.Create(ctx, &r); err != nil {
			return sum, fmt.Errorf("adding record: %w", err)
		}
		sum.Records++
	}
	logger.Info().Int("count", sum.Records).Msg("added records")

	accounts := []services.UserInput{
		{Login: "admin", Password: AdminPassword, Role: models.RoleAdmin},
		{Login: "physio", Password: PhysioPassword, Role: models.RolePhysio, SubjectID: phy[0].ID.Hex()},
		{Login: "patient", Password: PatientPassword, Role: models.RolePatient, SubjectID: pat[0].ID.Hex()},
	}
	for _, in := range accounts {
		if _, err := auth.CreateUser(ctx, in); err != nil {
			return sum, fmt.Errorf("adding user %s: %w", in.Login, err)
		}
		sum.Users++
	}
	logger.Info().Int("count", sum.Users).Msg("added users")
	return sum, nil
}
