package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/models"
	"github.com/harentsoaR/physiocare-api/internal/revocation"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/store/memstore"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

const base = "/api/physioweb"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// memRevoker is a revocation.Revoker backed by a map.
type memRevoker map[string]bool

func (m memRevoker) Revoke(_ context.Context, id string, _ time.Time) error {
	m[id] = true
	return nil
}

func (m memRevoker) IsRevoked(_ context.Context, id string) (bool, error) { return m[id], nil }

var _ revocation.Revoker = memRevoker{}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	st     *store.Store
	ana    models.Patient
	jose   models.Patient
	javier models.Physio
	ainhoa models.Physio
	record models.Record
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	api := &testAPI{t: t, st: st}

	api.ana = models.Patient{Name: "Ana", Surname: "Pérez", BirthDate: time.Date(1985, 9, 22, 0, 0, 0, 0, time.UTC), InsuranceNumber: "987654321", Email: "ana.perez@example.com"}
	api.jose = models.Patient{Name: "José", Surname: "López", BirthDate: time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC), InsuranceNumber: "123456789", Email: "jose.lopez@example.com"}
	require.NoError(t, st.Patients.Create(ctx, &api.ana))
	require.NoError(t, st.Patients.Create(ctx, &api.jose))
	api.javier = models.Physio{Name: "Javier", Surname: "Martínez", Specialty: "Sports", LicenseNumber: "A1234567", Email: "javier@example.com"}
	api.ainhoa = models.Physio{Name: "Ainhoa", Surname: "Fernández", Specialty: "Neurological", LicenseNumber: "B7654321", Email: "ainhoa@example.com"}
	require.NoError(t, st.Physios.Create(ctx, &api.javier))
	require.NoError(t, st.Physios.Create(ctx, &api.ainhoa))
	api.record = models.Record{Patient: api.ana.ID, MedicalRecord: "Chronic lower back pain."}
	require.NoError(t, st.Records.Create(ctx, &api.record))

	tokens := utils.NewTokenService("handler-test-secret", time.Hour)
	revoker := memRevoker{}
	auth := services.NewAuthService(st, tokens, revoker)
	for _, u := range []services.UserInput{
		{Login: "admin", Password: "admin1234", Role: models.RoleAdmin},
		{Login: "javier", Password: "javier1234", Role: models.RolePhysio, SubjectID: api.javier.ID.Hex()},
		{Login: "ainhoa", Password: "ainhoa1234", Role: models.RolePhysio, SubjectID: api.ainhoa.ID.Hex()},
		{Login: "anaperez", Password: "ana12345", Role: models.RolePatient, SubjectID: api.ana.ID.Hex()},
		{Login: "joselopez", Password: "jose12345", Role: models.RolePatient, SubjectID: api.jose.ID.Hex()},
	} {
		_, err := auth.CreateUser(ctx, u)
		require.NoError(t, err)
	}

	h := NewHandler(
		services.NewPatientService(st),
		services.NewPhysioService(st),
		services.NewRecordService(st, nil),
		auth,
		fakePinger{},
	)
	api.router = NewRouter(h, RouterConfig{
		BasePath:    base,
		CORSOrigins: []string{"http://localhost:4200"},
		Logger:      zerolog.Nop(),
		Auth:        middleware.AuthMiddleware(tokens, revoker),
	})
	return api
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, base+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(login, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/login", "", map[string]string{"login": login, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		OK    bool   `json:"ok"`
		Token string `json:"token"`
	}
	decode(a.t, w, &body)
	require.True(a.t, body.OK)
	return body.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	return body.Message
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	assert.NotEmpty(t, api.login("admin", "admin1234"))

	w := api.do(http.MethodPost, "/auth/login", "", map[string]string{"login": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect login.", messageOf(t, w))

	w = api.do(http.MethodPost, "/auth/login", "", map[string]string{"login": "ghost", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeAndLogout(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("anaperez", "ana12345")

	w := api.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Result map[string]interface{} `json:"result"`
	}
	decode(t, w, &me)
	assert.Equal(t, "anaperez", me.Result["login"])
	assert.NotContains(t, me.Result, "password")

	w = api.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/patients", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEmpty(t, messageOf(t, w))

	w = api.do(http.MethodGet, "/patients", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPatientEndpointsByRole(t *testing.T) {
	api := newTestAPI(t)
	ana := api.login("anaperez", "ana12345")
	physio := api.login("javier", "javier1234")

	w := api.do(http.MethodGet, "/patients", ana, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/patients", physio, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		OK     bool             `json:"ok"`
		Result []models.Patient `json:"result"`
	}
	decode(t, w, &list)
	assert.True(t, list.OK)
	assert.Len(t, list.Result, 2)

	w = api.do(http.MethodGet, "/patients/"+api.ana.ID.Hex(), ana, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/patients/"+api.jose.ID.Hex(), ana, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/patients/find?surname=REZ", physio, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/patients/find?surname=nobody", physio, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/patients", physio, map[string]string{
		"name": "María", "surname": "Sanz", "birthDate": "1988-07-10",
		"insuranceNumber": "321654987", "email": "maria.sanz@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/patients", physio, map[string]string{
		"name": "María", "surname": "Sanz", "birthDate": "1988-07-10",
		"insuranceNumber": "bad", "email": "maria2@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/patients/"+api.ana.ID.Hex(), physio, map[string]string{"_id": api.jose.ID.Hex()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhysioEndpoints(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin", "admin1234")
	physio := api.login("javier", "javier1234")
	ana := api.login("anaperez", "ana12345")

	w := api.do(http.MethodGet, "/physios/find?specialty=sports", ana, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := map[string]string{
		"name": "Marcos", "surname": "Gómez", "specialty": "Oncological",
		"licenseNumber": "F4321098", "email": "marcos.gomez@example.com",
	}
	w = api.do(http.MethodPost, "/physios", physio, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/physios", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Result models.Physio `json:"result"`
	}
	decode(t, w, &created)

	w = api.do(http.MethodDelete, "/physios/"+created.Result.ID.Hex(), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/physios/"+created.Result.ID.Hex(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Javier books Ana, Ana sees it, Ainhoa cannot cancel it, Javier can.
func TestAppointmentFlow(t *testing.T) {
	api := newTestAPI(t)
	javier := api.login("javier", "javier1234")
	ainhoa := api.login("ainhoa", "ainhoa1234")
	ana := api.login("anaperez", "ana12345")
	admin := api.login("admin", "admin1234")

	booking := map[string]interface{}{
		"date":      "2024-03-01",
		"diagnosis": "Lumbar muscle strain after lifting",
		"treatment": "Manual therapy and core exercises",
		"price":     40,
	}
	w := api.do(http.MethodPost, "/records/"+api.record.ID.Hex()+"/appointments", javier, booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec struct {
		Result models.Record `json:"result"`
	}
	decode(t, w, &rec)
	require.Len(t, rec.Result.Appointments, 1)
	apt := rec.Result.Appointments[0]
	assert.Equal(t, api.javier.ID, apt.Physio)

	w = api.do(http.MethodPost, "/records/"+api.record.ID.Hex()+"/appointments", ana, booking)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/records/patient/"+api.ana.ID.Hex()+"/appointments", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var apps struct {
		Result []models.AppointmentDetail `json:"result"`
	}
	decode(t, w, &apps)
	require.Len(t, apps.Result, 1)
	assert.Equal(t, "Javier Martínez", apps.Result[0].PhysioName)

	w = api.do(http.MethodGet, "/records/patient/"+api.ana.ID.Hex()+"/appointments/count", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"count":1}`, w.Body.String())

	w = api.do(http.MethodGet, "/records/patient/"+api.ana.ID.Hex()+"/id", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"recordId":"`+api.record.ID.Hex()+`"}`, w.Body.String())

	w = api.do(http.MethodGet, "/records/patient/"+api.ana.ID.Hex(), api.login("joselopez", "jose12345"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/records/appointments/physio/"+api.javier.ID.Hex(), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/records/appointments/physio/not-an-id", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/records/appointments", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	path := "/records/" + api.record.ID.Hex() + "/appointments/" + apt.AppointmentID.Hex()
	w = api.do(http.MethodDelete, path, ainhoa, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, path, javier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &rec)
	assert.Empty(t, rec.Result.Appointments)

	w = api.do(http.MethodDelete, "/records/appointments/"+apt.AppointmentID.Hex(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordEndpoints(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin", "admin1234")

	w := api.do(http.MethodPost, "/records", admin, map[string]string{"patient": api.jose.ID.Hex(), "medicalRecord": "Knee surgery."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/records", admin, map[string]string{"patient": api.jose.ID.Hex()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/records/patient/"+api.jose.ID.Hex()+"/appointments", admin, map[string]interface{}{
		"date":      "2024-06-01T09:30:00Z",
		"physio":    api.ainhoa.ID.Hex(),
		"diagnosis": "Post-operative knee stiffness",
		"treatment": "Mobilisation",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/records/find?name=jos", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/records", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Result []models.RecordDetail `json:"result"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Result, 2)

	w = api.do(http.MethodDelete, "/records/"+api.record.ID.Hex(), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/records/"+api.record.ID.Hex(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterIsAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]string{"login": "newphysio", "password": "secret123", "role": "physio", "subjectId": api.ainhoa.ID.Hex()}

	w := api.do(http.MethodPost, "/auth/register", api.login("javier", "javier1234"), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/auth/register", api.login("admin", "admin1234"), body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, api.login("newphysio", "secret123"))
}

func TestMalformedBody(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, base+"/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, invalidBody, messageOf(t, w))
}

func TestHealth(t *testing.T) {
	h := &Handler{DB: fakePinger{}}
	r := NewRouter(h, RouterConfig{BasePath: base, Logger: zerolog.Nop(), Auth: func(c *gin.Context) { c.Next() }})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	h.DB = fakePinger{err: errors.New("connection refused")}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
