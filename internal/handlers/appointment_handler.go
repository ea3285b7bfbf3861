package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

// ListAppointments returns every appointment of every record, newest first.
func (h *Handler) ListAppointments(c *gin.Context) {
	apps, err := h.Records.ListAppointments(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, apps)
}

func (h *Handler) GetPatientAppointments(c *gin.Context) {
	apps, err := h.Records.AppointmentsByPatient(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("patientId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, apps)
}

func (h *Handler) CountPatientAppointments(c *gin.Context) {
	n, err := h.Records.CountAppointments(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("patientId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondField(c, http.StatusOK, "count", n)
}

func (h *Handler) GetPhysioAppointments(c *gin.Context) {
	apps, err := h.Records.AppointmentsByPhysio(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("physioId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, apps)
}

// CreateAppointment books into the record given by :id and returns the
// updated record.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req services.AppointmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	record, _, err := h.Records.AddAppointment(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, record)
}

// CreatePatientAppointment books into the record of :patientId.
func (h *Handler) CreatePatientAppointment(c *gin.Context) {
	var req services.AppointmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	record, _, err := h.Records.AddAppointmentByPatient(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("patientId"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, record)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	record, err := h.Records.DeleteAppointment(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), c.Param("appointmentId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, record)
}

// CancelAppointmentByID removes an appointment without knowing its record.
func (h *Handler) CancelAppointmentByID(c *gin.Context) {
	record, err := h.Records.DeleteAppointmentByID(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("appointmentId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, record)
}
