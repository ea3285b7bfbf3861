package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

const invalidBody = "Invalid request body."

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.Patients.List(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, patients)
}

// FindPatients searches by ?name= and ?surname=.
func (h *Handler) FindPatients(c *gin.Context) {
	f := store.NameFilter{Name: c.Query("name"), Surname: c.Query("surname")}
	patients, err := h.Patients.Search(c.Request.Context(), middleware.PrincipalFrom(c), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	detail, err := h.Patients.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, detail)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req services.PatientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	patient, err := h.Patients.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req services.PatientPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	patient, err := h.Patients.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	patient, err := h.Patients.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, patient)
}
