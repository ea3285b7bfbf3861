package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.Records.List(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, records)
}

// FindRecords searches records by the patient's ?name= and ?surname=.
func (h *Handler) FindRecords(c *gin.Context) {
	f := store.NameFilter{Name: c.Query("name"), Surname: c.Query("surname")}
	records, err := h.Records.Search(c.Request.Context(), middleware.PrincipalFrom(c), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, records)
}

func (h *Handler) GetRecord(c *gin.Context) {
	record, err := h.Records.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, record)
}

func (h *Handler) GetPatientRecord(c *gin.Context) {
	record, err := h.Records.GetByPatient(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("patientId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, record)
}

func (h *Handler) GetPatientRecordID(c *gin.Context) {
	id, err := h.Records.RecordIDByPatient(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("patientId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondField(c, http.StatusOK, "recordId", id)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var req services.RecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	record, err := h.Records.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	record, err := h.Records.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, record)
}
