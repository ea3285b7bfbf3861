package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/store"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

func (h *Handler) ListPhysios(c *gin.Context) {
	physios, err := h.Physios.List(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, physios)
}

// FindPhysios searches by ?specialty=, ?name= and ?surname=.
func (h *Handler) FindPhysios(c *gin.Context) {
	f := store.PhysioFilter{
		NameFilter: store.NameFilter{Name: c.Query("name"), Surname: c.Query("surname")},
		Specialty:  c.Query("specialty"),
	}
	physios, err := h.Physios.Search(c.Request.Context(), middleware.PrincipalFrom(c), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, physios)
}

func (h *Handler) GetPhysio(c *gin.Context) {
	physio, err := h.Physios.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, physio)
}

func (h *Handler) CreatePhysio(c *gin.Context) {
	var req services.PhysioInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	physio, err := h.Physios.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, physio)
}

func (h *Handler) UpdatePhysio(c *gin.Context) {
	var req services.PhysioPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	physio, err := h.Physios.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, physio)
}

func (h *Handler) DeletePhysio(c *gin.Context) {
	physio, err := h.Physios.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, physio)
}
