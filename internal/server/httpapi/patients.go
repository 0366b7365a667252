package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func patientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, fieldDetail("patient_id", "value is not a valid integer"))
		return 0, false
	}
	return id, true
}

func (h *Handler) listPatients(c *gin.Context) {
	result, err := h.patients.List(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}

	rs := make([]patientResponse, 0, len(result))
	for i := range result {
		rs = append(rs, toPatientResponse(&result[i]))
	}
	c.JSON(http.StatusOK, rs)
}

func (h *Handler) getPatient(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	p, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPatientResponse(p))
}

func (h *Handler) createPatient(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, fieldDetail("body", "invalid request body"))
		return
	}

	created, err := h.patients.Create(c.Request.Context(), req.toModel(), currentUser(c).ID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPatientResponse(created))
}

func (h *Handler) updatePatient(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, fieldDetail("body", "invalid request body"))
		return
	}

	patient := req.toModel()
	patient.ID = id
	updated, err := h.patients.Update(c.Request.Context(), patient)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPatientResponse(updated))
}

func (h *Handler) deletePatient(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	if err := h.patients.Delete(c.Request.Context(), id); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) patientQRCode(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	payload, err := h.patients.QRCode(c.Request.Context(), id)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, qrResponse{
		PatientID: payload.PatientID,
		Token:     payload.Token,
		Expires:   payload.Expires,
	})
}

func (h *Handler) getPatientByQRToken(c *gin.Context) {
	p, err := h.patients.GetByQRToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPatientResponse(p))
}
