// Package httpapi exposes the server's REST surface with gin: auth routes,
// patient-record CRUD, QR token issuing and a health probe. Error bodies use
// the {"detail": ...} shape throughout.
package httpapi

import (
	"net/http"
	"time"

	"github.com/carechain/carechain/internal/logging"
	"github.com/carechain/carechain/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Handler bundles the services the HTTP layer dispatches to.
type Handler struct {
	users    *services.UserService
	patients *services.PatientService
	log      logging.Logger
}

func NewHandler(users *services.UserService, patients *services.PatientService, log logging.Logger) *Handler {
	return &Handler{users: users, patients: patients, log: log}
}

// NewRouter builds the gin engine with all routes registered.
func (h *Handler) NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.signup)
		auth.POST("/login", h.login)
		auth.GET("/verify", h.authRequired(), h.verify)
		auth.GET("/me", h.authRequired(), h.me)
	}

	patients := r.Group("/patients")
	{
		// QR lookup is deliberately unauthenticated: the token itself is
		// the credential carried by the printed code.
		patients.GET("/qr/:token", h.getPatientByQRToken)

		authed := patients.Group("", h.authRequired())
		authed.GET("", h.listPatients)
		authed.POST("", h.createPatient)
		authed.GET("/:id", h.getPatient)
		authed.PUT("/:id", h.updatePatient)
		authed.DELETE("/:id", h.deletePatient)
		authed.GET("/:id/qrcode", h.patientQRCode)
	}

	return r
}
