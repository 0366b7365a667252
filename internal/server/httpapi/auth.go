package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, fieldDetail("body", "invalid request body"))
		return
	}
	if req.Email == "" {
		abortDetail(c, http.StatusUnprocessableEntity, fieldDetail("email", "field required"))
		return
	}
	if req.Name == "" {
		abortDetail(c, http.StatusUnprocessableEntity, fieldDetail("name", "field required"))
		return
	}

	user, err := h.users.Signup(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// login implements the OAuth2 password flow: form-encoded credentials in,
// bearer token out.
func (h *Handler) login(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")

	token, user, err := h.users.Login(c.Request.Context(), email, password)
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user": gin.H{
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

func (h *Handler) verify(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"status": "valid",
		"user": gin.H{
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(currentUser(c)))
}
