package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareshine/backend/pkg/response"
)

// Handler handles auth HTTP endpoints.
type Handler struct {
	authenticator Authenticator
	logger        *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(authenticator Authenticator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{authenticator: authenticator, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	session, err := h.authenticator.Authenticate(c.Request.Context(), req)
	if errors.Is(err, ErrInvalidCredentials) {
		h.logger.Info("admin login rejected", zap.String("username", req.Username))
		response.Unauthorized(c, ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		c.Status(http.StatusInternalServerError)
		_ = c.Error(err)
		return
	}
	h.logger.Info("admin login", zap.String("username", session.Username))
	response.OK(c, session)
}

// Session handles GET /api/auth/session. It sits behind the JWT middleware.
func (h *Handler) Session(c *gin.Context) {
	v, ok := c.Get(ContextClaims)
	claims, _ := v.(*Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, "missing session")
		return
	}
	out := gin.H{"username": claims.Username, "role": claims.Role}
	if claims.ExpiresAt != nil {
		out["expires_at"] = claims.ExpiresAt.Time
	}
	response.OK(c, out)
}
