package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/game-reviews-backend/internal/api/middleware"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/monitoring"
	"github.com/princeprakhar/game-reviews-backend/internal/services"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
	"github.com/princeprakhar/game-reviews-backend/pkg/logger"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type AuthHandler struct {
	authService   *services.AuthService
	metrics       *monitoring.Metrics
	baseURL       string
	secureCookies bool
}

func NewAuthHandler(authService *services.AuthService, metrics *monitoring.Metrics, baseURL string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		metrics:       metrics,
		baseURL:       strings.TrimRight(baseURL, "/"),
		secureCookies: secureCookies,
	}
}

// Login starts the authorization-code flow.
func (h *AuthHandler) Login(c *gin.Context) {
	state, err := utils.GenerateRandomString(16)
	if err != nil {
		utils.SendInternalError(c, "Failed to start sign-in", err)
		return
	}

	url, err := h.authService.AuthCodeURL(state)
	if err != nil {
		respondError(c, "Sign-in unavailable", err)
		return
	}

	h.setCookie(c, stateCookie, state, stateTTL)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.metrics.RecordAuth(false)
		utils.SendUnauthorized(c, "Sign-in was cancelled: "+errParam)
		return
	}

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		h.metrics.RecordAuth(false)
		utils.SendValidationError(c, "Invalid OAuth state")
		return
	}
	h.setCookie(c, stateCookie, "", -1)

	code := c.Query("code")
	if code == "" {
		h.metrics.RecordAuth(false)
		utils.SendValidationError(c, "Authorization code is required")
		return
	}

	user, err := h.authService.Exchange(c.Request.Context(), code)
	if err != nil {
		h.metrics.RecordAuth(false)
		logger.WithError(err).Warn("oauth exchange failed")
		if errors.Is(err, services.ErrOAuthNotConfigured) {
			respondError(c, "Sign-in unavailable", err)
			return
		}
		utils.SendUnauthorized(c, "Sign-in failed")
		return
	}

	token, expiresAt, err := h.authService.IssueSession(user)
	if err != nil {
		h.metrics.RecordAuth(false)
		utils.SendInternalError(c, "Failed to create session", err)
		return
	}
	h.metrics.RecordAuth(true)

	h.setCookie(c, middleware.SessionCookie, token, time.Until(expiresAt))

	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		utils.SendSuccess(c, "Signed in successfully", SessionResponse{
			Token:     token,
			ExpiresAt: expiresAt.UnixMilli(),
			User:      user,
		})
		return
	}
	c.Redirect(http.StatusFound, h.baseURL+"/")
}

func (h *AuthHandler) Session(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}
	utils.SendSuccess(c, "Session retrieved successfully", user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookie, "", -1)
	utils.SendSuccess(c, "Logged out successfully", nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookies, true)
}
