package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/phoneauthsvc/domain"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
	regSvc  domain.RegistrationService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, regSvc domain.RegistrationService) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		regSvc:  regSvc,
	}
}

// SendOTPRequest represents an OTP issuance request
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
}

// VerifyOTPRequest represents an OTP verification request
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
	Code  string `json:"code" binding:"required,numeric"`
}

// RegisterRequest represents a registration request. The ticket proves a
// recent OTP verification for this phone.
type RegisterRequest struct {
	Phone    string  `json:"phone" binding:"required,e164"`
	Ticket   string  `json:"registration_ticket" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Age      int     `json:"age" binding:"required,gte=18,lte=120"`
	Income   float64 `json:"income" binding:"gte=0"`
	Expenses float64 `json:"expenses" binding:"gte=0"`
	Savings  float64 `json:"savings" binding:"gte=0"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SendOTP handles OTP generation and dispatch
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid phone number is required"})
		return
	}

	if err := h.authSvc.RequestOTP(c.Request.Context(), req.Phone); err != nil {
		switch {
		case errors.Is(err, domain.ErrPhoneRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid phone number is required"})
		case errors.Is(err, domain.ErrGatewayFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not deliver verification code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Verification code sent",
		},
	})
}

// VerifyOTP handles OTP verification. Existing accounts get a session;
// unknown phones get a registration ticket.
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone and code are required"})
		return
	}

	outcome, err := h.authSvc.VerifyOTP(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChallengeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired code"})
		case errors.Is(err, domain.ErrAccountResolution):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Account lookup failed, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	if outcome.IsNew {
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"is_new":              true,
				"registration_ticket": outcome.Ticket,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"is_new":        false,
			"access_token":  outcome.Auth.AccessToken,
			"refresh_token": outcome.Auth.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    outcome.Auth.ExpiresIn,
		},
	})
}

// Register handles JIT account provisioning after a verified OTP
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	onboarding := &domain.Onboarding{
		Name:     req.Name,
		Age:      req.Age,
		Income:   req.Income,
		Expenses: req.Expenses,
		Savings:  req.Savings,
	}

	result, err := h.regSvc.Register(c.Request.Context(), req.Phone, req.Ticket, onboarding)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Registration ticket invalid or expired"})
		case errors.Is(err, domain.ErrAccountResolution):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Account creation failed, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		}
		return
	}

	if result.Auth == nil {
		c.JSON(http.StatusCreated, gin.H{
			"data": gin.H{
				"success": true,
				"warning": result.Warning,
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"success":       true,
			"access_token":  result.Auth.AccessToken,
			"refresh_token": result.Auth.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    result.Auth.ExpiresIn,
		},
	})
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
		},
	})
}

// Me handles getting the current profile (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	identityID, exists := c.Get("identity_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity not found in context"})
		return
	}

	profile, err := h.authSvc.GetProfile(c.Request.Context(), identityID.(string))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"identity_id":   profile.IdentityID,
			"phone":         profile.Phone,
			"name":          profile.Name,
			"age":           profile.Age,
			"income":        profile.Income,
			"expenses":      profile.Expenses,
			"savings":       profile.Savings,
			"risk_score":    profile.RiskScore,
			"risk_category": profile.RiskCategory,
			"role":          profile.Role,
			"created_at":    profile.CreatedAt,
			"updated_at":    profile.UpdatedAt,
		},
	})
}

// Logout handles user logout (requires authentication)
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionID, exists := c.Get("session_id")
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID not found"})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), sessionID.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Logged out successfully",
		},
	})
}
