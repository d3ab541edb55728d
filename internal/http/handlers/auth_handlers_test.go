package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/phoneauthsvc/domain"
	"github.com/you/phoneauthsvc/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlersForTest() (*AuthHandlers, *mocks.MockAuthService, *mocks.MockRegistrationService) {
	authSvc := mocks.NewMockAuthService()
	regSvc := mocks.NewMockRegistrationService()
	return NewAuthHandlers(authSvc, regSvc), authSvc, regSvc
}

func performJSON(handler gin.HandlerFunc, method, path string, payload any) *httptest.ResponseRecorder {
	router := gin.New()
	router.Handle(method, path, handler)

	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp["data"].(map[string]any)
	return data
}

func TestAuthHandlers_SendOTP(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()

	var phoneSeen string
	authSvc.RequestOTPFunc = func(ctx context.Context, phone string) error {
		phoneSeen = phone
		return nil
	}

	w := performJSON(h.SendOTP, http.MethodPost, "/auth/otp/send", gin.H{"phone": "+919000000001"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "+919000000001", phoneSeen)
}

func TestAuthHandlers_SendOTP_Validation(t *testing.T) {
	tests := []struct {
		name    string
		payload gin.H
	}{
		{"missing phone", gin.H{}},
		{"not e164", gin.H{"phone": "12345"}},
		{"empty phone", gin.H{"phone": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, authSvc, _ := newHandlersForTest()
			authSvc.RequestOTPFunc = func(ctx context.Context, phone string) error {
				t.Fatal("service must not be called for an invalid payload")
				return nil
			}

			w := performJSON(h.SendOTP, http.MethodPost, "/auth/otp/send", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandlers_SendOTP_GatewayFailure(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.RequestOTPFunc = func(ctx context.Context, phone string) error {
		return domain.ErrGatewayFailure
	}

	w := performJSON(h.SendOTP, http.MethodPost, "/auth/otp/send", gin.H{"phone": "+919000000001"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAuthHandlers_VerifyOTP_ExistingAccount(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.VerifyOutcome, error) {
		return &domain.VerifyOutcome{
			IsNew: false,
			Auth:  &domain.AuthResult{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 900},
		}, nil
	}

	w := performJSON(h.VerifyOTP, http.MethodPost, "/auth/otp/verify", gin.H{"phone": "+919000000001", "code": "482913"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, false, data["is_new"])
	assert.Equal(t, "at", data["access_token"])
	assert.Equal(t, "rt", data["refresh_token"])
	assert.NotContains(t, data, "registration_ticket")
}

func TestAuthHandlers_VerifyOTP_NewPhoneGetsTicket(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.VerifyOutcome, error) {
		return &domain.VerifyOutcome{IsNew: true, Ticket: "ticket-abc"}, nil
	}

	w := performJSON(h.VerifyOTP, http.MethodPost, "/auth/otp/verify", gin.H{"phone": "+919000000001", "code": "482913"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, true, data["is_new"])
	assert.Equal(t, "ticket-abc", data["registration_ticket"])
	assert.NotContains(t, data, "access_token")
}

func TestAuthHandlers_VerifyOTP_InvalidCode(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.VerifyOutcome, error) {
		return nil, domain.ErrChallengeInvalid
	}

	w := performJSON(h.VerifyOTP, http.MethodPost, "/auth/otp/verify", gin.H{"phone": "+919000000001", "code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong, expired and never-issued codes all share one response body
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid or expired code", resp["error"])
}

func TestAuthHandlers_VerifyOTP_ResolutionFailure(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.VerifyOTPFunc = func(ctx context.Context, phone, code string) (*domain.VerifyOutcome, error) {
		return nil, domain.ErrAccountResolution
	}

	w := performJSON(h.VerifyOTP, http.MethodPost, "/auth/otp/verify", gin.H{"phone": "+919000000001", "code": "482913"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func validRegisterPayload() gin.H {
	return gin.H{
		"phone":               "+919000000001",
		"registration_ticket": "ticket-abc",
		"name":                "Asha Rao",
		"age":                 31,
		"income":              90000,
		"expenses":            55000,
		"savings":             200000,
	}
}

func TestAuthHandlers_Register(t *testing.T) {
	h, _, regSvc := newHandlersForTest()
	regSvc.RegisterFunc = func(ctx context.Context, phone, ticket string, onboarding *domain.Onboarding) (*domain.RegistrationResult, error) {
		assert.Equal(t, "+919000000001", phone)
		assert.Equal(t, "ticket-abc", ticket)
		assert.Equal(t, "Asha Rao", onboarding.Name)
		return &domain.RegistrationResult{
			IdentityID: "uid-1",
			Auth:       &domain.AuthResult{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 900},
		}, nil
	}

	w := performJSON(h.Register, http.MethodPost, "/auth/register", validRegisterPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "at", data["access_token"])
}

func TestAuthHandlers_Register_LoginWarning(t *testing.T) {
	h, _, regSvc := newHandlersForTest()
	regSvc.RegisterFunc = func(ctx context.Context, phone, ticket string, onboarding *domain.Onboarding) (*domain.RegistrationResult, error) {
		return &domain.RegistrationResult{IdentityID: "uid-1", Warning: "manual login required"}, nil
	}

	w := performJSON(h.Register, http.MethodPost, "/auth/register", validRegisterPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "manual login required", data["warning"])
	assert.NotContains(t, data, "access_token")
}

func TestAuthHandlers_Register_BadTicket(t *testing.T) {
	h, _, regSvc := newHandlersForTest()
	regSvc.RegisterFunc = func(ctx context.Context, phone, ticket string, onboarding *domain.Onboarding) (*domain.RegistrationResult, error) {
		return nil, domain.ErrTicketInvalid
	}

	w := performJSON(h.Register, http.MethodPost, "/auth/register", validRegisterPayload())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlers_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(gin.H)
	}{
		{"underage", func(p gin.H) { p["age"] = 17 }},
		{"missing name", func(p gin.H) { delete(p, "name") }},
		{"missing ticket", func(p gin.H) { delete(p, "registration_ticket") }},
		{"negative income", func(p gin.H) { p["income"] = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, regSvc := newHandlersForTest()
			regSvc.RegisterFunc = func(ctx context.Context, phone, ticket string, onboarding *domain.Onboarding) (*domain.RegistrationResult, error) {
				t.Fatal("service must not be called for an invalid payload")
				return nil, nil
			}

			payload := validRegisterPayload()
			tt.mutate(payload)
			w := performJSON(h.Register, http.MethodPost, "/auth/register", payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandlers_Refresh(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.RefreshTokenFunc = func(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
		require.Equal(t, "rt", refreshToken)
		return &domain.AuthResult{AccessToken: "new-at", ExpiresIn: 900}, nil
	}

	w := performJSON(h.Refresh, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": "rt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new-at", decodeData(t, w)["access_token"])
}

func TestAuthHandlers_Refresh_ExpiredSession(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.RefreshTokenFunc = func(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
		return nil, domain.ErrSessionExpired
	}

	w := performJSON(h.Refresh, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": "rt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlers_Me(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()
	authSvc.GetProfileFunc = func(ctx context.Context, identityID string) (*domain.Profile, error) {
		require.Equal(t, "uid-1", identityID)
		return &domain.Profile{IdentityID: "uid-1", Name: "Asha Rao", RiskCategory: "moderate"}, nil
	}

	router := gin.New()
	router.GET("/auth/me", func(c *gin.Context) {
		c.Set("identity_id", "uid-1")
		h.Me(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "Asha Rao", data["name"])
	assert.Equal(t, "moderate", data["risk_category"])
}

func TestAuthHandlers_Me_NoIdentityInContext(t *testing.T) {
	h, _, _ := newHandlersForTest()

	router := gin.New()
	router.GET("/auth/me", h.Me)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlers_Logout(t *testing.T) {
	h, authSvc, _ := newHandlersForTest()

	var sessionSeen string
	authSvc.LogoutFunc = func(ctx context.Context, sessionID string) error {
		sessionSeen = sessionID
		return nil
	}

	router := gin.New()
	router.POST("/auth/logout", func(c *gin.Context) {
		c.Set("session_id", "sess-1")
		h.Logout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", sessionSeen)
}
