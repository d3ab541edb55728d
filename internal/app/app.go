package app

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/phoneauthsvc/internal/config"
	httpx "github.com/you/phoneauthsvc/internal/http"
	"github.com/you/phoneauthsvc/internal/http/handlers"
	"github.com/you/phoneauthsvc/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "phoneauthsvc").Logger()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg, &logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	seedPolicies(c, &logger)

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.RegistrationSvc)
	polH := &handlers.PolicyHandlers{Policies: c.PolicySvc}

	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.SessionRepo)
	casbinMW := middleware.NewCasbinMW(c.PolicySvc)

	r := httpx.BuildRouter(authH, polH, jwtMW, casbinMW)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, r)
}

func seedPolicies(c *Container, logger *zerolog.Logger) {
	if len(c.PolicySvc.GetPolicies()) > 0 {
		return
	}
	defaults := [][3]string{
		{"role_admin", "/admin/*", "(GET|POST|PUT|DELETE)"},
		{"role_user", "/auth/me", "GET"},
		{"role_user", "/auth/logout", "POST"},
	}
	for _, p := range defaults {
		if err := c.PolicySvc.AddPolicy(p[0], p[1], p[2]); err != nil {
			logger.Error().Err(err).Str("role", p[0]).Str("resource", p[1]).Msg("casbin: failed to seed policy")
		}
	}
	logger.Info().Msg("casbin: seeded default policies")
}
