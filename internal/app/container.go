package app

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/you/phoneauthsvc/domain"
	"github.com/you/phoneauthsvc/internal/config"
	"github.com/you/phoneauthsvc/internal/infrastructure/auth"
	"github.com/you/phoneauthsvc/internal/infrastructure/database"
	"github.com/you/phoneauthsvc/internal/infrastructure/identity"
	"github.com/you/phoneauthsvc/internal/infrastructure/notifications"
	"github.com/you/phoneauthsvc/internal/infrastructure/repositories"
	"github.com/you/phoneauthsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zerolog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Platform clients. The privileged admin client is built exactly once
	// here; nothing constructs it per request.
	AdminClient   domain.IdentityAdmin
	SessionClient domain.IdentitySessions

	// Repositories
	ChallengeRepo  domain.ChallengeRepository
	ProfileRepo    domain.ProfileRepository
	PhoneIndexRepo domain.PhoneIndexRepository
	SessionRepo    domain.SessionRepository
	TicketRepo     domain.TicketRepository

	// Services
	SMSGateway      domain.SMSGateway
	CodeHasher      domain.CodeHasher
	Secrets         domain.SecretSource
	TokenSvc        domain.TokenService
	OTPSvc          domain.OTPService
	Resolver        domain.IdentityResolver
	Establisher     domain.SessionEstablisher
	AuthSvc         domain.AuthService
	RegistrationSvc domain.RegistrationService
	PolicySvc       domain.PolicyService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger *zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	if err := c.initPlatformClients(); err != nil {
		return nil, err
	}
	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) initInfrastructure() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db

	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
	return nil
}

func (c *Container) initPlatformClients() error {
	admin, err := identity.NewAdminClient(c.Config.IdentityBaseURL, c.Config.IdentityServiceKey)
	if err != nil {
		return err
	}
	c.AdminClient = admin
	c.SessionClient = identity.NewSessionClient(c.Config.IdentityBaseURL, c.Config.IdentityAnonKey)
	return nil
}

func (c *Container) initRepositories() {
	c.ChallengeRepo = repositories.NewChallengeRepository(c.DB)
	c.ProfileRepo = repositories.NewProfileRepository(c.DB)
	c.PhoneIndexRepo = repositories.NewPhoneIndexRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient)
	c.TicketRepo = repositories.NewTicketRepository(c.RedisClient, c.Config.TicketTTL)
}

func (c *Container) initServices() error {
	c.CodeHasher = auth.NewCodeHasher()
	c.Secrets = auth.NewSecretSource()
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)
	c.SMSGateway = notifications.NewTwilioGateway(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Logger,
	)

	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.PolicySvc = services.NewPolicyService(cas.E)

	otpConfig := services.OTPConfig{
		Length: c.Config.OTP_Length,
		TTL:    c.Config.OTP_TTL,
	}
	c.OTPSvc = services.NewOTPService(c.ChallengeRepo, c.SMSGateway, c.CodeHasher, c.Secrets, otpConfig, c.Logger)

	c.Resolver = services.NewIdentityResolver(
		c.AdminClient,
		c.PhoneIndexRepo,
		c.Secrets,
		c.Config.AliasDomain,
		c.Config.IdentityListPerPage,
		c.Logger,
	)

	c.Establisher = services.NewSessionEstablisher(
		c.AdminClient,
		c.SessionClient,
		c.SessionRepo,
		c.ProfileRepo,
		c.TokenSvc,
		c.Secrets,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
		c.Logger,
	)

	c.AuthSvc = services.NewAuthService(
		c.OTPSvc,
		c.Resolver,
		c.Establisher,
		c.TicketRepo,
		c.SessionRepo,
		c.ProfileRepo,
		c.TokenSvc,
		c.Config.AccessTTL,
		c.Logger,
	)

	c.RegistrationSvc = services.NewRegistrationService(
		c.Resolver,
		c.Establisher,
		c.ProfileRepo,
		c.TicketRepo,
		c.Secrets,
		c.Logger,
	)

	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
