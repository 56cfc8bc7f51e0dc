package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/medicare-dental/clinic-portal/config"
	redisadapter "github.com/medicare-dental/clinic-portal/internal/adapters/redis"
	"github.com/medicare-dental/clinic-portal/internal/data"
	"github.com/medicare-dental/clinic-portal/internal/service"
)

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Auth         *service.AuthService
	Credentials  *service.CredentialService
	Registration *service.RegistrationService
}

// AuthDependencies groups the infrastructure the auth services sit on.
type AuthDependencies struct {
	DB     *sql.DB
	Redis  redis.UniversalClient
	Config *config.AppConfig
	Logger *slog.Logger
}

// BuildServices wires repositories, the identity validator, and the session
// store into the application services.
func BuildServices(deps AuthDependencies) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	patients := data.NewPatientRepo(deps.DB)
	personnel := data.NewPersonnelRepo(deps.DB)

	validator := service.NewIdentityService(service.IdentityServiceOptions{
		Patients:      patients,
		Personnel:     personnel,
		Logger:        logger,
		LookupTimeout: deps.Config.Auth.LookupTimeout,
	})

	sessions := redisadapter.NewSessionStoreWithPrefix(deps.Redis, deps.Config.Auth.Session.KeyPrefix)

	return ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Sessions:   sessions,
			Validator:  validator,
			Logger:     logger,
			SessionTTL: deps.Config.Auth.Session.TTL,
		}),
		Credentials: service.NewCredentialService(service.CredentialServiceOptions{
			Patients:  patients,
			Personnel: personnel,
			Logger:    logger,
		}),
		Registration: service.NewRegistrationService(service.RegistrationServiceOptions{
			Patients: patients,
			Logger:   logger,
		}),
	}
}
