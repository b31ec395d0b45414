package squadup

import "github.com/dylanswipeyourbite/squadupv2/service"

// Re-export the service entry point so consumers can call `squadup.New(...)`
// without importing the wiring package.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the squad runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}
