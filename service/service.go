package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-masker"
	"github.com/uptrace/bun"

	"github.com/dylanswipeyourbite/squadupv2/activity"
	"github.com/dylanswipeyourbite/squadupv2/command"
	"github.com/dylanswipeyourbite/squadupv2/message"
	"github.com/dylanswipeyourbite/squadupv2/onboarding"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/profile"
	"github.com/dylanswipeyourbite/squadupv2/query"
	"github.com/dylanswipeyourbite/squadupv2/scope"
	"github.com/dylanswipeyourbite/squadupv2/squad"
)

// Service is the entry point for the SquadUp handlers. It wires repositories
// and collaborators supplied by the host binary into command/query facades.
type Service struct {
	cfg        Config
	commands   Commands
	queries    Queries
	scopeGuard scope.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	BridgeSession  *command.BridgeSessionCommand
	SquadCreate    *command.SquadCreateCommand
	SquadJoin      *command.SquadJoinCommand
	SquadLeave     *command.SquadLeaveCommand
	SquadDelete    *command.SquadDeleteCommand
	MessageSend    *command.MessageSendCommand
	ActivityLog    *command.ActivityLogCommand
	OnboardingChat *command.OnboardingChatCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	SquadGet      *query.SquadGetQuery
	SquadList     *query.SquadListQuery
	SquadMembers  *query.SquadMembersQuery
	SquadStats    *query.SquadStatsQuery
	MessageDetail *query.MessageDetailQuery
	MessageFeed   *query.MessageFeedQuery
}

// Config captures all required dependencies so callers can provide their own
// repositories and external clients.
type Config struct {
	ProfileRepository  types.ProfileRepository
	SquadRepository    types.SquadRepository
	MessageRepository  types.MessageRepository
	ActivityRepository types.ActivityRepository

	Verifier    types.IdentityVerifier
	Issuer      command.SessionIssuer
	Completer   onboarding.Completer
	FeatureGate featuregate.FeatureGate
	Masker      *masker.Masker

	OnboardingModel string
	InviteCodes     command.InviteCodeSource

	Clock       types.Clock
	IDGenerator types.IDGenerator
	Logger      types.Logger
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	s := &Service{
		cfg:        norm,
		scopeGuard: scope.NewGuard(norm.SquadRepository),
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

// NewWithDB builds the bun repositories over db and fills any repository
// left empty in cfg.
func NewWithDB(db *bun.DB, cfg Config) (*Service, error) {
	norm := normalizeConfig(cfg)
	if norm.ProfileRepository == nil {
		repo, err := profile.NewRepository(profile.RepositoryConfig{DB: db, Clock: norm.Clock, IDGen: norm.IDGenerator})
		if err != nil {
			return nil, err
		}
		norm.ProfileRepository = repo
	}
	if norm.SquadRepository == nil {
		repo, err := squad.NewRepository(squad.RepositoryConfig{DB: db, Clock: norm.Clock, Logger: norm.Logger})
		if err != nil {
			return nil, err
		}
		norm.SquadRepository = repo
	}
	if norm.MessageRepository == nil {
		repo, err := message.NewRepository(message.RepositoryConfig{DB: db, Clock: norm.Clock, Logger: norm.Logger})
		if err != nil {
			return nil, err
		}
		norm.MessageRepository = repo
	}
	if norm.ActivityRepository == nil {
		repo, err := activity.NewRepository(activity.RepositoryConfig{DB: db, Clock: norm.Clock, IDGen: norm.IDGenerator})
		if err != nil {
			return nil, err
		}
		norm.ActivityRepository = repo
	}
	return New(norm), nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.OnboardingModel == "" {
		cfg.OnboardingModel = onboarding.DefaultModel
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Profiles returns the profile repository transports use to resolve callers.
func (s *Service) Profiles() types.ProfileRepository {
	if s == nil {
		return nil
	}
	return s.cfg.ProfileRepository
}

// ScopeGuard exposes the membership guard used internally.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return nil
	}
	return s.scopeGuard
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s.HealthCheck(context.Background()) == nil
}

// HealthCheck surfaces missing dependencies. Optional collaborators (the
// completer and feature gate) are not checked.
func (s *Service) HealthCheck(context.Context) error {
	switch {
	case s == nil:
		return types.ErrServiceNotReady
	case s.cfg.ProfileRepository == nil:
		return types.ErrMissingProfileRepository
	case s.cfg.SquadRepository == nil:
		return types.ErrMissingSquadRepository
	case s.cfg.MessageRepository == nil:
		return types.ErrMissingMessageRepository
	case s.cfg.ActivityRepository == nil:
		return types.ErrMissingActivityRepository
	case s.cfg.Verifier == nil:
		return command.ErrMissingVerifier
	case s.cfg.Issuer == nil:
		return command.ErrMissingIssuer
	}
	return nil
}

func (s *Service) buildCommands() Commands {
	return Commands{
		BridgeSession: command.NewBridgeSessionCommand(command.BridgeSessionCommandConfig{
			Profiles: s.cfg.ProfileRepository,
			Verifier: s.cfg.Verifier,
			Issuer:   s.cfg.Issuer,
			Clock:    s.cfg.Clock,
			IDGen:    s.cfg.IDGenerator,
			Logger:   s.cfg.Logger,
			Masker:   s.cfg.Masker,
		}),
		SquadCreate: command.NewSquadCreateCommand(command.SquadCreateCommandConfig{
			Squads:      s.cfg.SquadRepository,
			Clock:       s.cfg.Clock,
			IDGen:       s.cfg.IDGenerator,
			Logger:      s.cfg.Logger,
			InviteCodes: s.cfg.InviteCodes,
		}),
		SquadJoin: command.NewSquadJoinCommand(command.SquadJoinCommandConfig{
			Squads: s.cfg.SquadRepository,
			Clock:  s.cfg.Clock,
			IDGen:  s.cfg.IDGenerator,
			Logger: s.cfg.Logger,
		}),
		SquadLeave: command.NewSquadLeaveCommand(command.SquadLeaveCommandConfig{
			Squads:     s.cfg.SquadRepository,
			ScopeGuard: s.scopeGuard,
			Clock:      s.cfg.Clock,
			Logger:     s.cfg.Logger,
		}),
		SquadDelete: command.NewSquadDeleteCommand(command.SquadDeleteCommandConfig{
			Squads:     s.cfg.SquadRepository,
			ScopeGuard: s.scopeGuard,
			Logger:     s.cfg.Logger,
		}),
		MessageSend: command.NewMessageSendCommand(command.MessageSendCommandConfig{
			Messages:   s.cfg.MessageRepository,
			Squads:     s.cfg.SquadRepository,
			ScopeGuard: s.scopeGuard,
			Clock:      s.cfg.Clock,
			IDGen:      s.cfg.IDGenerator,
			Logger:     s.cfg.Logger,
		}),
		ActivityLog: command.NewActivityLogCommand(command.ActivityLogCommandConfig{
			Activities: s.cfg.ActivityRepository,
			Clock:      s.cfg.Clock,
			IDGen:      s.cfg.IDGenerator,
			Logger:     s.cfg.Logger,
		}),
		OnboardingChat: command.NewOnboardingChatCommand(command.OnboardingChatCommandConfig{
			Profiles:    s.cfg.ProfileRepository,
			Completer:   s.cfg.Completer,
			FeatureGate: s.cfg.FeatureGate,
			Model:       s.cfg.OnboardingModel,
			Clock:       s.cfg.Clock,
			Logger:      s.cfg.Logger,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		SquadGet:     query.NewSquadGetQuery(s.cfg.SquadRepository, s.scopeGuard),
		SquadList:    query.NewSquadListQuery(s.cfg.SquadRepository),
		SquadMembers: query.NewSquadMembersQuery(s.cfg.SquadRepository, s.scopeGuard),
		SquadStats: query.NewSquadStatsQuery(query.SquadStatsQueryConfig{
			Squads:     s.cfg.SquadRepository,
			Activities: s.cfg.ActivityRepository,
			ScopeGuard: s.scopeGuard,
			Clock:      s.cfg.Clock,
		}),
		MessageDetail: query.NewMessageDetailQuery(s.cfg.MessageRepository, s.cfg.SquadRepository, s.scopeGuard),
		MessageFeed:   query.NewMessageFeedQuery(s.cfg.MessageRepository, s.cfg.SquadRepository, s.scopeGuard),
	}
}
