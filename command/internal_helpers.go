package command

import (
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/scope"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeIDGen(idGen types.IDGenerator) types.IDGenerator {
	if idGen != nil {
		return idGen
	}
	return types.UUIDGenerator{}
}

func safeScopeGuard(g scope.Guard, squads types.SquadRepository) scope.Guard {
	if g != nil {
		return g
	}
	return scope.NewGuard(squads)
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}
