package onboarding

import (
	"testing"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/stretchr/testify/require"
)

func userSays(lines ...string) []types.ChatMessage {
	out := make([]types.ChatMessage, 0, len(lines))
	for _, line := range lines {
		out = append(out, types.ChatMessage{Role: "user", Content: line})
	}
	return out
}

func TestExtractMarathonTranscript(t *testing.T) {
	data := Extract(userSays("I'm training for a marathon, hoping to break 3:30, usually run at 5am solo"), "Love that goal! Which race is it?")

	require.Empty(t, data.ExperienceLevel)
	require.Equal(t, []string{"marathon"}, data.RaceGoals)
	require.Equal(t, "break 3:30", data.TimeGoals)
	require.Equal(t, "morning", data.PreferredTime)
	require.Equal(t, "solo", data.TrainingStyle)
	require.False(t, data.HasInjuryConcerns)
	require.Empty(t, data.Motivation)
	require.Empty(t, data.WeeklyMileage)
}

func TestExtractExperienceTiers(t *testing.T) {
	require.Equal(t, "beginner", Extract(userSays("I'm new to running, doing couch to 5k"), "").ExperienceLevel)
	require.Equal(t, "advanced", Extract(userSays("Trying to qualify for Boston"), "").ExperienceLevel)
	require.Equal(t, "intermediate", Extract(userSays("I've been running 10k races"), "").ExperienceLevel)
}

func TestExtractRaceGoalsDeduplicated(t *testing.T) {
	data := Extract(userSays("Marathon in May, another MARATHON in fall, then a 10k"), "")
	require.Equal(t, []string{"marathon", "10k"}, data.RaceGoals)
}

func TestExtractMileageInjuryAndMotivation(t *testing.T) {
	data := Extract(userSays("I run 40 miles per week with my club, coming back from an injury. I love the community and managing stress"), "")

	require.Equal(t, "40 miles", data.WeeklyMileage)
	require.True(t, data.HasInjuryConcerns)
	require.Equal(t, "group", data.TrainingStyle)
	require.Equal(t, []string{"social", "mental"}, data.Motivation)
}

func TestExtractEveningAndMidday(t *testing.T) {
	require.Equal(t, "evening", Extract(userSays("I only get out after work"), "").PreferredTime)
	require.Equal(t, "midday", Extract(userSays("lunch runs only"), "").PreferredTime)
}

func TestDataMap(t *testing.T) {
	require.True(t, Data{}.IsEmpty())

	data := Data{RaceGoals: []string{"trail"}, HasInjuryConcerns: true}
	require.False(t, data.IsEmpty())
	require.Equal(t, map[string]any{
		"raceGoals":         []string{"trail"},
		"hasInjuryConcerns": true,
	}, data.Map())
}

func TestNewCompletionRequestDefaults(t *testing.T) {
	req := NewCompletionRequest("", userSays("hi"))
	require.Equal(t, DefaultModel, req.Model)
	require.Equal(t, SystemPrompt, req.System)
	require.Equal(t, 200, req.MaxTokens)
	require.InDelta(t, 0.8, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
}
