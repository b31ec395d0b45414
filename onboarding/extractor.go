package onboarding

import (
	"regexp"
	"strings"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
)

// Data holds the running profile inferred from an onboarding transcript.
type Data struct {
	ExperienceLevel   string   `json:"experienceLevel,omitempty"`
	RaceGoals         []string `json:"raceGoals,omitempty"`
	TimeGoals         string   `json:"timeGoals,omitempty"`
	PreferredTime     string   `json:"preferredTime,omitempty"`
	WeeklyMileage     string   `json:"weeklyMileage,omitempty"`
	HasInjuryConcerns bool     `json:"hasInjuryConcerns,omitempty"`
	TrainingStyle     string   `json:"trainingStyle,omitempty"`
	Motivation        []string `json:"motivation,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (d Data) IsEmpty() bool {
	return len(d.Map()) == 0
}

// Map renders the populated fields under their JSON names.
func (d Data) Map() map[string]any {
	out := map[string]any{}
	if d.ExperienceLevel != "" {
		out["experienceLevel"] = d.ExperienceLevel
	}
	if len(d.RaceGoals) > 0 {
		out["raceGoals"] = append([]string(nil), d.RaceGoals...)
	}
	if d.TimeGoals != "" {
		out["timeGoals"] = d.TimeGoals
	}
	if d.PreferredTime != "" {
		out["preferredTime"] = d.PreferredTime
	}
	if d.WeeklyMileage != "" {
		out["weeklyMileage"] = d.WeeklyMileage
	}
	if d.HasInjuryConcerns {
		out["hasInjuryConcerns"] = true
	}
	if d.TrainingStyle != "" {
		out["trainingStyle"] = d.TrainingStyle
	}
	if len(d.Motivation) > 0 {
		out["motivation"] = append([]string(nil), d.Motivation...)
	}
	return out
}

type tier struct {
	label   string
	pattern *regexp.Regexp
}

func ci(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

// first matching tier wins
func firstTier(text string, tiers []tier) string {
	for _, t := range tiers {
		if t.pattern.MatchString(text) {
			return t.label
		}
	}
	return ""
}

var (
	experienceTiers = []tier{
		{"beginner", ci(`beginner|just start|new to|first time|couch to`)},
		{"advanced", ci(`boston|qualify|sub[- ]?3|ultra|ironman|elite|competitive`)},
		{"intermediate", ci(`5k|10k|half|years? of|been running`)},
	}
	preferredTimeTiers = []tier{
		{"morning", ci(`morning|dawn|early|4:30|5[ :]?am|sunrise`)},
		{"evening", ci(`evening|night|pm|after work`)},
		{"midday", ci(`lunch|midday|noon`)},
	}
	trainingStyleTiers = []tier{
		{"solo", ci(`alone|solo|by myself`)},
		{"group", ci(`group|club|team|crew`)},
		{"mixed", ci(`both|mix|depends`)},
	}
	// every matching keyword is kept
	motivationKeywords = []tier{
		{"competition", ci(`compete|competition|racing|win`)},
		{"health", ci(`health|fitness|weight|feel good`)},
		{"social", ci(`community|friends|social`)},
		{"challenge", ci(`challenge|push|limits|PR`)},
		{"mental", ci(`mental|stress|clarity|therapy`)},
	}

	racePattern     = ci(`(marathon|ultra|ironman|5k|10k|half marathon|trail|triathlon|spartan)`)
	timeGoalPattern = ci(`sub[- ]?(\d+):?(\d+)?|break (\d+):?(\d+)?|under (\d+):?(\d+)?|BQ|PR`)
	mileagePattern  = ci(`(\d+)[- ]?(miles|km|k)\s*(per|a|/)?\s*week`)
	injuryPattern   = ci(`injury|injured|hurt|pain|recovery|rehab|PT|physical therapy`)
)

// Extract scans the transcript plus the assistant's latest reply.
func Extract(messages []types.ChatMessage, reply string) Data {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, msg.Content)
	}
	text := strings.Join(parts, " ") + " " + reply

	data := Data{
		ExperienceLevel:   firstTier(text, experienceTiers),
		PreferredTime:     firstTier(text, preferredTimeTiers),
		TrainingStyle:     firstTier(text, trainingStyleTiers),
		HasInjuryConcerns: injuryPattern.MatchString(text),
		TimeGoals:         timeGoalPattern.FindString(text),
	}

	seen := map[string]struct{}{}
	for _, match := range racePattern.FindAllString(text, -1) {
		race := strings.ToLower(match)
		if _, ok := seen[race]; ok {
			continue
		}
		seen[race] = struct{}{}
		data.RaceGoals = append(data.RaceGoals, race)
	}

	if m := mileagePattern.FindStringSubmatch(text); m != nil {
		data.WeeklyMileage = m[1] + " " + m[2]
	}

	for _, keyword := range motivationKeywords {
		if keyword.pattern.MatchString(text) {
			data.Motivation = append(data.Motivation, keyword.label)
		}
	}
	return data
}
