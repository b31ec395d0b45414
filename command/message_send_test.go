package command

import (
	"context"
	"net/http"
	"testing"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newSendCommand(f fixture) *MessageSendCommand {
	return NewMessageSendCommand(MessageSendCommandConfig{
		Messages: f.messages,
		Squads:   f.squads,
		Clock:    f.clock,
	})
}

func TestMessageSendCommand_TextMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	created := f.createSquad(t, captain)

	content := "Hill repeats at 6?"
	var sent types.Message
	require.NoError(t, newSendCommand(f).Execute(ctx, MessageSendInput{
		ActorID:     captain,
		SquadID:     created.ID,
		MessageType: "text",
		Content:     &content,
		Result:      &sent,
	}))
	require.Equal(t, types.MessageTypeText, sent.Type)
	require.Equal(t, content, *sent.Content)
	require.NotNil(t, sent.Author)
	require.Equal(t, "cap", sent.Author.DisplayName)
	require.Empty(t, sent.Reactions)
	require.Empty(t, sent.ReadByProfileIDs)
	require.True(t, baseTime.Equal(sent.CreatedAt))
}

func TestMessageSendCommand_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	outsider := f.profile(t, "outsider")
	created := f.createSquad(t, captain)
	cmd := newSendCommand(f)

	requireStatus(t, cmd.Execute(ctx, MessageSendInput{ActorID: captain, SquadID: created.ID}),
		http.StatusBadRequest, "Squad ID and message type are required")
	requireStatus(t, cmd.Execute(ctx, MessageSendInput{ActorID: captain, MessageType: "text"}),
		http.StatusBadRequest, "Squad ID and message type are required")
	requireStatus(t, cmd.Execute(ctx, MessageSendInput{ActorID: outsider, SquadID: created.ID, MessageType: "sticker"}),
		http.StatusForbidden, "Not a member of this squad")
	requireStatus(t, cmd.Execute(ctx, MessageSendInput{ActorID: captain, SquadID: created.ID, MessageType: "sticker"}),
		http.StatusBadRequest, "Invalid message type")

	missing := uuid.New()
	requireStatus(t, cmd.Execute(ctx, MessageSendInput{ActorID: captain, SquadID: created.ID, MessageType: "text", ReplyToID: &missing}),
		http.StatusBadRequest, "Reply target must be a message in this squad")
}

func TestMessageSendCommand_ReplyMustStayInSquad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	home := f.createSquad(t, captain)
	away := f.createSquad(t, captain)
	cmd := newSendCommand(f)

	var parent types.Message
	require.NoError(t, cmd.Execute(ctx, MessageSendInput{ActorID: captain, SquadID: away.ID, MessageType: "text", Result: &parent}))

	requireStatus(t, cmd.Execute(ctx, MessageSendInput{ActorID: captain, SquadID: home.ID, MessageType: "text", ReplyToID: &parent.ID}),
		http.StatusBadRequest, "Reply target must be a message in this squad")

	var reply types.Message
	require.NoError(t, cmd.Execute(ctx, MessageSendInput{ActorID: captain, SquadID: away.ID, MessageType: "text", ReplyToID: &parent.ID, Result: &reply}))
	require.Equal(t, parent.ID, *reply.ReplyToID)
}

func TestMessageSendCommand_ActivityCheckin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	created := f.createSquad(t, captain)

	var logged types.Activity
	logCmd := NewActivityLogCommand(ActivityLogCommandConfig{Activities: f.activities, Clock: f.clock})
	require.NoError(t, logCmd.Execute(ctx, ActivityLogInput{
		ActorID:      captain,
		ActivityType: "Run",
		DistanceKm:   12.4,
		Result:       &logged,
	}))

	var sent types.Message
	require.NoError(t, newSendCommand(f).Execute(ctx, MessageSendInput{
		ActorID:     captain,
		SquadID:     created.ID,
		MessageType: "activityCheckin",
		Metadata:    map[string]any{"activityId": logged.ID.String()},
		Result:      &sent,
	}))
	require.Equal(t, types.MessageTypeActivityCheckin, sent.Type)
	require.Equal(t, "activityCheckin", sent.Type.Wire())

	updated, err := f.squads.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.TotalActivities)
	require.InDelta(t, 12.4, updated.TotalDistanceKm, 0.001)

	member, err := f.squads.Membership(ctx, created.ID, captain)
	require.NoError(t, err)
	require.Equal(t, 1, member.TotalActivities)
	require.NotNil(t, member.LastActivityAt)
}

func TestMessageSendCommand_DuplicateCheckin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	created := f.createSquad(t, captain)
	cmd := newSendCommand(f)

	var logged types.Activity
	logCmd := NewActivityLogCommand(ActivityLogCommandConfig{Activities: f.activities, Clock: f.clock})
	require.NoError(t, logCmd.Execute(ctx, ActivityLogInput{
		ActorID:      captain,
		ActivityType: "run",
		DistanceKm:   8,
		Result:       &logged,
	}))

	checkin := MessageSendInput{
		ActorID:     captain,
		SquadID:     created.ID,
		MessageType: "activityCheckin",
		Metadata:    map[string]any{"activityId": logged.ID.String()},
	}
	require.NoError(t, cmd.Execute(ctx, checkin))
	requireStatus(t, cmd.Execute(ctx, checkin), http.StatusBadRequest, "Activity already checked in")

	feed, err := f.messages.ListFeed(ctx, types.MessageFeedFilter{SquadID: created.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, feed, 1)

	updated, err := f.squads.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.TotalActivities)
	require.InDelta(t, 8, updated.TotalDistanceKm, 0.001)
}

func TestMessageSendCommand_CheckinWithUnknownActivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	created := f.createSquad(t, captain)
	cmd := newSendCommand(f)

	requireStatus(t, cmd.Execute(ctx, MessageSendInput{
		ActorID:     captain,
		SquadID:     created.ID,
		MessageType: "activity_checkin",
		Metadata:    map[string]any{"activityId": uuid.NewString()},
	}), http.StatusBadRequest, "Activity not found")

	requireStatus(t, cmd.Execute(ctx, MessageSendInput{
		ActorID:     captain,
		SquadID:     created.ID,
		MessageType: "activity_checkin",
		Metadata:    map[string]any{"activityId": "not-a-uuid"},
	}), http.StatusBadRequest, "Activity not found")

	feed, err := f.messages.ListFeed(ctx, types.MessageFeedFilter{SquadID: created.ID, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, feed)

	var plain types.Message
	require.NoError(t, cmd.Execute(ctx, MessageSendInput{
		ActorID:     captain,
		SquadID:     created.ID,
		MessageType: "activityCheckin",
		Result:      &plain,
	}))
	require.Equal(t, types.MessageTypeActivityCheckin, plain.Type)
}
