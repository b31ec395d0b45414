package httpapi

import (
	"context"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/command"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/query"
)

type bridgeRequest struct {
	IDToken     string `json:"idToken"`
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// BridgeSession exchanges a Firebase ID token for a session.
func (a *API) BridgeSession(ctx context.Context, req Request) (any, error) {
	var body bridgeRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	var result command.BridgeSessionResult
	err := a.svc.Commands().BridgeSession.Execute(ctx, command.BridgeSessionInput{
		IDToken:     body.IDToken,
		UID:         body.UID,
		Email:       body.Email,
		DisplayName: body.DisplayName,
		Result:      &result,
	})
	if err != nil {
		return nil, err
	}
	return newSessionBody(result), nil
}

type sendMessageRequest struct {
	SquadID   string         `json:"squadId"`
	Type      string         `json:"type"`
	Content   *string        `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	ReplyToID *string        `json:"replyToId"`
}

// SendMessage posts a chat message to a squad.
func (a *API) SendMessage(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	var body sendMessageRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	squadID, err := parseID(body.SquadID, "squadId")
	if err != nil {
		return nil, err
	}
	replyTo, err := parseOptionalID(body.ReplyToID, "replyToId")
	if err != nil {
		return nil, err
	}
	var msg types.Message
	err = a.svc.Commands().MessageSend.Execute(ctx, command.MessageSendInput{
		ActorID:     caller.Profile.ID,
		SquadID:     squadID,
		MessageType: body.Type,
		Content:     body.Content,
		Metadata:    body.Metadata,
		ReplyToID:   replyTo,
		Result:      &msg,
	})
	if err != nil {
		return nil, err
	}
	return messageRowBody{Message: newMessageRow(msg)}, nil
}

type fetchMessageRequest struct {
	MessageID string `json:"messageId"`
}

// FetchMessage returns one message with its reply, reactions and receipts.
func (a *API) FetchMessage(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	var body fetchMessageRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	id, err := parseID(body.MessageID, "messageId")
	if err != nil {
		return nil, err
	}
	msg, err := a.svc.Queries().MessageDetail.Query(ctx, query.MessageDetailInput{
		ActorID:   caller.Profile.ID,
		MessageID: id,
	})
	if err != nil {
		return nil, err
	}
	return messageDetailBody{Message: newMessageDetailView(*msg)}, nil
}

type fetchMessagesRequest struct {
	SquadID         string  `json:"squadId"`
	Limit           int     `json:"limit"`
	BeforeMessageID *string `json:"beforeMessageId"`
}

// FetchMessages returns a page of the squad feed in ascending order.
func (a *API) FetchMessages(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	var body fetchMessagesRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	squadID, err := parseID(body.SquadID, "squadId")
	if err != nil {
		return nil, err
	}
	before, err := parseOptionalID(body.BeforeMessageID, "beforeMessageId")
	if err != nil {
		return nil, err
	}
	messages, err := a.svc.Queries().MessageFeed.Query(ctx, query.MessageFeedInput{
		ActorID:         caller.Profile.ID,
		SquadID:         squadID,
		Limit:           body.Limit,
		BeforeMessageID: before,
	})
	if err != nil {
		return nil, err
	}
	rows := make([]messageRow, 0, len(messages))
	for _, msg := range messages {
		rows = append(rows, newMessageRow(msg))
	}
	return messageRowListBody{Data: rows}, nil
}

type squadCreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	AvatarURL   *string `json:"avatarUrl"`
}

// SquadCreate creates a squad captained by the caller.
func (a *API) SquadCreate(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	var body squadCreateRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	var squad types.Squad
	err = a.svc.Commands().SquadCreate.Execute(ctx, command.SquadCreateInput{
		ActorID:     caller.Profile.ID,
		Name:        body.Name,
		Description: body.Description,
		AvatarURL:   body.AvatarURL,
		Result:      &squad,
	})
	if err != nil {
		return nil, err
	}
	return squadBody{Squad: newSquadView(squad)}, nil
}

type squadJoinRequest struct {
	InviteCode string `json:"inviteCode"`
}

// SquadJoin adds the caller to the squad behind an invite code.
func (a *API) SquadJoin(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	var body squadJoinRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	var squad types.Squad
	err = a.svc.Commands().SquadJoin.Execute(ctx, command.SquadJoinInput{
		ActorID:    caller.Profile.ID,
		InviteCode: body.InviteCode,
		Result:     &squad,
	})
	if err != nil {
		return nil, err
	}
	return squadBody{Squad: newSquadView(squad)}, nil
}

type squadRequest struct {
	SquadID string `json:"squadId"`
}

// squadScoped resolves the caller and the squadId shared by the squad
// handlers.
func (a *API) squadScoped(ctx context.Context, req Request) (query.SquadInput, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return query.SquadInput{}, err
	}
	var body squadRequest
	if err := decode(req.Body, &body); err != nil {
		return query.SquadInput{}, err
	}
	squadID, err := parseID(body.SquadID, "squadId")
	if err != nil {
		return query.SquadInput{}, err
	}
	return query.SquadInput{ActorID: caller.Profile.ID, SquadID: squadID}, nil
}

// SquadLeave removes the caller from a squad.
func (a *API) SquadLeave(ctx context.Context, req Request) (any, error) {
	in, err := a.squadScoped(ctx, req)
	if err != nil {
		return nil, err
	}
	err = a.svc.Commands().SquadLeave.Execute(ctx, command.SquadLeaveInput{ActorID: in.ActorID, SquadID: in.SquadID})
	if err != nil {
		return nil, err
	}
	return successBody{Success: true}, nil
}

// SquadDelete deletes a squad the caller captains.
func (a *API) SquadDelete(ctx context.Context, req Request) (any, error) {
	in, err := a.squadScoped(ctx, req)
	if err != nil {
		return nil, err
	}
	err = a.svc.Commands().SquadDelete.Execute(ctx, command.SquadDeleteInput{ActorID: in.ActorID, SquadID: in.SquadID})
	if err != nil {
		return nil, err
	}
	return successBody{Success: true}, nil
}

// SquadGet returns one squad the caller belongs to.
func (a *API) SquadGet(ctx context.Context, req Request) (any, error) {
	in, err := a.squadScoped(ctx, req)
	if err != nil {
		return nil, err
	}
	squad, err := a.svc.Queries().SquadGet.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	return squadBody{Squad: newSquadView(*squad)}, nil
}

// SquadList returns every squad the caller belongs to.
func (a *API) SquadList(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	squads, err := a.svc.Queries().SquadList.Query(ctx, query.SquadListInput{ActorID: caller.Profile.ID})
	if err != nil {
		return nil, err
	}
	views := make([]squadView, 0, len(squads))
	for _, squad := range squads {
		views = append(views, newSquadView(squad))
	}
	return squadListBody{Data: views}, nil
}

// SquadMembers returns the squad roster.
func (a *API) SquadMembers(ctx context.Context, req Request) (any, error) {
	in, err := a.squadScoped(ctx, req)
	if err != nil {
		return nil, err
	}
	members, err := a.svc.Queries().SquadMembers.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	views := make([]memberView, 0, len(members))
	for _, member := range members {
		views = append(views, newMemberView(member))
	}
	return memberListBody{Data: views}, nil
}

// SquadStats returns the squad dashboard counters.
func (a *API) SquadStats(ctx context.Context, req Request) (any, error) {
	in, err := a.squadScoped(ctx, req)
	if err != nil {
		return nil, err
	}
	stats, err := a.svc.Queries().SquadStats.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	return statsBody{Stats: statsView(stats)}, nil
}

type activityLogRequest struct {
	ActivityType    string     `json:"activityType"`
	DistanceKm      float64    `json:"distanceKm"`
	DurationSeconds int        `json:"durationSeconds"`
	StartedAt       *time.Time `json:"startedAt"`
}

// ActivityLog records a workout for the caller.
func (a *API) ActivityLog(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	var body activityLogRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	var activity types.Activity
	err = a.svc.Commands().ActivityLog.Execute(ctx, command.ActivityLogInput{
		ActorID:         caller.Profile.ID,
		ActivityType:    body.ActivityType,
		DistanceKm:      body.DistanceKm,
		DurationSeconds: body.DurationSeconds,
		StartedAt:       body.StartedAt,
		Result:          &activity,
	})
	if err != nil {
		return nil, err
	}
	return activityBody{Activity: activityView{
		ID:              activity.ID,
		ProfileID:       activity.ProfileID,
		ActivityType:    activity.ActivityType,
		DistanceKm:      activity.DistanceKm,
		DurationSeconds: activity.DurationSeconds,
		StartedAt:       activity.StartedAt,
		CreatedAt:       activity.CreatedAt,
	}}, nil
}

type onboardingRequest struct {
	Messages  []types.ChatMessage `json:"messages"`
	ProfileID *string             `json:"profileId"`
}

// OnboardingAssistant runs one turn of the onboarding coach.
func (a *API) OnboardingAssistant(ctx context.Context, req Request) (any, error) {
	caller, err := a.caller(ctx, req)
	if err != nil {
		return nil, err
	}
	var body onboardingRequest
	if err := decode(req.Body, &body); err != nil {
		return nil, err
	}
	profileID, err := parseOptionalID(body.ProfileID, "profileId")
	if err != nil {
		return nil, err
	}
	var result command.OnboardingChatResult
	err = a.svc.Commands().OnboardingChat.Execute(ctx, command.OnboardingChatInput{
		ActorID:   caller.Profile.ID,
		ProfileID: profileID,
		Messages:  body.Messages,
		Result:    &result,
	})
	if err != nil {
		return nil, err
	}
	return onboardingBody{Message: result.Reply, ExtractedData: result.Extracted.Map()}, nil
}
