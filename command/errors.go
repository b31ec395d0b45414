package command

import (
	"errors"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
)

var (
	// ErrActorRequired indicates the caller's profile was not supplied.
	ErrActorRequired = errors.New("squadup: actor profile required")
	// ErrMissingVerifier occurs when the bridge has no identity verifier.
	ErrMissingVerifier = errors.New("squadup: missing identity verifier")
	// ErrMissingIssuer occurs when the bridge cannot mint sessions.
	ErrMissingIssuer = errors.New("squadup: missing session issuer")
)

// Client-facing messages.
const (
	msgSquadIDRequired     = "Squad ID is required"
	msgSquadNotMember      = "You are not a member of this squad"
	msgSquadNotFound       = "Squad not found"
	msgNameTooShort        = "Squad name must be at least 3 characters"
	msgNameTooLong         = "Squad name must be less than 30 characters"
	msgInviteExhausted     = "Failed to generate unique invite code"
	msgInviteInvalid       = "Invalid invite code"
	msgAlreadyMember       = "You are already a member of this squad"
	msgSquadFull           = "Squad is full"
	msgCaptainCannotLeave  = "Captain cannot leave the squad while other members exist. Delete the squad instead."
	msgCaptainOnlyDelete   = "Only the captain can delete the squad"
	msgSendFieldsRequired  = "Squad ID and message type are required"
	msgSendNotMember       = "Not a member of this squad"
	msgInvalidMessageType  = "Invalid message type"
	msgReplyInvalid        = "Reply target must be a message in this squad"
	msgActivityInvalid     = "Activity not found"
	msgActivityCheckedIn   = "Activity already checked in"
	msgActivityTypeMissing = "Activity type is required"
	msgDistanceNegative    = "Distance must not be negative"
	msgDurationNegative    = "Duration must not be negative"
	msgBridgeFields        = "idToken and uid are required"
	msgBridgeTokenInvalid  = "Invalid ID token"
	msgBridgeUIDMismatch   = "ID token does not match uid"
	msgProfileMismatch     = "Cannot update another user's onboarding data"
	msgOnboardingDisabled  = "Onboarding assistant is disabled"
	msgOpenAINotConfigured = "OpenAI API key not configured"
	msgOpenAIError         = "OpenAI API error: "
)

func invalid(msg, textCode string) error {
	return apperr.Validation(msg, textCode)
}

func forbidden(msg, textCode string) error {
	return apperr.Forbidden(msg, textCode)
}

func squadIDRequired() error {
	return invalid(msgSquadIDRequired, "SQUAD_ID_REQUIRED")
}
