package flow

import (
	"errors"
	"fmt"

	"github.com/aretw0/leadchat/pkg/domain"
)

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConsentRequired is returned when the visitor submits at the consent gate without consenting.
	ErrConsentRequired = errors.New("consent required")

	// ErrNotAwaitingInput is returned for blank submissions or when no field is awaited.
	ErrNotAwaitingInput = errors.New("not awaiting input")

	// ErrChoicePending is returned by Close while a channel choice is outstanding.
	ErrChoicePending = errors.New("channel choice pending")

	// ErrNoChoicePending is returned by ChooseChannel before any choice was offered.
	ErrNoChoicePending = errors.New("no channel choice offered")

	// ErrChoiceCooldown is returned for channel clicks inside the cooldown window.
	ErrChoiceCooldown = errors.New("channel choice cooling down")

	// ErrUnknownChannel is returned by ChooseChannel for channels other than app and web.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrSessionClosed is returned by every host event after Shutdown.
	ErrSessionClosed = errors.New("session closed")
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   domain.Field
	Kind    domain.Field
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
