package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestEntityNotFoundMatchesErrNotFound(t *testing.T) {
	for _, err := range []error{
		ErrUserNotFound, ErrSessionNotFound, ErrInvitationNotFound, ErrResultNotFound,
		ErrParticipantNotFound, ErrScheduleNotFound, ErrNotificationNotFound,
	} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("errors.Is(%v, ErrNotFound) = false", err)
		}
		if !errors.Is(fmt.Errorf("wrapped: %w", err), err) {
			t.Fatalf("wrapped %v does not match itself", err)
		}
	}
	if errors.Is(ErrSessionNotFound, ErrUserNotFound) {
		t.Fatalf("distinct not-found errors match each other")
	}
	if errors.Is(ErrConflict, ErrNotFound) {
		t.Fatalf("ErrConflict matches ErrNotFound")
	}
}

func TestGetExtensionFromContentType(t *testing.T) {
	tests := map[string]string{"image/jpeg": ".jpg", "IMAGE/PNG": ".png", "image/gif": ".gif", "image/webp": ".webp"}
	for ct, want := range tests {
		got, err := GetExtensionFromContentType(ct)
		if err != nil || got != want {
			t.Fatalf("GetExtensionFromContentType(%q) = %q, %v; want %q", ct, got, err, want)
		}
	}
	if _, err := GetExtensionFromContentType("text/html"); !errors.Is(err, ErrValidation) {
		t.Fatalf("text/html error = %v, want %v", err, ErrValidation)
	}
}
