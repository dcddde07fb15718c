package services

import "errors"

// Общие ошибки сервисов; в HTTP-статусы их переводит handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidation    = errors.New("validation failed")
	ErrInvalidState  = errors.New("operation not allowed in the current state")
	ErrQuorumNotMet  = errors.New("not enough participants to start the session")
	ErrInvalidTarget = errors.New("operation cannot target this user")

	// Ошибки конфликтов
	ErrConflict = errors.New("resource conflict")

	// Ошибки аутентификации и авторизации
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("operation not allowed for the current user")

	// Подтверждение сохранено, но начисление не завершилось (повтор через confirm)
	ErrSettlementPending = errors.New("result confirmed but settlement did not complete")

	// Ошибки конкретных сущностей, каждая совпадает с ErrNotFound через errors.Is
	ErrUserNotFound         = notFound("user not found")
	ErrSessionNotFound      = notFound("match session not found")
	ErrInvitationNotFound   = notFound("invitation not found")
	ErrResultNotFound       = notFound("match result not found")
	ErrParticipantNotFound  = notFound("participant not found")
	ErrScheduleNotFound     = notFound("session schedule not found")
	ErrNotificationNotFound = notFound("notification not found")
)

type notFoundError struct{ msg string }

func (e *notFoundError) Error() string        { return e.msg }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(msg string) error { return &notFoundError{msg: msg} }
