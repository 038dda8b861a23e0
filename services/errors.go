package services

import "errors"

// Общие ошибки сервисного слоя. Хендлеры мапят их на HTTP-статусы в
// mapServiceErrorToHTTP.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort       = errors.New("password is too short")

	// Организации и участники
	ErrOrganizationNameRequired = errors.New("organization name is required")
	ErrOwnerCannotBeRemoved     = errors.New("the organization owner cannot be removed")
	ErrOwnerRoleImmutable       = errors.New("the organization owner role cannot be changed")
	ErrInvalidRole              = errors.New("invalid organization role")
	ErrInviteExpired            = errors.New("invite has expired")
	ErrInviteAlreadyAccepted    = errors.New("invite has already been accepted")

	// Команды и составы
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrPlayerNameRequired = errors.New("player name is required")

	// Турниры
	ErrTournamentNameRequired     = errors.New("tournament name is required")
	ErrTournamentInvalidDateRange = errors.New("tournament end date must be after start date")

	// Матчи и скоринг
	ErrMatchNameRequired        = errors.New("match name is required")
	ErrMatchSameTeam            = errors.New("a match needs two different teams")
	ErrMatchNotScheduled        = errors.New("match details can only be changed while scheduled")
	ErrMatchAlreadyStarted      = errors.New("match has already started or completed")
	ErrMatchScoringFormatNotSet = errors.New("match does not have a scoring format set")
	ErrMatchNotInProgress       = errors.New("match is not in progress")
	ErrMatchScoreNotInitialized = errors.New("match score not initialized")
	ErrNoPointsToUndo           = errors.New("no points to undo")
	ErrMatchAlreadyCompleted    = errors.New("match is already completed")
	ErrInvalidSide              = errors.New("side must be home or away")

	// Статистика
	ErrStatKeyRequired = errors.New("stat key is required")
)
