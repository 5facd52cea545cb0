// Package errors provides structured error handling for the contest platform.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Contest errors
	CodeContestTitleEmpty   Code = "CONTEST_TITLE_EMPTY"
	CodeContestTypeEmpty    Code = "CONTEST_TYPE_EMPTY"
	CodeContestInvalidPrice Code = "CONTEST_INVALID_PRICE"

	// Task submission errors
	CodeTaskEmailEmpty         Code = "TASK_EMAIL_EMPTY"
	CodeTaskEmpty              Code = "TASK_EMPTY"
	CodeTaskNameEmpty          Code = "TASK_NAME_EMPTY"
	CodeTaskParticipantMissing Code = "TASK_PARTICIPANT_NOT_IN_CONTEST"

	// User errors
	CodeUserEmailEmpty Code = "USER_EMAIL_EMPTY"
	CodeUserRoleEmpty  Code = "USER_ROLE_EMPTY"

	// Winner errors
	CodeWinnerRecordEmpty Code = "WINNER_RECORD_EMPTY"

	// Auth errors
	CodeAuthTokenMissing Code = "AUTH_TOKEN_MISSING"
	CodeAuthTokenInvalid Code = "AUTH_TOKEN_INVALID"

	// Storage errors
	CodeNotFound          Code = "NOT_FOUND"
	CodeParticipantExists Code = "PARTICIPANT_ALREADY_EXISTS"

	// Payment gateway errors
	CodeGatewayUnavailable      Code = "GATEWAY_UNAVAILABLE"
	CodeGatewaySessionMalformed Code = "GATEWAY_SESSION_MALFORMED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeContestTitleEmpty,
		CodeContestTypeEmpty,
		CodeContestInvalidPrice,
		CodeTaskEmailEmpty,
		CodeTaskEmpty,
		CodeTaskNameEmpty,
		CodeUserEmailEmpty,
		CodeUserRoleEmpty,
		CodeWinnerRecordEmpty:
		return http.StatusBadRequest

	// Unauthorized - missing or invalid identity credential
	case CodeAuthTokenMissing,
		CodeAuthTokenInvalid:
		return http.StatusUnauthorized

	// Not found - resource or membership doesn't exist
	case CodeNotFound,
		CodeTaskParticipantMissing:
		return http.StatusNotFound

	// Conflict - unique resource constraint
	case CodeParticipantExists:
		return http.StatusConflict

	// Bad gateway - payment provider unreachable or returned malformed data
	case CodeGatewayUnavailable,
		CodeGatewaySessionMalformed:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
