package tcp

import (
	"errors"
	"fmt"

	"powsearch/internal/usecases"
	"powsearch/pkg/pow/search"
)

var (
	// Protocol errors
	ErrInvalidProtocol = errors.New("invalid protocol format")
	ErrDigestMismatch  = errors.New("solution names a different digest")

	// Connection errors
	ErrConnectionClosed = errors.New("connection closed")
	ErrReadTimeout      = errors.New("read operation timeout")
	ErrWriteTimeout     = errors.New("write operation timeout")

	// Challenge errors
	ErrChallengeFailed   = errors.New("failed to generate challenge")
	ErrChallengeDelivery = errors.New("failed to deliver challenge")

	// Solution errors
	ErrSolutionFormat = errors.New("invalid solution format")

	// System errors
	ErrServerShutdown = errors.New("server is shutting down")
	ErrInternal       = errors.New("internal server error")
)

// ServerError carries the failing operation and some context.
type ServerError struct {
	Op   string
	Err  error
	Info string
}

func (e *ServerError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Info)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func NewConnectionError(op string, err error, info string) error {
	return &ServerError{
		Op:   op,
		Err:  err,
		Info: info,
	}
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrReadTimeout) || errors.Is(err, ErrWriteTimeout)
}

func IsProtocolError(err error) bool {
	return errors.Is(err, ErrInvalidProtocol) ||
		errors.Is(err, ErrSolutionFormat) ||
		errors.Is(err, ErrDigestMismatch)
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	ErrRespInvalidFormat = ErrorResponse{
		Code:    "INVALID_FORMAT",
		Message: "Invalid message format",
	}
	ErrRespTimeout = ErrorResponse{
		Code:    "TIMEOUT",
		Message: "Operation timed out",
	}
	ErrRespInvalidSolution = ErrorResponse{
		Code:    "INVALID_SOLUTION",
		Message: "Invalid proof of work solution",
	}
	ErrRespInvalidWidth = ErrorResponse{
		Code:    "INVALID_WIDTH",
		Message: "Nonce width does not match the challenge",
	}
	ErrRespDigestMismatch = ErrorResponse{
		Code:    "DIGEST_MISMATCH",
		Message: "Solution was computed with another digest",
	}
	ErrRespUnknownDigest = ErrorResponse{
		Code:    "UNKNOWN_DIGEST",
		Message: "Digest is not offered by this server",
	}
	ErrRespInvalidDifficulty = ErrorResponse{
		Code:    "INVALID_DIFFICULTY",
		Message: "Difficulty cannot be reached with this digest",
	}
	ErrRespExhausted = ErrorResponse{
		Code:    "EXHAUSTED",
		Message: "No nonce of this width meets the difficulty",
	}
)

func ToErrorResponse(err error) ErrorResponse {
	switch {
	case errors.Is(err, ErrDigestMismatch):
		return ErrRespDigestMismatch
	case errors.Is(err, usecases.ErrUnknownDigest):
		return ErrRespUnknownDigest
	case IsProtocolError(err):
		return ErrRespInvalidFormat
	case IsTimeoutError(err):
		return ErrRespTimeout
	case errors.Is(err, usecases.ErrInvalidSolution):
		return ErrRespInvalidSolution
	case errors.Is(err, search.ErrLengthMismatch):
		return ErrRespInvalidWidth
	case errors.Is(err, search.ErrInvalidDifficulty):
		return ErrRespInvalidDifficulty
	case errors.Is(err, search.ErrSearchExhausted):
		return ErrRespExhausted
	default:
		return ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "An internal error occurred",
		}
	}
}
