package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	Invalid           Kind = "invalid"
	NotFound          Kind = "not_found"
	Unauthorized      Kind = "unauthorized"
	Forbidden         Kind = "forbidden"
	Conflict          Kind = "conflict"
	RemoteUnavailable Kind = "remote_unavailable"
	WriteFailed       Kind = "write_failed"
	AuthFailed        Kind = "auth_failed"
	Internal          Kind = "internal"
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

// Constructors (PublicMsg should stay short and safe)
func InvalidErr(publicMsg string, fields map[string]string) *AppError {
	return &AppError{Kind: Invalid, PublicMsg: publicMsg, Fields: fields}
}
func NotFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: publicMsg}
}
func UnauthorizedErr(publicMsg string) *AppError {
	return &AppError{Kind: Unauthorized, PublicMsg: publicMsg}
}
func ForbiddenErr(publicMsg string) *AppError {
	return &AppError{Kind: Forbidden, PublicMsg: publicMsg}
}
func ConflictErr(publicMsg string) *AppError {
	return &AppError{Kind: Conflict, PublicMsg: publicMsg}
}

// RemoteUnavailableErr: a read against the backend store failed.
func RemoteUnavailableErr(err error) *AppError {
	return &AppError{Kind: RemoteUnavailable, PublicMsg: "Backend unavailable. Try again.", Err: err}
}

// WriteFailedErr: a create/update/delete was rejected by the backend.
func WriteFailedErr(err error) *AppError {
	return &AppError{Kind: WriteFailed, PublicMsg: "Write failed. Try again.", Err: err}
}

// AuthFailedErr: bad credentials or provider-side signup/login rejection.
func AuthFailedErr(publicMsg string, err error) *AppError {
	if publicMsg == "" {
		publicMsg = "Authentication failed."
	}
	return &AppError{Kind: AuthFailed, PublicMsg: publicMsg, Err: err}
}

// Wrap: wrap an internal error without a public message (default 500)
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Kind: Internal, PublicMsg: "Something went wrong.", Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Invalid:
			return http.StatusBadRequest
		case Unauthorized, AuthFailed:
			return http.StatusUnauthorized
		case Forbidden:
			return http.StatusForbidden
		case NotFound:
			return http.StatusNotFound
		case Conflict:
			return http.StatusConflict
		case RemoteUnavailable:
			return http.StatusBadGateway
		case WriteFailed:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return "Something went wrong."
}
