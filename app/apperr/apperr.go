// Package apperr holds the error taxonomy shared by the content, auth and
// radio packages. HTTP handlers map these onto status codes; everything
// else just wraps and returns them.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// PersistenceError reports a failed read or write against the document store.
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err unless it is nil or already carries a meaning the
// caller has to see (not found, conflict, invalid argument).
func Persistence(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidArgument) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Collection: collection, Err: err}
}

// UpstreamError reports a failed call to a third-party API.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream returned HTTP %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s upstream failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type AuthCode string

const (
	AuthWrongPassword   AuthCode = "wrong-password"
	AuthUserNotFound    AuthCode = "user-not-found"
	AuthEmailInUse      AuthCode = "email-already-in-use"
	AuthWeakPassword    AuthCode = "weak-password"
	AuthInvalidCode     AuthCode = "invalid-invitation-code"
	AuthTooManyRequests AuthCode = "too-many-requests"
	AuthUnauthenticated AuthCode = "unauthenticated"
	AuthRegistrationOff AuthCode = "registration-disabled"
)

var authMessages = map[AuthCode]string{
	AuthWrongPassword:   "La contraseña es incorrecta.",
	AuthUserNotFound:    "No existe una cuenta con ese correo.",
	AuthEmailInUse:      "Ya existe una cuenta con ese correo.",
	AuthWeakPassword:    "La contraseña debe tener al menos 8 caracteres.",
	AuthInvalidCode:     "El código de invitación no es válido o ya fue utilizado.",
	AuthTooManyRequests: "Demasiados intentos. Inténtalo de nuevo más tarde.",
	AuthUnauthenticated: "Debes iniciar sesión.",
	AuthRegistrationOff: "El registro de nuevas cuentas está deshabilitado.",
}

// AuthError is a sign-in or sign-up failure with a user-facing message.
type AuthError struct {
	Code AuthCode
	Err  error
}

func NewAuthError(code AuthCode, err error) *AuthError {
	return &AuthError{Code: code, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %v", e.Code, e.Err)
	}
	return "auth " + string(e.Code)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Message returns the Spanish message shown to the user.
func (e *AuthError) Message() string {
	if msg, ok := authMessages[e.Code]; ok {
		return msg
	}
	return "No se pudo completar la autenticación."
}
