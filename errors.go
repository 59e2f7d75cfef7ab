package recetario

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/gofiber/fiber/v2"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrMismatchedHashAndPassword is returned when a password comparison fails
var ErrMismatchedHashAndPassword = errors.New("credenciales inválidas")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password should not be an empty string")

// ErrTooManyLoginAttempts is returned during the login cool down window
var ErrTooManyLoginAttempts = errors.New("too many login attempts")

// StatusFromError maps an error to the HTTP status code for the public
// taxonomy: Conflict, Unauthorized, BadRequest, NotFound, Internal.
func StatusFromError(err error) int {
	if err == nil {
		return fiber.StatusOK
	}

	if errors.Is(err, ErrMismatchedHashAndPassword) ||
		errors.Is(err, ErrIdentityNotFound) ||
		errors.Is(err, ErrTooManyLoginAttempts) {
		return fiber.StatusUnauthorized
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryConflict:
			return fiber.StatusConflict
		case goerrors.CategoryAuth:
			return fiber.StatusUnauthorized
		case goerrors.CategoryNotFound:
			return fiber.StatusNotFound
		case goerrors.CategoryBadInput, goerrors.CategoryValidation:
			return fiber.StatusBadRequest
		default:
			return fiber.StatusInternalServerError
		}
	}

	return fiber.StatusInternalServerError
}

// PublicMessage returns the message safe to surface to API clients.
// Unexpected store errors never leak backend details.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrMismatchedHashAndPassword) ||
		errors.Is(err, ErrIdentityNotFound) ||
		errors.Is(err, ErrTooManyLoginAttempts) {
		return "Credenciales inválidas"
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Category == goerrors.CategoryInternal ||
			richErr.Category == goerrors.CategoryOperation {
			return "Error interno del servidor"
		}
		return richErr.Message
	}

	return "Error interno del servidor"
}
