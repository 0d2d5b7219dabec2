package middleware

import (
	"errors"
	"fmt"

	"jobscout/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AppError is the error type handlers return. The middleware converts it
// into the JSON envelope; anything else is treated as an internal error.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// ErrorMiddleware recovers panics and renders every error through the
// response envelope. Internals of 5xx errors never reach the client.
func ErrorMiddleware(log *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			err = c.Next()
		}()
		if err == nil {
			return nil
		}

		status, message, data := normalizeError(err)
		if status >= 500 && log != nil {
			log.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).WithError(err).Error("request failed")
		}
		return response.Error(c, status, message, data)
	}
}

func normalizeError(err error) (int, string, interface{}) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		status := appErr.StatusCode
		if status < 400 || status > 599 {
			status = fiber.StatusInternalServerError
		}
		if status >= 500 {
			return status, response.MessageInternalServerError, nil
		}
		message := appErr.Message
		if message == "" {
			message = response.DefaultMessageForStatus(status)
		}
		return status, message, appErr.Data
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr != nil {
		if fiberErr.Code >= 500 {
			return fiberErr.Code, response.MessageInternalServerError, nil
		}
		return fiberErr.Code, fiberErr.Message, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}
