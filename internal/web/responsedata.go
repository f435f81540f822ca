package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/goserg/ratingengine/internal/domain"
)

type errorResponse struct {
	RequestID string   `json:"request_id,omitempty"`
	Errors    []string `json:"errors"`
}

type multierr interface {
	Unwrap() []error
}

func unwrap(err error) []error {
	var merr multierr
	if errors.As(err, &merr) {
		var errs []error
		for _, err := range merr.Unwrap() {
			errs = append(errs, unwrap(err)...)
		}
		return errs
	}
	return []error{err}
}

func newErrorResponse(requestID string, err error) errorResponse {
	resp := errorResponse{RequestID: requestID}
	for _, err := range unwrap(err) {
		resp.Errors = append(resp.Errors, err.Error())
	}
	return resp
}

func statusOf(err error) int {
	var ferr *fiber.Error
	switch {
	case errors.As(err, &ferr):
		return ferr.Code
	case errors.Is(err, domain.ErrInvalidMatch):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrBackdated):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUnknownCompetitor):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
