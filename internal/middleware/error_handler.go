package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// MapError maps request validation errors to 400, NO_DATA to 404 and
// everything else through MapDBError.
func MapError(err error) (int, ErrorResponse) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := http.StatusNotFound
		if apperr.IsClient(err) {
			status = http.StatusBadRequest
		}
		return status, ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)}
	}
	if errors.Is(err, context.Canceled) {
		return 499, ErrorResponse{Error: "request canceled"}
	}
	return MapDBError(err)
}

func MapDBError(err error) (int, ErrorResponse) {
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "42703": // undefined_table, undefined_column
			log.Error().Err(err).Str("code", pgErr.Code).Msg("fact store schema mismatch")
			return http.StatusInternalServerError, ErrorResponse{Error: "fact store schema mismatch"}
		case "57014": // query_canceled
			return http.StatusGatewayTimeout, ErrorResponse{Error: "query timed out"}
		case "22P02", "22007", "22008": // invalid_text_representation, invalid_datetime_format, datetime_field_overflow
			return http.StatusBadRequest, ErrorResponse{
				Error:   "invalid parameter value",
				Details: pgErr.Message,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled database error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}
