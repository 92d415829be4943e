package handlers

import (
	"net/http"

	"fare-system/internal/apperror"
	"fare-system/internal/logger"
)

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	switch {
	case apperror.Is(err, apperror.KindNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	case apperror.Is(err, apperror.KindValidation),
		apperror.Is(err, apperror.KindInvalidCoordinate),
		apperror.Is(err, apperror.KindUnknownRideType):
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		if log != nil {
			log.WithError(err).Error(internalMessage)
		}
		writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
	}
}
