package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrValidateBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrDeviceNotFound), errors.Is(err, errs.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlertInvalidStatus):
		return http.StatusConflict
	case errors.Is(err, errs.ErrBrokerNotConnected):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(ctx *gin.Context, err error) {
	ctx.JSON(errorStatus(err), gin.H{"err": err.Error()})
}
