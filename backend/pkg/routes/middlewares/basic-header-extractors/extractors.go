package headerextractors

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jakehl/goid"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/sirupsen/logrus"
)

// setContextValue stores the value both in the gin keys and in the request
// context, so services receiving either one see the same metadata.
func setContextValue(ctx *gin.Context, key string, value string) {
	ctx.Set(key, value)
	ctx.Request = ctx.Request.WithContext(context.WithValue(ctx.Request.Context(), key, value))
}

func updateContextWithRequestID(ctx *gin.Context, headers http.Header) {
	reqID := headers.Get(models.HttpRequestIDHeader)
	if reqID == "" {
		reqID = fmt.Sprintf("http.%s", goid.NewV4UUID())
	}
	setContextValue(ctx, core.LamassuContextKeyRequestID, reqID)
}

func updateContextWithSource(ctx *gin.Context, headers http.Header) {
	sourceHeader := headers.Get(models.HttpSourceHeader)
	if sourceHeader != "" {
		setContextValue(ctx, core.LamassuContextKeySource, sourceHeader)
	}
}

func updateContextWithTenant(ctx *gin.Context, headers http.Header, defaultTenant string) {
	tenant := headers.Get(models.HttpTenantHeader)
	if tenant == "" {
		tenant = defaultTenant
	}
	if tenant != "" {
		setContextValue(ctx, core.LamassuContextKeyTenant, tenant)
	}
}

func RequestMetadataToContextMiddleware(logger *logrus.Entry, defaultTenant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateContextWithRequestID(c, c.Request.Header)
		updateContextWithSource(c, c.Request.Header)
		updateContextWithTenant(c, c.Request.Header, defaultTenant)

		c.Next()
	}
}
