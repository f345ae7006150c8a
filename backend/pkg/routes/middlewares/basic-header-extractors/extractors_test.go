package headerextractors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestContext() *gin.Context {
	ctx := &gin.Context{
		Request: &http.Request{},
	}
	ctx.Request = ctx.Request.WithContext(context.Background())
	return ctx
}

func TestUpdateContextWithSource(t *testing.T) {
	ctx := newTestContext()

	headers := http.Header{}
	headers.Set("x-lms-source", "test-source")
	headers.Set("x-ignored", "ignored")

	updateContextWithSource(ctx, headers)

	assert.Equal(t, "test-source", ctx.Value(core.LamassuContextKeySource))
	assert.Equal(t, "test-source", ctx.Request.Context().Value(core.LamassuContextKeySource))
	assert.Nil(t, ctx.Value("x-ignored"))
}

func TestUpdateContextWithRequestID(t *testing.T) {
	t.Run("from header", func(t *testing.T) {
		ctx := newTestContext()
		headers := http.Header{}
		headers.Set("x-request-id", "abc-123")

		updateContextWithRequestID(ctx, headers)
		assert.Equal(t, "abc-123", ctx.Request.Context().Value(core.LamassuContextKeyRequestID))
	})

	t.Run("generated", func(t *testing.T) {
		ctx := newTestContext()
		updateContextWithRequestID(ctx, http.Header{})

		reqID, ok := ctx.Request.Context().Value(core.LamassuContextKeyRequestID).(string)
		assert.True(t, ok)
		assert.True(t, strings.HasPrefix(reqID, "http."))
	})
}

func TestUpdateContextWithTenant(t *testing.T) {
	var testcases = []struct {
		name          string
		header        string
		defaultTenant string
		expected      string
	}{
		{name: "header wins", header: "acme", defaultTenant: "default", expected: "acme"},
		{name: "falls back to default", header: "", defaultTenant: "default", expected: "default"},
		{name: "no tenant at all", header: "", defaultTenant: "", expected: ""},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newTestContext()
			headers := http.Header{}
			if tc.header != "" {
				headers.Set("x-tenant-id", tc.header)
			}

			updateContextWithTenant(ctx, headers, tc.defaultTenant)
			assert.Equal(t, tc.expected, helpers.TenantFromContext(ctx.Request.Context()))
		})
	}
}

func TestRequestMetadataToContextMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestMetadataToContextMiddleware(logrus.NewEntry(logrus.New()), "default"))

	var tenant string
	router.GET("/ping", func(c *gin.Context) {
		tenant = helpers.TenantFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "acme", tenant)
}
