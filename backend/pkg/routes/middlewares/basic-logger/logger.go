package basiclogger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/sirupsen/logrus"
)

const (
	defaultLogFormat = "%s %-7s %s %s %3d %s [ %30v ] | %13v | \"%s\"\n"
)

type traceRequestWriter struct {
	logger *logrus.Entry
}

func (tr *traceRequestWriter) Write(p []byte) (n int, err error) {
	tr.logger.Debugf("%s", string(p))
	return len(p), nil
}

func UseLogger(logger *logrus.Entry) gin.HandlerFunc {
	return logRequest(logger)
}

func formatRequest(param gin.LogFormatterParams) string {
	var statusColor, methodColor, resetColor string
	if param.IsOutputColor() {
		statusColor = param.StatusCodeColor()
		methodColor = param.MethodColor()
		resetColor = param.ResetColor()
	}

	return fmt.Sprintf(defaultLogFormat,
		methodColor, param.Method, resetColor,
		statusColor, param.StatusCode, resetColor,
		fmt.Sprintf("agent: \"%s\"", param.Request.UserAgent()),
		param.Latency,
		param.Path,
	)
}

func logRequest(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		// header extractors run before this point, so req-id and tenant are set
		out := &traceRequestWriter{logger: helpers.ConfigureLogger(c.Request.Context(), logger)}

		param := gin.LogFormatterParams{
			Request:    c.Request,
			Keys:       c.Keys,
			TimeStamp:  time.Now(),
			Method:     c.Request.Method,
			StatusCode: c.Writer.Status(),
			ClientIP:   c.ClientIP(),
			BodySize:   c.Writer.Size(),
		}
		param.Latency = param.TimeStamp.Sub(start)

		if raw != "" {
			path = path + "?" + raw
		}
		param.Path = path

		fmt.Fprint(out, formatRequest(param))
	}
}
