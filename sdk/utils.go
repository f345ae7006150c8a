package sdk

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lamassuiot/lamassu-iot-gateway/core"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/errs"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/models"
	"github.com/sirupsen/logrus"
)

const SDKSource = "lrn://sdk/iot-gateway"

func BuildURL(cfg config.HTTPClient) string {
	return fmt.Sprintf("%s://%s:%d%s", cfg.Protocol, cfg.Hostname, cfg.Port, cfg.BasePath)
}

func BuildHTTPClient(cfg config.HTTPClient, logger *logrus.Entry) (*resty.Client, error) {
	client := resty.New().
		SetBaseURL(BuildURL(cfg)).
		SetLogger(logger).
		SetHeader("Content-Type", "application/json").
		SetHeader(models.HttpSourceHeader, SDKSource)

	if cfg.Timeout != "" {
		timeout, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid http client timeout %s: %w", cfg.Timeout, err)
		}
		client.SetTimeout(timeout)
	}

	if cfg.TenantID != "" {
		client.SetHeader(models.HttpTenantHeader, cfg.TenantID)
	}

	if cfg.Protocol == config.HTTPS {
		client.SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})

		if cfg.CACertificateFile != "" {
			client.SetRootCertificate(cfg.CACertificateFile)
		}
	}

	return client, nil
}

func newRequest(ctx context.Context, client *resty.Client, tenantID string) *resty.Request {
	r := client.R().SetContext(ctx)
	if tenantID != "" {
		r.SetHeader(models.HttpTenantHeader, tenantID)
	}

	if reqID, ok := ctx.Value(core.LamassuContextKeyRequestID).(string); ok {
		r.SetHeader(models.HttpRequestIDHeader, reqID)
	}

	return r
}

func Post[T any](r *resty.Request, url string, data any, knownErrors map[int][]error) (T, error) {
	var m T
	res, err := r.SetBody(data).SetResult(&m).Post(url)
	if err != nil {
		return m, err
	}

	if res.IsError() {
		return m, nonOKResponseToError(res.StatusCode(), res.Body(), knownErrors)
	}

	return m, nil
}

func Get[T any](r *resty.Request, url string, knownErrors map[int][]error) (T, error) {
	var m T
	res, err := r.SetResult(&m).Get(url)
	if err != nil {
		return m, err
	}

	if res.IsError() {
		return m, nonOKResponseToError(res.StatusCode(), res.Body(), knownErrors)
	}

	return m, nil
}

// nonOKResponseToError turns the gateway {"err": ...} body back into the
// sentinel errors callers compare against.
func nonOKResponseToError(resStatusCode int, resBody []byte, knownErrors map[int][]error) error {
	type errJson struct {
		Err string `json:"err"`
	}

	var decodedErr errJson
	if err := json.Unmarshal(resBody, &decodedErr); err != nil {
		return fmt.Errorf("unexpected status code %d. Body err msg could not be decoded: %s", resStatusCode, string(resBody))
	}

	for _, errInSC := range knownErrors[resStatusCode] {
		if strings.Contains(decodedErr.Err, errInSC.Error()) {
			return errInSC
		}
	}

	if resStatusCode == 400 {
		prefix := errs.ErrValidation.Error() + ": "
		switch {
		case strings.HasPrefix(decodedErr.Err, prefix):
			return errs.NewValidationError(strings.Split(strings.TrimPrefix(decodedErr.Err, prefix), "; ")...)
		case decodedErr.Err == errs.ErrValidateBadRequest.Error():
			return errs.ErrValidateBadRequest
		default:
			return fmt.Errorf("%w: %s", errs.ErrValidateBadRequest, decodedErr.Err)
		}
	}

	return fmt.Errorf("unexpected status code %d. No expected error matching found: %s", resStatusCode, string(resBody))
}
