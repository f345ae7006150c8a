package jobs

import (
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/services"
	"github.com/sirupsen/logrus"
)

// LivenessSweepJob marks devices offline once they have been silent for longer
// than offlineAfter.
type LivenessSweepJob struct {
	logger       *logrus.Entry
	service      services.LivenessService
	offlineAfter time.Duration
}

func NewLivenessSweepJob(service services.LivenessService, offlineAfter time.Duration, logger *logrus.Entry) *LivenessSweepJob {
	return &LivenessSweepJob{
		service:      service,
		logger:       logger,
		offlineAfter: offlineAfter,
	}
}

func (job *LivenessSweepJob) Run() {
	ctx := helpers.InitContext()
	lFunc := helpers.ConfigureLogger(ctx, job.logger)

	start := time.Now()
	lFunc.Debugf("starting liveness sweep. Devices silent for more than %s will be marked offline", job.offlineAfter)

	count, err := job.service.SweepOffline(ctx, services.SweepOfflineInput{
		OlderThan: job.offlineAfter,
	})
	if err != nil {
		lFunc.Errorf("liveness sweep failed: %s", err)
		return
	}

	if count > 0 {
		lFunc.Infof("%d devices marked as offline", count)
	}
	lFunc.Debugf("ending liveness sweep. Took %v", time.Since(start))
}
