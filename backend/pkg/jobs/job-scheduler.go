package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type JobScheduler struct {
	scheduler *cron.Cron
	logger    *logrus.Entry
	job       cron.Job
	jobId     cron.EntryID
}

// NewJobScheduler accepts standard five field expressions, descriptors such as
// "@every 1m" and six field expressions with a leading seconds field.
func NewJobScheduler(logger *logrus.Entry, frequency string, job cron.Job) (*JobScheduler, error) {
	scheduler := cron.New()

	logger.Infof("scheduling job with cron expression: '%s'", frequency)
	if strings.Count(strings.TrimSpace(frequency), " ") == 5 {
		logger.Warn("job uses 'second level' scheduling. This may cause performance issues in production scenarios")
		scheduler = cron.New(cron.WithSeconds())
	}

	js := &JobScheduler{
		scheduler: scheduler,
		logger:    logger,
		job:       job,
	}

	if job == nil {
		return js, nil
	}

	jobId, err := scheduler.AddJob(frequency, job)
	if err != nil {
		logger.Errorf("could not add scheduled run for job: %v", err)
		return nil, fmt.Errorf("invalid job frequency '%s': %w", frequency, err)
	}
	js.jobId = jobId

	return js, nil
}

func (js *JobScheduler) Start() {
	js.scheduler.Start()
}

func (js *JobScheduler) NextRun() time.Time {
	return js.scheduler.Entry(js.jobId).Next
}

func (js *JobScheduler) Stop() {
	if js.jobId != 0 {
		js.scheduler.Remove(js.jobId)
	}
	<-js.scheduler.Stop().Done()
}
