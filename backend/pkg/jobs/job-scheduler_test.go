package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Run() {
	j.runs.Add(1)
}

func TestNewJobSchedulerWithoutJob(t *testing.T) {
	logger := logrus.New().WithField("test", "test")

	js, err := NewJobScheduler(logger, "0 0 * * *", nil)
	assert.NoError(t, err)

	js.Start()
	assert.Empty(t, js.scheduler.Entries())
	assert.True(t, js.NextRun().IsZero())
	js.Stop()
}

func TestNewJobScheduler(t *testing.T) {
	logger := logrus.New().WithField("test", "test")
	job := &countingJob{}

	js, err := NewJobScheduler(logger, "0 0 * * *", job)
	assert.NoError(t, err)
	t.Cleanup(js.Stop)

	assert.Equal(t, logger, js.logger)
	assert.Equal(t, job, js.job)
	assert.NotZero(t, js.jobId)

	js.Start()
	assert.False(t, js.NextRun().IsZero())
}

func TestNewJobSchedulerInvalidFrequency(t *testing.T) {
	logger := logrus.New().WithField("test", "test")

	js, err := NewJobScheduler(logger, "every now and then", &countingJob{})
	assert.Error(t, err)
	assert.Nil(t, js)
}

func TestJobSchedulerSecondsAndDescriptors(t *testing.T) {
	logger := logrus.New().WithField("test", "test")

	var testcases = []struct {
		name      string
		frequency string
	}{
		{name: "descriptor", frequency: "@every 1m"},
		{name: "seconds", frequency: "*/30 * * * * *"},
		{name: "standard", frequency: "*/5 * * * *"},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			js, err := NewJobScheduler(logger, tc.frequency, &countingJob{})
			assert.NoError(t, err)
			js.Start()
			assert.False(t, js.NextRun().IsZero())
			js.Stop()
		})
	}
}

func TestJobSchedulerRuns(t *testing.T) {
	logger := logrus.New().WithField("test", "test")
	job := &countingJob{}

	js, err := NewJobScheduler(logger, "* * * * * *", job)
	assert.NoError(t, err)

	js.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	js.Stop()
}
