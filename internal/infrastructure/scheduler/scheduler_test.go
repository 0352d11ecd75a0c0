package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/pkg/logger"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "test job" }
func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	cfg := DefaultSchedulerConfig()
	cfg.Logger = logger.Discard()
	return NewScheduler(cfg)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "tribute"}

	require.NoError(t, s.Register(job, MustParseCronExpression(EveryMinute)))
	err := s.Register(job, MustParseCronExpression(EveryMinute))
	assert.ErrorIs(t, err, ErrJobAlreadyExists)
}

func TestRegisterRejectsNil(t *testing.T) {
	s := newTestScheduler()
	assert.ErrorIs(t, s.Register(nil, MustParseCronExpression(EveryMinute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "x"}, nil), ErrNilSchedule)
}

func TestEnableDisableToggle(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "tribute"}
	require.NoError(t, s.Register(job, MustParseCronExpression(EveryMinute)))

	require.NoError(t, s.DisableJob("tribute"))
	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].Enabled)

	require.NoError(t, s.EnableJob("tribute"))
	jobs = s.ListJobs()
	assert.True(t, jobs[0].Enabled)

	assert.ErrorIs(t, s.EnableJob("ghost"), ErrJobNotFound)
	assert.ErrorIs(t, s.DisableJob("ghost"), ErrJobNotFound)
}

func TestRunNowExecutesAndRecords(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "interest"}
	require.NoError(t, s.Register(job, MustParseCronExpression(EveryDayMidnight)))

	result, err := s.RunNow(context.Background(), "interest")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), job.runs.Load())

	info := s.ListJobs()[0]
	assert.Equal(t, int64(1), info.RunCount)
	assert.False(t, info.LastRun.IsZero())
}

func TestRunNowRecordsFailure(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "interest", err: errors.New("ledger offline")}
	require.NoError(t, s.Register(job, MustParseCronExpression(EveryDayMidnight)))

	result, err := s.RunNow(context.Background(), "interest")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.EqualError(t, result.Error, "ledger offline")
	assert.Equal(t, int64(1), s.ListJobs()[0].FailCount)
}

func TestRunNowUnknownJob(t *testing.T) {
	s := newTestScheduler()
	_, err := s.RunNow(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&countingJob{name: "tribute"}, MustParseCronExpression(EveryMinute)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(ctx), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Stop on a stopped scheduler is a no-op.
	require.NoError(t, s.Stop())
}

func TestListJobsSorted(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&countingJob{name: "tribute"}, MustParseCronExpression(EveryMinute)))
	require.NoError(t, s.Register(&countingJob{name: "interest"}, MustParseCronExpression(EveryMinute)))

	jobs := s.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "interest", jobs[0].Name)
	assert.Equal(t, "tribute", jobs[1].Name)

	// Next run is in the future for a fresh registration.
	assert.True(t, jobs[0].NextRun.After(time.Now().Add(-time.Minute)))
}
