package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Name() string
	Run()
}

type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs cron jobs on their schedule and plain jobs every second. A job never
// overlaps with itself.
type TaskExecutor struct {
	cron     *cron.Cron
	jobs     []Job
	cronJobs []CronJob
	running  mapset.Set[string]
	mu       sync.Mutex
}

func NewTaskExecutor(jobs []Job, cronJobs []CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:     cron.New(),
		jobs:     jobs,
		cronJobs: cronJobs,
		running:  mapset.NewThreadUnsafeSet[string](),
	}
}

// Run the jobs in its own goroutine inside the cron.
func (t *TaskExecutor) Run() error {
	for _, job := range t.cronJobs {
		if err := t.cron.AddFunc(job.Schedule(), t.wrap(job)); err != nil {
			logrus.Errorf("failed to add task %s to cron: %v", job.Name(), err)
			return err
		}
	}

	for _, job := range t.jobs {
		if err := t.cron.AddFunc("@every 1s", t.wrap(job)); err != nil {
			return err
		}
	}

	t.cron.Start()
	return nil
}

func (t *TaskExecutor) wrap(job Job) func() {
	return func() {
		if !t.acquire(job.Name()) {
			logrus.Warnf("task %s is already running", job.Name())
			return
		}
		defer t.release(job.Name())

		job.Run()
	}
}

func (t *TaskExecutor) acquire(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running.Contains(name) {
		return false
	}
	t.running.Add(name)
	return true
}

func (t *TaskExecutor) release(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running.Remove(name)
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
}
