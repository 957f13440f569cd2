package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// StartJobs starts the background job scheduler.
func StartJobs(app JobContext) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startMirrorUpdateJob(s, app)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
}

func startMirrorUpdateJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().UpdateInterval
	if interval == 0 {
		log.Println("Mirror update interval is 0, scheduled updates are disabled.")
		return
	}

	jobID := "mirror-update"
	log.Printf("Scheduling job: '%s' to run every %d minutes.", jobID, interval)

	_, err := s.Every(interval).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", jobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		err := app.JobManager().RunJob(jobID, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobID, err)
	}
}
