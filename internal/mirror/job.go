package mirror

import (
	"log"

	"github.com/ffmirror/ffmirror-go/internal/jobs"
	"github.com/ffmirror/ffmirror-go/internal/models"
	"github.com/ffmirror/ffmirror-go/internal/store"
)

const UpdateJobID = "mirror-update"

type jobEvent struct {
	JobID string `json:"jobId"`
	models.Event
}

// UpdateJob is the background-job entry point for a full mirror
// update. Progress events are forwarded to connected websocket
// clients.
func UpdateJob(ctx jobs.JobContext) {
	svc := New(store.New(ctx.DB()), ctx.Config().Mirror.Path)
	sink := func(ev models.Event) {
		ctx.WsHub().BroadcastJSON(jobEvent{JobID: UpdateJobID, Event: ev})
	}
	if err := svc.RunUpdate(sink, ctx.Config().MaxAuthors); err != nil {
		log.Printf("Mirror update failed: %v", err)
		ctx.JobManager().Fail(UpdateJobID, err.Error())
	}
}
