package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/aistrust/scorer"
)

// NewScoreFeed is emitted for every record that is successfully scored and persisted.
var NewScoreFeed = event.FeedOf[*scorer.Record]{}

// JobFailedFeed carries the jobs that could not be scored.
// Subscribers get the job id and the error; the job itself is already logged.
var JobFailedFeed = event.FeedOf[JobFailure]{}

type JobFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}
