package eventstest

import (
	"context"
	"testing"

	"vibesrm/internal/events"
)

var _ events.Publisher = (*Recorder)(nil)

func TestRecorderKeepsOrder(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), events.TopicOccupancyChanged, nil)
	_ = r.Publish(context.Background(), events.TopicGhostsChanged, nil)
	topics := r.Topics()
	if len(topics) != 2 || topics[0] != events.TopicOccupancyChanged || topics[1] != events.TopicGhostsChanged {
		t.Fatalf("unexpected topics %v", topics)
	}
	if got := r.Events(); len(got) != 2 || got[0].Topic != events.TopicOccupancyChanged {
		t.Fatalf("unexpected events %+v", got)
	}
}
