package scheduler

import (
	"container/heap"

	"github.com/sandeepkv93/taskremind/internal/model"
)

type queueItem struct {
	event model.ReminderEvent
}

// priorityQueue orders events by fire time, then task id, then kind, then
// occurrence start.
type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return eventLess(pq[i].event, pq[j].event)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

func (pq *priorityQueue) drain() []model.ReminderEvent {
	out := make([]model.ReminderEvent, 0, pq.Len())
	for pq.Len() > 0 {
		item := heap.Pop(pq).(queueItem)
		out = append(out, item.event)
	}
	return out
}

func eventLess(a, b model.ReminderEvent) bool {
	if !a.FireAt.Equal(b.FireAt) {
		return a.FireAt.Before(b.FireAt)
	}
	if a.TaskID != b.TaskID {
		return a.TaskID < b.TaskID
	}
	if a.Kind.Rank() != b.Kind.Rank() {
		return a.Kind.Rank() < b.Kind.Rank()
	}
	return a.OccurrenceStart.Before(b.OccurrenceStart)
}
