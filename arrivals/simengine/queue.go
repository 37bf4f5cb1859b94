package simengine

import (
	"container/heap"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

type scheduledActivation struct {
	at         arrivals.Minutes
	seq        uint64
	activation arrivals.Activation
}

// activationQueue is a min-heap on (at, seq).
type activationQueue []scheduledActivation

func (q activationQueue) Len() int { return len(q) }

func (q activationQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}

	return q[i].at < q[j].at
}

func (q activationQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *activationQueue) Push(x any) {
	*q = append(*q, x.(scheduledActivation))
}

func (q *activationQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = scheduledActivation{}
	*q = old[:n-1]

	return item
}

func (q *activationQueue) push(item scheduledActivation) {
	heap.Push(q, item)
}

func (q *activationQueue) pop() scheduledActivation {
	return heap.Pop(q).(scheduledActivation)
}

func (q activationQueue) peek() (scheduledActivation, bool) {
	if len(q) == 0 {
		return scheduledActivation{}, false
	}

	return q[0], true
}
