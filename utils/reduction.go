package utils

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Reducer sums a fixed-size buffer across every participating worker. On
// return buf holds the global sum on all workers. Every worker must call
// SumReduce the same number of times with buffers of the same length.
type Reducer interface {
	SumReduce(buf []float64)
	Rank() int
	Size() int
}

// SerialReducer is the single-worker identity reduction.
type SerialReducer struct{}

func (SerialReducer) SumReduce(buf []float64) {}
func (SerialReducer) Rank() int                { return 0 }
func (SerialReducer) Size() int                { return 1 }

// Barrier blocks until NP goroutines have arrived, then releases all of them.
// It is reusable across rounds.
type Barrier struct {
	NP         int
	mu         sync.Mutex
	cond       *sync.Cond
	count      int
	generation int
}

func NewBarrier(NP int) *Barrier {
	b := &Barrier{NP: NP}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.generation
	b.count++
	if b.count == b.NP {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}

type partialSum struct {
	rank int
	data []float64
}

// ThreadCommunicator implements an all-reduce among NP goroutines through a
// MailBox. Partial sums are combined in rank order so every worker ends with
// bit-identical totals.
type ThreadCommunicator struct {
	NP      int
	mb      *MailBox[partialSum]
	barrier *Barrier
}

func NewThreadCommunicator(NP int) *ThreadCommunicator {
	if NP < 1 {
		NP = 1
	}
	return &ThreadCommunicator{
		NP:      NP,
		mb:      NewMailBox[partialSum](NP),
		barrier: NewBarrier(NP),
	}
}

// Reducer returns the handle used by worker myThread.
func (tc *ThreadCommunicator) Reducer(myThread int) Reducer {
	if myThread < 0 || myThread >= tc.NP {
		panic(fmt.Sprintf("thread %d out of range [0,%d)", myThread, tc.NP))
	}
	return &threadReducer{tc: tc, rank: myThread}
}

type threadReducer struct {
	tc   *ThreadCommunicator
	rank int
}

func (tr *threadReducer) Rank() int { return tr.rank }
func (tr *threadReducer) Size() int { return tr.tc.NP }

func (tr *threadReducer) SumReduce(buf []float64) {
	var (
		tc = tr.tc
		mb = tc.mb
	)
	if tc.NP == 1 {
		return
	}
	mine := make([]float64, len(buf))
	copy(mine, buf)
	mb.PostMessageToAll(tr.rank, partialSum{rank: tr.rank, data: mine})
	mb.DeliverMyMessages(tr.rank)
	tc.barrier.Wait()

	mb.ReceiveMyMessages(tr.rank)
	parts := make([][]float64, tc.NP)
	parts[tr.rank] = mine
	for _, msg := range mb.ReceiveMsgQs[tr.rank].Cells() {
		if len(msg.data) != len(buf) {
			panic(fmt.Sprintf("reduction buffer length mismatch: rank %d sent %d, rank %d expects %d",
				msg.rank, len(msg.data), tr.rank, len(buf)))
		}
		parts[msg.rank] = msg.data
	}
	mb.ClearMyMessages(tr.rank)
	for i := range buf {
		buf[i] = 0
	}
	for np, part := range parts {
		if part == nil {
			panic(fmt.Sprintf("rank %d missing contribution from rank %d", tr.rank, np))
		}
		floats.Add(buf, part)
	}
	tc.barrier.Wait()
}
