package utils

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes differ by at most one and cover every item
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Inverted bucket probe
		for maxIndex := 10; maxIndex < 300; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
			}
		}
	}
	{ // Out of range probes report no bucket
		pm := NewPartitionMap(4, 10)
		bn, _, _ := pm.GetBucket(10)
		assert.Equal(t, -1, bn)
		bn, _, _ = pm.GetBucket(-1)
		assert.Equal(t, -1, bn)
		pm = NewPartitionMap(0, 3)
		assert.Equal(t, 1, pm.ParallelDegree)
	}
}

func TestMailBox(t *testing.T) {
	var (
		NP = 4
		mb = NewMailBox[int](NP)
		wg sync.WaitGroup
	)
	for myThread := 0; myThread < NP; myThread++ {
		wg.Add(1)
		go func(myThread int) {
			defer wg.Done()
			mb.PostMessageToAll(myThread, 10*myThread)
			mb.DeliverMyMessages(myThread)
		}(myThread)
	}
	wg.Wait()
	for myThread := 0; myThread < NP; myThread++ {
		mb.ReceiveMyMessages(myThread)
		var sum int
		for _, msg := range mb.ReceiveMsgQs[myThread].Cells() {
			sum += msg
		}
		assert.Equal(t, 60-10*myThread, sum)
		assert.Equal(t, NP-1, mb.ReceiveMsgQs[myThread].Len())
		mb.ClearMyMessages(myThread)
		assert.Equal(t, 0, mb.ReceiveMsgQs[myThread].Len())
	}
	assert.Panics(t, func() { mb.PostMessage(0, NP, 1) })
}
