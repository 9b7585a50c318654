package riskengine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotEmpty(t *testing.T) {
	s := NewSlot()
	assert.Nil(t, s.Latest())
	assert.False(t, s.HasResult())
}

func TestSlotLastWriteWins(t *testing.T) {
	s := NewSlot()
	s.Publish(map[string]any{"risk_score": 10.0})
	s.Publish(map[string]any{"risk_score": 75.0})

	got := s.Latest()
	assert.Equal(t, 75.0, got["risk_score"])
	assert.True(t, s.HasResult())
}

func TestSlotClear(t *testing.T) {
	s := NewSlot()
	s.Publish(map[string]any{"risk_score": 10.0})
	s.Clear()
	assert.False(t, s.HasResult())
}

func TestSlotConcurrentPublish(t *testing.T) {
	s := NewSlot()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Publish(map[string]any{"n": n})
		}(i)
	}
	wg.Wait()
	assert.True(t, s.HasResult())
}
