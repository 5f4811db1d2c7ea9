// clock.go
package main

import (
	"sync"
	"time"
)

// Clock abstracts time so quotas and retention can be tested.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a manually advanced Clock, safe for concurrent handlers.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (mc *MockClock) Now() time.Time {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.currentTime
}

// Advance moves the current time forward by d.
func (mc *MockClock) Advance(d time.Duration) {
	mc.mu.Lock()
	mc.currentTime = mc.currentTime.Add(d)
	mc.mu.Unlock()
}
