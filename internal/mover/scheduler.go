package mover

import "time"

// Scheduler runs f once after d without blocking the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// TimerScheduler returns a Scheduler backed by time.AfterFunc.
func TimerScheduler() Scheduler {
	return timerScheduler{}
}
