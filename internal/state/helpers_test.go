package state

import "time"

const (
	defaultWait = time.Second
	tick        = time.Millisecond
)
