package snapshot

import "time"

func fixedNow() time.Time {
	return time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)
}
