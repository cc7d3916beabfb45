package domain

import "time"

// KST is Korea Standard Time (UTC+9), the zone user-facing timestamps are written in.
var KST = time.FixedZone("KST", 9*60*60)

// NowKST returns the current time in KST.
func NowKST() time.Time {
	return time.Now().In(KST)
}
