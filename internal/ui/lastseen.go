package ui

import (
	"fmt"
	"time"
)

// LastSeen renders the time elapsed since a unix timestamp in coarse
// human-readable buckets. Zero timestamp renders to an empty string.
func LastSeen(timestamp int64, now time.Time) string {
	if timestamp == 0 {
		return ""
	}

	daysAgo := int(now.Sub(time.Unix(timestamp, 0)).Hours() / 24)
	if daysAgo < 0 {
		daysAgo = 0
	}

	result := ", был(а) тут: "
	switch {
	case daysAgo == 0:
		result += "сегодня"
	case daysAgo == 1:
		result += "вчера"
	case daysAgo == 2:
		result += "позавчера"
	case daysAgo >= 3 && daysAgo <= 7:
		result += "на этой неделе"
	case daysAgo >= 31 && daysAgo <= 365:
		result += fmt.Sprintf("%d мес. назад", daysAgo/30)
	case daysAgo >= 366:
		result += fmt.Sprintf("%d г. назад", daysAgo/365)
	default:
		result += fmt.Sprintf("%d дн. назад", daysAgo)
	}
	return result
}
