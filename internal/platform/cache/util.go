package cache

import (
	"time"
)

// closeHour, closeMinute は TWSE が当日の終値を公開し終える時刻（台北時間）です。
const (
	closeHour   = 14
	closeMinute = 30
)

// TimeUntilNextClose は次の 14:30（台北時間）までの期間を返します。
func TimeUntilNextClose() time.Duration {
	return timeUntilNextClose(time.Now())
}

func timeUntilNextClose(now time.Time) time.Duration {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), closeHour, closeMinute, 0, 0, loc)
	// 今日の公開時刻を過ぎている場合は翌日
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
