package digest

import "time"

// DayPart is one of the three local-time buckets a digest is written for.
type DayPart struct {
	Key      string
	Period   string
	Greeting string
	Label    string
}

var (
	Morning = DayPart{
		Key:      "morning",
		Period:   "早报",
		Greeting: "新的一天，来看看昨夜今晨的热点。",
		Label:    "早间",
	}
	Midday = DayPart{
		Key:      "midday",
		Period:   "午间速览",
		Greeting: "忙碌之余，为您梳理最新的网络动态。",
		Label:    "午间",
	}
	Evening = DayPart{
		Key:      "evening",
		Period:   "晚间回顾",
		Greeting: "结束了一天的工作，为您总结今日全网焦点。",
		Label:    "晚间",
	}
)

// DayPartAt buckets now by its hour in loc: before noon, noon to 18:00, after 18:00.
func DayPartAt(now time.Time, loc *time.Location) DayPart {
	hour := now.In(loc).Hour()
	switch {
	case hour < 12:
		return Morning
	case hour < 18:
		return Midday
	default:
		return Evening
	}
}
