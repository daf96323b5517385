package model

import "strings"

// ExtractionMode tells downstream stages how a topic list was produced.
type ExtractionMode string

const (
	// ModeRanked is the heat-ranked list aggregated from news_items.
	ModeRanked ExtractionMode = "ranked"
	// ModeRecent is the degraded list read from a discovered table by insertion order.
	// Heat is always zero in this mode.
	ModeRecent ExtractionMode = "recent"
	ModeEmpty  ExtractionMode = "empty"
)

const RankedTable = "news_items"

type TopicRecord struct {
	Title  string
	Source string
	URL    string
	Heat   int64
}

// HasLink reports whether the record carries a usable http(s) link.
func (t TopicRecord) HasLink() bool {
	return strings.HasPrefix(t.URL, "http")
}

type Extraction struct {
	Mode   ExtractionMode
	Table  string
	Topics []TopicRecord
}

func (e *Extraction) Empty() bool {
	return e == nil || len(e.Topics) == 0
}

func (e *Extraction) Ranked() bool {
	return e != nil && e.Mode == ModeRanked
}
