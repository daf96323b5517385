package digest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"trendradar/internal/model"

	"github.com/go-playground/assert/v2"
)

var beijing = time.FixedZone("UTC+8", 8*60*60)

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 17, hour, minute, 0, 0, beijing)
}

func TestDayPartAt(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want DayPart
	}{
		{"midnight", at(0, 0), Morning},
		{"late morning", at(11, 59), Morning},
		{"noon", at(12, 0), Midday},
		{"afternoon", at(17, 59), Midday},
		{"six pm", at(18, 0), Evening},
		{"late night", at(23, 30), Evening},
		{"utc time is converted", time.Date(2026, 10, 17, 2, 0, 0, 0, time.UTC), Morning},
		{"utc morning is local evening", time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC), Evening},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want.Key, DayPartAt(tt.now, beijing).Key)
		})
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "TrendRadar 10月17日 早间 AI简报", Subject(at(8, 0), beijing, model.ModeRanked))
	assert.Equal(t, "TrendRadar 10月17日 午间 AI简报", Subject(at(13, 0), beijing, model.ModeRanked))
	assert.Equal(t, "TrendRadar 10月17日 晚间 AI简报", Subject(at(20, 0), beijing, model.ModeRanked))
	assert.Equal(t, "TrendRadar 10月17日 晚间 AI简报（未排序）", Subject(at(20, 0), beijing, model.ModeRecent))
}

func topics(n int) []model.TopicRecord {
	out := make([]model.TopicRecord, n)
	for i := range out {
		out[i] = model.TopicRecord{Title: fmt.Sprintf("topic number %d", i), Source: "weibo", Heat: int64(n - i)}
	}
	return out
}

func TestFormatTopics(t *testing.T) {
	got := FormatTopics([]model.TopicRecord{
		{Title: "First title", Source: "weibo"},
		{Title: "Second title", Source: "zhihu"},
	}, 150)

	assert.Equal(t, "[weibo] First title\n[zhihu] Second title\n", got)
}

func TestFormatTopics_Truncates(t *testing.T) {
	got := FormatTopics(topics(200), 150)

	assert.Equal(t, 150, strings.Count(got, "\n"))
	assert.Equal(t, true, strings.Contains(got, "topic number 149\n"))
	assert.Equal(t, false, strings.Contains(got, "topic number 150\n"))
}

func TestBuildPrompt(t *testing.T) {
	ranked := &model.Extraction{Mode: model.ModeRanked, Topics: topics(3)}

	prompt := BuildPrompt(ranked, Evening, 0)

	assert.Equal(t, true, strings.Contains(prompt, Evening.Period))
	assert.Equal(t, true, strings.Contains(prompt, Evening.Greeting))
	assert.Equal(t, true, strings.Contains(prompt, "[weibo] topic number 0\n"))
	assert.Equal(t, true, strings.Contains(prompt, "5-8"))
	assert.Equal(t, false, strings.Contains(prompt, unrankedNote))

	recent := &model.Extraction{Mode: model.ModeRecent, Topics: topics(3)}
	assert.Equal(t, true, strings.Contains(BuildPrompt(recent, Morning, 0), unrankedNote))
}

func TestRenderAppendix(t *testing.T) {
	extraction := &model.Extraction{
		Mode: model.ModeRanked,
		Topics: []model.TopicRecord{
			{Title: "Linked <b>story</b>", Source: "weibo", URL: "https://example.com/a?x=1&y=2"},
			{Title: "Unlinked story", Source: "zhihu", URL: "/relative/path"},
		},
	}

	got, err := RenderAppendix(extraction)
	assert.Equal(t, nil, err)

	assert.Equal(t, true, strings.Contains(got, rankedHeading))
	assert.Equal(t, true, strings.Contains(got, `href="https://example.com/a?x=1&amp;y=2"`))
	assert.Equal(t, true, strings.Contains(got, "Linked &lt;b&gt;story&lt;/b&gt;"))
	assert.Equal(t, false, strings.Contains(got, `href="/relative/path"`))
	assert.Equal(t, true, strings.Contains(got, `<span style="color: #333;">Unlinked story</span>`))
	assert.Equal(t, true, strings.Contains(got, ">zhihu</span>"))
}

func TestRenderAppendix_Empty(t *testing.T) {
	got, err := RenderAppendix(&model.Extraction{Mode: model.ModeEmpty})
	assert.Equal(t, nil, err)
	assert.Equal(t, "", got)
}

func TestCompose(t *testing.T) {
	msg, err := Compose(ComposeInput{
		SummaryHTML: "<html><body><h2>晚间回顾</h2></body></html>",
		Model:       "gemini-2.5-pro",
		Extraction:  &model.Extraction{Mode: model.ModeRanked, Topics: topics(2)},
		Now:         at(19, 0),
		Location:    beijing,
	})
	assert.Equal(t, nil, err)

	assert.Equal(t, "TrendRadar 10月17日 晚间 AI简报", msg.Subject)
	assert.Equal(t, "gemini-2.5-pro", msg.Model)
	assert.Equal(t, Evening.Key, msg.DayPart.Key)
	assert.Equal(t, model.ModeRanked, msg.Mode)

	assert.Equal(t, true, strings.HasPrefix(msg.HTML, "<html><body><h2>晚间回顾</h2>"))
	assert.Equal(t, true, strings.HasSuffix(msg.HTML, "</body></html>"))
	assert.Equal(t, 1, strings.Count(msg.HTML, "</body>"))
	assert.Equal(t, true, strings.Contains(msg.HTML, "<strong>gemini-2.5-pro</strong>"))
	assert.Equal(t, true, strings.Contains(msg.HTML, "topic number 1"))
	assert.Equal(t, true, strings.Index(msg.HTML, "topic number 1") < strings.Index(msg.HTML, "AI Analysis generated by"))
}
