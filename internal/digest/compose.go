package digest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"trendradar/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	rankedHeading   = "今日全网热点清单"
	unrankedHeading = "今日最新热点清单（未按热度排序）"
	unrankedSuffix  = "（未排序）"
)

// Message is a composed digest ready for delivery. It is never persisted.
type Message struct {
	Subject string
	HTML    string
	Model   string
	DayPart DayPart
	Mode    model.ExtractionMode
}

type ComposeInput struct {
	SummaryHTML string
	Model       string
	Extraction  *model.Extraction
	Now         time.Time
	Location    *time.Location
}

// Subject embeds the local date and day-part label, and flags unranked digests.
func Subject(now time.Time, loc *time.Location, mode model.ExtractionMode) string {
	part := DayPartAt(now, loc)
	subject := fmt.Sprintf("TrendRadar %s %s AI简报", now.In(loc).Format("01月02日"), part.Label)
	if mode == model.ModeRecent {
		subject += unrankedSuffix
	}
	return subject
}

// RenderAppendix lists every extracted topic with a platform badge. Titles
// link out only when the record has an http(s) URL.
func RenderAppendix(extraction *model.Extraction) (string, error) {
	if extraction.Empty() {
		return "", nil
	}

	heading := rankedHeading
	if !extraction.Ranked() {
		heading = unrankedHeading
	}

	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "appendix", struct {
		Heading string
		Topics  []model.TopicRecord
	}{heading, extraction.Topics})
	if err != nil {
		return "", fmt.Errorf("render appendix: %w", err)
	}

	return buf.String(), nil
}

func renderFooter(modelName string) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "footer", struct{ Model string }{modelName}); err != nil {
		return "", fmt.Errorf("render footer: %w", err)
	}
	return buf.String(), nil
}

var closingTags = strings.NewReplacer("</body>", "", "</html>", "")

// Compose joins the model summary, the topic appendix and the footer into one
// HTML document.
func Compose(in ComposeInput) (*Message, error) {
	appendix, err := RenderAppendix(in.Extraction)
	if err != nil {
		return nil, err
	}

	footer, err := renderFooter(in.Model)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	body.WriteString(closingTags.Replace(in.SummaryHTML))
	body.WriteString(appendix)
	body.WriteString(footer)
	body.WriteString("</body></html>")

	mode := model.ModeEmpty
	if in.Extraction != nil {
		mode = in.Extraction.Mode
	}

	return &Message{
		Subject: Subject(in.Now, in.Location, mode),
		HTML:    body.String(),
		Model:   in.Model,
		DayPart: DayPartAt(in.Now, in.Location),
		Mode:    mode,
	}, nil
}
