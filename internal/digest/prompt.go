package digest

import (
	"fmt"
	"strings"

	"trendradar/internal/model"
)

const DefaultPromptTopics = 150

const promptTemplate = `你是一个专业的新闻主编。以下是今日全网热搜数据。
%s
请生成一份 HTML 格式的**%s**邮件，开头可以用这句话问候读者：「%s」

### 要求：
1.  **摘要部分**：从数据中提炼 5-8 个最核心、最值得关注的事件。
2.  **内容处理**：对每个核心事件进行一句话深度简评或背景补充。
3.  **分类整理**：按主题（如时政、财经、科技、社会、娱乐）对事件进行分组。
4.  **排版要求**：
    -   仅输出摘要部分的 HTML 代码。
    -   使用内联 CSS，风格简洁现代。
    -   **不要**包含“数据来源列表”，这部分我会自己生成。
    -   **不要**包含 Markdown 标记。

### 待分析数据：
%s`

const unrankedNote = "注意：以下数据按抓取时间倒序排列，未按热度排序，请自行判断重要性。\n"

// FormatTopics serializes at most limit topics as "[source] title" lines.
func FormatTopics(topics []model.TopicRecord, limit int) string {
	if limit <= 0 || limit > len(topics) {
		limit = len(topics)
	}

	var sb strings.Builder
	for _, t := range topics[:limit] {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", t.Source, t.Title))
	}
	return sb.String()
}

// BuildPrompt renders the summarization prompt for the given day-part.
func BuildPrompt(extraction *model.Extraction, part DayPart, limit int) string {
	if limit <= 0 {
		limit = DefaultPromptTopics
	}

	note := ""
	if !extraction.Ranked() {
		note = unrankedNote
	}

	return fmt.Sprintf(promptTemplate, note, part.Period, part.Greeting, FormatTopics(extraction.Topics, limit))
}
