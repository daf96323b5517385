package handler

type TopicResponse struct {
	Rank   int    `json:"rank"`
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
	Heat   int64  `json:"heat"`
}

type TopicsResponse struct {
	Date   string          `json:"date"`
	Mode   string          `json:"mode"`
	Table  string          `json:"table,omitempty"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Topics []TopicResponse `json:"topics"`
}
