package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"trendradar/internal/model"
)

const (
	DefaultTopicLimit     = 200
	DefaultMinTitleLength = 4
)

type ExtractOptions struct {
	Limit          int
	MinTitleLength int
}

func (o ExtractOptions) withDefaults() ExtractOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultTopicLimit
	}
	if o.MinTitleLength <= 0 {
		o.MinTitleLength = DefaultMinTitleLength
	}
	return o
}

// TopicRepository reads topics out of one crawler snapshot.
type TopicRepository struct {
	db *sql.DB
}

func NewTopicRepository(db *sql.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// Extract returns the heat-ranked topic list when the snapshot has a usable
// news_items table. Otherwise it falls back to the first table carrying a
// title column and returns its most recent rows unranked. A snapshot with
// neither yields an empty extraction, not an error.
func (r *TopicRepository) Extract(ctx context.Context, opts ExtractOptions) (*model.Extraction, error) {
	opts = opts.withDefaults()

	cols, err := r.columns(ctx, model.RankedTable)
	if err != nil {
		return nil, err
	}

	if cols["title"] && cols["crawl_count"] {
		topics, err := r.GetRankedTopics(ctx, cols, opts)
		if err != nil {
			return nil, err
		}
		return newExtraction(model.ModeRanked, model.RankedTable, topics), nil
	}

	table, cols, err := r.findTitleTable(ctx)
	if err != nil {
		return nil, err
	}
	if table == "" {
		return &model.Extraction{Mode: model.ModeEmpty}, nil
	}

	topics, err := r.GetRecentTopics(ctx, table, cols, opts)
	if err != nil {
		return nil, err
	}
	return newExtraction(model.ModeRecent, table, topics), nil
}

func newExtraction(mode model.ExtractionMode, table string, topics []model.TopicRecord) *model.Extraction {
	if len(topics) == 0 {
		return &model.Extraction{Mode: model.ModeEmpty, Table: table}
	}
	return &model.Extraction{Mode: mode, Table: table, Topics: topics}
}

// GetRankedTopics groups news_items by exact title, keeping the max url and
// the max crawl_count as heat.
func (r *TopicRepository) GetRankedTopics(ctx context.Context, cols map[string]bool, opts ExtractOptions) ([]model.TopicRecord, error) {
	opts = opts.withDefaults()

	query := fmt.Sprintf(`
		SELECT title, %s, %s, MAX(crawl_count) AS heat
		FROM news_items
		WHERE length(title) >= ?
		GROUP BY title
		ORDER BY heat DESC, title ASC
		LIMIT ?
	`, optionalColumn(cols, "platform_id", "platform_id"), optionalColumn(cols, "url", "MAX(url)"))

	rows, err := r.db.QueryContext(ctx, query, opts.MinTitleLength, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("query ranked topics: %w", err)
	}
	defer rows.Close()

	var topics []model.TopicRecord
	for rows.Next() {
		var (
			title    string
			platform sql.NullString
			link     sql.NullString
			heat     sql.NullInt64
		)
		if err := rows.Scan(&title, &platform, &link, &heat); err != nil {
			return nil, fmt.Errorf("scan ranked topic: %w", err)
		}

		if !keepTitle(title, opts.MinTitleLength) {
			continue
		}

		topics = append(topics, model.TopicRecord{
			Title:  title,
			Source: platform.String,
			URL:    link.String,
			Heat:   heat.Int64,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ranked topics: %w", err)
	}

	return topics, nil
}

// GetRecentTopics reads the newest rows of table by insertion order. The
// result is deduplicated by title but carries no heat.
func (r *TopicRepository) GetRecentTopics(ctx context.Context, table string, cols map[string]bool, opts ExtractOptions) ([]model.TopicRecord, error) {
	opts = opts.withDefaults()

	query := fmt.Sprintf(`
		SELECT title, %s, %s
		FROM %s
		WHERE title IS NOT NULL
		ORDER BY rowid DESC
	`, optionalColumn(cols, "platform_id", "platform_id"), optionalColumn(cols, "url", "url"), quoteIdent(table))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query recent topics from %s: %w", table, err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var topics []model.TopicRecord
	for rows.Next() && len(topics) < opts.Limit {
		var (
			title    string
			platform sql.NullString
			link     sql.NullString
		)
		if err := rows.Scan(&title, &platform, &link); err != nil {
			return nil, fmt.Errorf("scan recent topic: %w", err)
		}

		if !keepTitle(title, opts.MinTitleLength) {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		topics = append(topics, model.TopicRecord{
			Title:  title,
			Source: platform.String,
			URL:    link.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read recent topics: %w", err)
	}

	return topics, nil
}

func (r *TopicRepository) GetTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func (r *TopicRepository) findTitleTable(ctx context.Context) (string, map[string]bool, error) {
	tables, err := r.GetTables(ctx)
	if err != nil {
		return "", nil, err
	}

	for _, table := range tables {
		cols, err := r.columns(ctx, table)
		if err != nil {
			return "", nil, err
		}
		if cols["title"] {
			return table, cols, nil
		}
	}

	return "", nil, nil
}

// columns returns the lower-cased column names of table, or an empty set
// when the table does not exist.
func (r *TopicRepository) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}

	return cols, rows.Err()
}

func keepTitle(title string, minLength int) bool {
	return title != "" && utf8.RuneCountInString(title) >= minLength
}

func optionalColumn(cols map[string]bool, name, expr string) string {
	if cols[name] {
		return expr
	}
	return "NULL"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
