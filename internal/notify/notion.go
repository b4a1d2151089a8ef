package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jomei/notionapi"

	"sharehouse-times/internal/pipeline"
)

// notionRichTextLimit は Notion のリッチテキスト1要素あたりの上限文字数
const notionRichTextLimit = 2000

// pageCreator は notionapi.PageService のうち使う操作だけ
type pageCreator interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// NotionClipper は取得記事を編集部レビュー用のNotionデータベースに保存する
//
// データベースには次のプロパティが必要:
// Title(title) / URL(url) / Source(select) / Region(select) /
// Category(select) / Categories(multi_select) / Summary(rich_text) / Date(rich_text)
type NotionClipper struct {
	pages  pageCreator
	dbID   notionapi.DatabaseID
	logger *slog.Logger
}

// NewNotionClipper は新しいクリッパーを作成する
func NewNotionClipper(token, databaseID string, logger *slog.Logger) (*NotionClipper, error) {
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}
	if databaseID == "" {
		return nil, fmt.Errorf("NOTION_DATABASE_ID is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := notionapi.NewClient(notionapi.Token(token))
	return &NotionClipper{
		pages:  client.Page,
		dbID:   notionapi.DatabaseID(databaseID),
		logger: logger,
	}, nil
}

// Name は Hook の名前
func (nc *NotionClipper) Name() string { return "notion" }

// AfterRun は今回取得した記事をクリップする（シード記事は対象外）
//
// 1件の失敗で止めず、最後に失敗件数をまとめて返す。
func (nc *NotionClipper) AfterRun(ctx context.Context, res *pipeline.RunResult) error {
	if res == nil || len(res.Fetched) == 0 {
		return nil
	}

	failed := 0
	var lastErr error
	for _, item := range res.Fetched {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := nc.ClipItem(ctx, item); err != nil {
			failed++
			lastErr = err
			nc.logger.Warn("notion clip failed", slog.Int("id", item.ID), slog.Any("err", err))
		}
	}

	nc.logger.Info("notion clip finished",
		slog.Int("clipped", len(res.Fetched)-failed),
		slog.Int("failed", failed),
	)
	if failed > 0 {
		return fmt.Errorf("%d of %d notion clips failed: %w", failed, len(res.Fetched), lastErr)
	}
	return nil
}

// ClipItem は1記事をNotionページとして作成する
func (nc *NotionClipper) ClipItem(ctx context.Context, item pipeline.NewsItem) error {
	categories := make([]notionapi.Option, 0, len(item.Categories))
	for _, c := range item.Categories {
		categories = append(categories, notionapi.Option{Name: c})
	}

	properties := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(item.Title),
		},
		"URL": notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  item.URL,
		},
		"Source": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: item.Source},
		},
		"Region": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(item.Region)},
		},
		"Category": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: item.Category},
		},
		"Categories": notionapi.MultiSelectProperty{
			Type:        notionapi.PropertyTypeMultiSelect,
			MultiSelect: categories,
		},
		"Date": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(item.Date),
		},
	}
	if item.Summary != "" {
		properties["Summary"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(item.Summary),
		}
	}

	_, err := nc.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: nc.dbID,
		},
		Properties: properties,
	})
	if err != nil {
		return fmt.Errorf("failed to clip item %d: %w", item.ID, err)
	}
	return nil
}

func richText(s string) []notionapi.RichText {
	r := []rune(s)
	if len(r) > notionRichTextLimit {
		s = string(r[:notionRichTextLimit])
	}
	return []notionapi.RichText{{Text: &notionapi.Text{Content: s}}}
}
