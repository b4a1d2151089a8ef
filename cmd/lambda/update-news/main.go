// =============================================================================
// Lambda: update-news
// =============================================================================
//
// EventBridge のスケジュール（1日2回）で起動し、ニュースを取得して
// スナップショット（news_data）を上書きするLambda関数
//
// 環境変数:
//   - STORE_BACKEND:      保存先 (デフォルト: dynamodb)
//   - DYNAMODB_TABLE:     DynamoDBテーブル名 (dynamodb の場合は必須)
//   - STORE_KEY:          保存キー (デフォルト: news_data)
//   - NEWS_MAX_ITEMS:     1回で取得する記事数の上限 (デフォルト: 50)
//   - NEWS_FETCH_TIMEOUT: 1リクエストのタイムアウト (デフォルト: 20s)
//   - NEWS_ARCHIVE:       履歴コピーを残すか (デフォルト: false)
//   - NOTION_TOKEN / NOTION_DATABASE_ID:         取得記事のクリップ (任意)
//   - EMAIL_FROM / EMAIL_PASSWORD / EMAIL_TO:    取得エラー通知 (任意)
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"sharehouse-times/internal/app"
	"sharehouse-times/internal/config"
	"sharehouse-times/internal/httpapi"
	"sharehouse-times/internal/logger"
)

// Response はLambdaレスポンス
type Response struct {
	StatusCode    int    `json:"statusCode"`
	Message       string `json:"message"`
	LastUpdated   string `json:"lastUpdated,omitempty"`
	Count         int    `json:"count"`
	Fetched       int    `json:"fetched"`
	FailedSources int    `json:"failedSources"`
}

type handler struct {
	runner httpapi.Runner
	log    *slog.Logger
}

// Handle はスケジュールイベントごとに1回更新する
//
// 取得エラーは成功扱い（シードのみ・部分的な結果でも公開する）。
// 書き込みに失敗した場合だけエラーを返し、Lambda側の失敗として記録させる。
func (h *handler) Handle(ctx context.Context, event events.CloudWatchEvent) (Response, error) {
	h.log.Info("scheduled update started",
		slog.String("event_id", event.ID),
		slog.String("detail_type", event.DetailType),
		slog.Time("event_time", event.Time),
	)

	res, err := h.runner.Run(ctx)
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	return Response{
		StatusCode:    200,
		Message:       fmt.Sprintf("Published %d items (%d fetched, %d sources failed)", res.Snapshot.UpdateCount, len(res.Fetched), len(res.SourceErrors)),
		LastUpdated:   res.Snapshot.LastUpdated,
		Count:         res.Snapshot.UpdateCount,
		Fetched:       len(res.Fetched),
		FailedSources: len(res.SourceErrors),
	}, nil
}

func main() {
	log := logger.New("update-news")

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg, log, app.Options{})
	if err != nil {
		log.Error("init app", slog.Any("err", err))
		os.Exit(1)
	}
	defer a.Close()

	h := &handler{runner: a.Updater, log: log}
	lambda.Start(h.Handle)
}
