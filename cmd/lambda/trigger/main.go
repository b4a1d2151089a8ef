// =============================================================================
// Lambda: trigger
// =============================================================================
//
// Lambda Function URL 経由の手動更新。POST で1回更新し、結果をJSONで返す。
//
//   成功: 200 {"success":true,"lastUpdated":"...","count":N}
//   失敗: 500 {"success":false,"error":"..."}（スナップショットの書き込み失敗）
//
// UPDATE_TOKEN が設定されていれば "Authorization: Bearer <token>" が必要。
// その他の環境変数は update-news と同じ。
//
// =============================================================================
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"sharehouse-times/internal/app"
	"sharehouse-times/internal/config"
	"sharehouse-times/internal/httpapi"
	"sharehouse-times/internal/logger"
)

type handler struct {
	runner httpapi.Runner
	token  string
	log    *slog.Logger
}

func (h *handler) Handle(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	method := req.RequestContext.HTTP.Method
	if method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, httpapi.TriggerResponse{Error: "method not allowed"}), nil
	}
	// Function URL のヘッダー名は小文字
	if !httpapi.Authorized(req.Headers["authorization"], h.token) {
		return jsonResponse(http.StatusUnauthorized, httpapi.TriggerResponse{Error: "unauthorized"}), nil
	}

	h.log.Info("manual update triggered",
		slog.String("request_id", req.RequestContext.RequestID),
		slog.String("source_ip", req.RequestContext.HTTP.SourceIP),
	)
	res, err := h.runner.Run(ctx)
	if err != nil {
		h.log.Error("manual update failed", slog.Any("err", err))
	}
	status, body := httpapi.NewTriggerResponse(res, err)
	return jsonResponse(status, body), nil
}

func jsonResponse(status int, body httpapi.TriggerResponse) events.LambdaFunctionURLResponse {
	b, _ := json.Marshal(body)
	return events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:       string(b),
	}
}

func main() {
	log := logger.New("trigger")

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

	h := &handler{runner: a.Updater, token: cfg.API.UpdateToken, log: log}
	lambda.Start(h.Handle)
}
