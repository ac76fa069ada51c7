package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/revsnap-web/cmd/mainconfig"
	"github.com/wolfman30/revsnap-web/internal/app/bootstrap"
	appconfig "github.com/wolfman30/revsnap-web/internal/config"
	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/internal/notify"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

func main() {
	ctx := context.Background()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	handler, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("lead lambda init failed", "error", err)
		panic(err)
	}
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, handler, evt)
	})
}

// buildHandler wires lead intake for API Gateway. Telemetry sessions need a
// long-lived process, so only /api/lead is served here.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, error) {
	backends := bootstrap.LeadBackends{}
	var ses notify.SESAPI

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	clients := mainconfig.BuildAWSClients(awsCfg, cfg)
	if clients.S3 != nil {
		backends.S3 = clients.S3
	}
	if clients.SQS != nil {
		backends.SQS = clients.SQS
	}
	if clients.Dynamo != nil {
		backends.Dynamo = clients.Dynamo
	}
	if clients.SES != nil {
		ses = clients.SES
	}
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		backends.Redis = redisClient
	}
	backends.Email, _ = bootstrap.BuildEmailSender(cfg, ses, logger)

	return leads.NewHandler(bootstrap.BuildLeadService(cfg, backends, logger), nil, logger), nil
}

func handle(ctx context.Context, h http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}
	if path != "/api/lead" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: `{"error":"Invalid request body"}`}, nil
	}

	req, err := http.NewRequestWithContext(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	req.RemoteAddr = strings.TrimSpace(evt.RequestContext.HTTP.SourceIP)
	if ua := strings.TrimSpace(evt.RequestContext.HTTP.UserAgent); ua != "" && req.UserAgent() == "" {
		req.Header.Set("User-Agent", ua)
	}

	w := newResponseWriter()
	h.ServeHTTP(w, req)
	return w.response(), nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

// responseWriter buffers a handler's reply into an API Gateway response.
type responseWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

func (w *responseWriter) response() events.APIGatewayV2HTTPResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(w.header))
	for k := range w.header {
		headers[strings.ToLower(k)] = w.header.Get(k)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       w.body.String(),
	}
}
