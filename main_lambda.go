//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// handlerLog is replaced by main with the zap-backed logger.
var handlerLog = logr.Discard()

// parseRequest decodes a Function URL body:
//
//	{"budget": 8, "items": [...], "strict": false, "timeoutMs": 2000}
//	{"budget": 8, "csv": "Negroni,gin,campari,vermouth\n..."}
func parseRequest(body string) (*Input, Config, error) {
	cfg := DefaultConfig()
	if !gjson.Valid(body) {
		return nil, cfg, errors.New("invalid JSON body")
	}
	req := gjson.Parse(body)

	budget := req.Get("budget")
	if !budget.Exists() {
		return nil, cfg, errors.New("missing budget")
	}
	if budget.Type != gjson.Number || budget.Int() < 0 {
		return nil, cfg, fmt.Errorf("budget must be a non-negative number, got %s", budget.Raw)
	}
	cfg.Budget = int(budget.Int())
	cfg.Strict = req.Get("strict").Bool()
	if ms := req.Get("timeoutMs").Int(); ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}

	var (
		in  *Input
		err error
	)
	switch {
	case req.Get("csv").Exists():
		in, err = ParseCSV(strings.NewReader(req.Get("csv").String()), cfg.Strict, handlerLog)
	case req.Get("items").Exists():
		in, err = ParseJSON(body, cfg.Strict, handlerLog)
	default:
		return nil, cfg, errors.New("missing items or csv field")
	}
	if err != nil {
		return nil, cfg, err
	}
	return in, cfg, nil
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	in, cfg, err := parseRequest(body)
	if err != nil {
		return errResp(400, err.Error())
	}

	rep, err := runSolve(ctx, in, cfg, handlerLog, nil)
	if err != nil {
		return errResp(400, err.Error())
	}
	respJSON, err := json.Marshal(rep)
	if err != nil {
		return errResp(500, "encode report: "+err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	log, flush, err := NewLogger(false)
	if err == nil {
		handlerLog = log
		defer flush()
	}
	lambda.Start(handler)
}
