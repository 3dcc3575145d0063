package service

import (
	"bytes"
	"code_practice_backend/internal/config"
	"code_practice_backend/internal/util"
	"code_practice_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Judge 远程判题服务。提交一次得到 token，之后反复轮询直到终态。
// 客户端自身不设超时，墙钟上限由 TestCaseRunner 通过 context 控制。
type Judge interface {
	Submit(ctx context.Context, sourceCode string, languageID int, stdin string) (string, error)
	Poll(ctx context.Context, token string) (*JudgeVerdict, error)
}

// JudgeVerdict 一次轮询拿到的判题状态。status id <= 2 表示还在排队/运行。
type JudgeVerdict struct {
	StatusID      int
	Stdout        string
	Stderr        string
	CompileOutput string
}

func (v *JudgeVerdict) Terminal() bool {
	return v.StatusID > 2
}

// JudgeClient Judge0 HTTP 适配器。无状态，每次调用一个网络请求。
type JudgeClient struct {
	cfg    config.Judge0Config
	client *http.Client
}

func NewJudgeClient(cfg config.Judge0Config) *JudgeClient {
	return &JudgeClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type judgeSubmitRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type judgeSubmitResponse struct {
	Token string `json:"token"`
}

type judgePollResponse struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
}

func (c *JudgeClient) Submit(ctx context.Context, sourceCode string, languageID int, stdin string) (string, error) {
	body, err := json.Marshal(judgeSubmitRequest{
		SourceCode: sourceCode,
		LanguageID: languageID,
		Stdin:      stdin,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/submissions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.JudgeRequestCounter.WithLabelValues("submit", "error").Inc()
		return "", fmt.Errorf("%w: %v", util.ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		monitoring.JudgeRequestCounter.WithLabelValues("submit", "rejected").Inc()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", util.ErrSubmissionRejected, resp.StatusCode, errBody)
	}

	var tokenResp judgeSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		monitoring.JudgeRequestCounter.WithLabelValues("submit", "error").Inc()
		return "", fmt.Errorf("%w: malformed submit response: %v", util.ErrJudgeUnavailable, err)
	}

	monitoring.JudgeRequestCounter.WithLabelValues("submit", "ok").Inc()
	return tokenResp.Token, nil
}

func (c *JudgeClient) Poll(ctx context.Context, token string) (*JudgeVerdict, error) {
	url := fmt.Sprintf("%s/submissions/%s?base64_encoded=false", c.cfg.URL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.JudgeRequestCounter.WithLabelValues("poll", "error").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		monitoring.JudgeRequestCounter.WithLabelValues("poll", "error").Inc()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", util.ErrJudgeUnavailable, resp.StatusCode, errBody)
	}

	var pollResp judgePollResponse
	if err := json.NewDecoder(resp.Body).Decode(&pollResp); err != nil {
		monitoring.JudgeRequestCounter.WithLabelValues("poll", "error").Inc()
		return nil, fmt.Errorf("%w: malformed poll response: %v", util.ErrJudgeUnavailable, err)
	}

	monitoring.JudgeRequestCounter.WithLabelValues("poll", "ok").Inc()
	return &JudgeVerdict{
		StatusID:      pollResp.Status.ID,
		Stdout:        pollResp.Stdout,
		Stderr:        pollResp.Stderr,
		CompileOutput: pollResp.CompileOutput,
	}, nil
}

func (c *JudgeClient) setHeaders(req *http.Request) {
	req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.cfg.Host)
}
