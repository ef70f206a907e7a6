package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"

	"github.com/d60-Lab/daily-poem/config"
	"github.com/d60-Lab/daily-poem/pkg/logger"
)

const maxErrorBody = 512

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data *struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// TwitterClient 通过 X API v2 发推
type TwitterClient struct {
	httpClient *http.Client
	endpoint   string
	bearer     string // 仅在没有 OAuth 1.0a 用户凭据时使用
}

// NewTwitterClient 优先使用 OAuth 1.0a 用户上下文签名，否则退回 Bearer token
func NewTwitterClient(cfg config.TwitterConfig) *TwitterClient {
	var hc *http.Client
	bearer := ""
	if cfg.HasUserContext() {
		oc := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
		hc = oc.Client(context.Background(), oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret))
	} else {
		hc = &http.Client{}
		bearer = cfg.BearerToken
	}
	hc.Timeout = cfg.Timeout
	return &TwitterClient{
		httpClient: hc,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		bearer:     bearer,
	}
}

func (c *TwitterClient) Publish(ctx context.Context, text string) error {
	if err := CheckLength(text); err != nil {
		return err
	}

	body, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrPublishFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return fmt.Errorf("%w: status %d: %s", ErrPublishFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var tr tweetResponse
	if err := json.Unmarshal(raw, &tr); err != nil || tr.Data == nil || tr.Data.ID == "" {
		// 没有确认数据一律视为失败
		return fmt.Errorf("%w: no confirmation data in response", ErrPublishFailed)
	}

	logger.Info("tweet posted", zap.String("tweet_id", tr.Data.ID))
	return nil
}
