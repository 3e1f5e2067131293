package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LSProject/sync/model"
	"LSProject/tools/decode"
	"LSProject/tools/errs"
)

// HTTPFetcher 把 REST 历史接口适配成 model.HistoryFetcher。
// 资源 id 约定：conv.<chatID> / feed / post.<postID> / notify.<userID>。
type HTTPFetcher struct {
	BaseURL string // 例如 http://127.0.0.1:8080/api/v1
	Token   string
	Client  *http.Client
}

// envelope 服务端统一响应壳
type envelope struct {
	Code int            `json:"code"`
	Msg  string         `json:"msg"`
	Data map[string]any `json:"data"`
}

// messageRow 历史接口的一行，解码后折叠成 Item
type messageRow struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	AuthorID  string    `json:"author_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *HTTPFetcher) FetchPage(ctx context.Context, resourceID, cursor string) ([]model.Item, error) {
	endpoint, listKey, err := f.route(resourceID)
	if err != nil {
		return nil, err
	}
	if cursor != "" {
		endpoint += "?cursor=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errs.ErrFetchFailed.WrapMsg(err, "history request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errs.ErrAuthRequired.Wrap()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.ErrFetchFailed.WithDetail(resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errs.ErrDecode.WithDetail(err.Error())
	}
	if env.Code != 0 {
		return nil, errs.ErrFetchFailed.WithDetail(env.Msg)
	}

	raw, ok := env.Data[listKey]
	if !ok {
		// 有的接口直接把数组放在 data 里
		return nil, errs.ErrDecode.WithDetail("missing field " + listKey)
	}
	rawRows, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, errs.ErrDecode.WithDetail(listKey + " is not a list")
	}

	items := make([]model.Item, 0, len(rawRows))
	for _, r := range rawRows {
		var row messageRow
		if err := decode.DecodeMap(r, &row); err != nil {
			return nil, errs.ErrDecode.WithDetail(err.Error())
		}
		if row.ID == "" {
			return nil, errs.ErrDecode.WithDetail("row without id")
		}
		sender := row.SenderID
		if sender == "" {
			sender = row.AuthorID
		}
		item := model.Item{
			ID:        row.ID,
			CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339Nano),
			SenderID:  sender,
			Content:   row.Content,
		}
		if row.UserName != "" {
			item.Extra = map[string]any{"user_name": row.UserName}
		}
		items = append(items, item)
	}
	return items, nil
}

// route 资源 id → 接口路径和列表字段名
func (f *HTTPFetcher) route(resourceID string) (endpoint, listKey string, err error) {
	base := strings.TrimRight(f.BaseURL, "/")
	switch {
	case strings.HasPrefix(resourceID, "conv."):
		return base + "/chats/" + strings.TrimPrefix(resourceID, "conv.") + "/messages", "messages", nil
	case resourceID == "feed":
		return base + "/feed", "posts", nil
	case strings.HasPrefix(resourceID, "post."):
		return base + "/posts/" + strings.TrimPrefix(resourceID, "post.") + "/comments", "comments", nil
	case strings.HasPrefix(resourceID, "notify."):
		return base + "/notifications", "notifications", nil
	}
	return "", "", errs.ErrArgs.WithDetail("unknown resource: " + resourceID)
}
