// notepad/client/api.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notepad/notepad/services/events"
	"notepad/notepad/sources/psql/models"

	"github.com/coder/websocket"
)

// PageAPI is the server surface the controller talks to.
type PageAPI interface {
	List(ctx context.Context) ([]models.PageSummary, error)
	Get(ctx context.Context, id uint) (*models.Page, error)
	Create(ctx context.Context, title, content string) (*models.Page, error)
	Update(ctx context.Context, id uint, title, content string) (*models.Page, error)
	Delete(ctx context.Context, id uint) error
}

// HTTPError is a non-2xx answer from the server.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Code)
	}
	return fmt.Sprintf("server answered %d: %s", e.Code, e.Message)
}

type API struct {
	baseURL string
	http    *http.Client
}

var _ PageAPI = (*API)(nil)

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *API) List(ctx context.Context) ([]models.PageSummary, error) {
	var pages []models.PageSummary
	if err := a.do(ctx, http.MethodGet, "/api/pages", nil, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (a *API) Get(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/api/pages/%d", id), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *API) Create(ctx context.Context, title, content string) (*models.Page, error) {
	var page models.Page
	body := map[string]string{"title": title, "content": content}
	if err := a.do(ctx, http.MethodPost, "/api/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *API) Update(ctx context.Context, id uint, title, content string) (*models.Page, error) {
	var page models.Page
	body := map[string]string{"title": title, "content": content}
	if err := a.do(ctx, http.MethodPut, fmt.Sprintf("/api/pages/%d", id), body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *API) Delete(ctx context.Context, id uint) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/pages/%d", id), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &HTTPError{Code: resp.StatusCode, Message: errBody.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Watch streams page change events until ctx ends or the connection drops.
func (a *API) Watch(ctx context.Context, onEvent func(events.Event)) error {
	url := "ws" + strings.TrimPrefix(a.baseURL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var evt events.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		onEvent(evt)
	}
}
