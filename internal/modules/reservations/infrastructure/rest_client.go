package infrastructure

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "http://localhost:8000/api"

// RESTClient wraps a resty client bound to the API root.
type RESTClient struct {
	baseURL string
	conn    *resty.Client
}

// NewRESTClient builds the transport. A zero timeout leaves cancellation to the caller's context.
func NewRESTClient(baseURL string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultBaseURL
	}

	var conn *resty.Client
	if client != nil {
		conn = resty.NewWithClient(client)
	} else {
		conn = resty.New()
	}
	conn.SetRetryCount(0).SetLogger(restyLogger{})
	if timeout > 0 {
		conn.SetTimeout(timeout)
	}

	return &RESTClient{baseURL: trimmed, conn: conn}
}

// URL resolves an endpoint path against the API root.
func (c *RESTClient) URL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// R starts a new request.
func (c *RESTClient) R() *resty.Request {
	return c.conn.R()
}

type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	slog.Error("resty", slog.String("message", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	slog.Warn("resty", slog.String("message", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	slog.Debug("resty", slog.String("message", strings.TrimSpace(fmt.Sprintf(format, v...))))
}
