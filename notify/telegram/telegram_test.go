package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportagent/support"
)

// Token in the Bot API format (numeric id, colon, 35 char secret).
const testToken = "123456:ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghi"

type fakeBotAPI struct {
	calls   atomic.Int32
	payload map[string]any
	path    string
	fail    bool
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	f.path = r.URL.Path
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &f.payload)

	w.Header().Set("Content-Type", "application/json")
	if f.fail {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
		return
	}
	_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":42,"type":"private"}}}`)
}

func newTestSender(t *testing.T, api *fakeBotAPI) *Sender {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewSender(func(o *Options) {
		o.APIServer = srv.URL
		o.HTTPClient = srv.Client()
	})
}

func TestSender_Notify(t *testing.T) {
	api := &fakeBotAPI{}
	s := newTestSender(t, api)

	err := s.Notify(context.Background(), support.Credentials{Token: testToken, ChatID: "42"}, "hello admin")
	require.NoError(t, err)

	assert.Equal(t, int32(1), api.calls.Load())
	assert.Equal(t, "/bot"+testToken+"/sendMessage", api.path)
	assert.Equal(t, "hello admin", api.payload["text"])
	assert.Equal(t, 42.0, api.payload["chat_id"])
}

func TestSender_NotifyAPIError(t *testing.T) {
	api := &fakeBotAPI{fail: true}
	s := newTestSender(t, api)

	err := s.Notify(context.Background(), support.Credentials{Token: testToken, ChatID: "42"}, "hello")
	assert.Error(t, err)
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestSender_NotifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewSender(func(o *Options) {
		o.APIServer = url
		o.HTTPClient = http.DefaultClient
	})
	err := s.Notify(context.Background(), support.Credentials{Token: testToken, ChatID: "42"}, "hello")
	assert.Error(t, err)
}

func TestSender_MissingCredentials(t *testing.T) {
	api := &fakeBotAPI{}
	s := newTestSender(t, api)

	err := s.Notify(context.Background(), support.Credentials{Token: testToken}, "hello")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, int32(0), api.calls.Load())
}

func TestSender_EscalationToolEndToEnd(t *testing.T) {
	api := &fakeBotAPI{}
	s := newTestSender(t, api)

	esc := support.NewEscalateTool(s, func() support.Credentials {
		return support.Credentials{Token: testToken, ChatID: "42"}
	}, nil)
	out, err := esc.Call(context.Background(), map[string]any{"issue_summary": "Rider was abusive", "urgency": "High"})
	require.NoError(t, err)
	assert.Equal(t, support.EscalationDelivered, out)
	assert.Equal(t, support.AlertText("High", "Rider was abusive"), api.payload["text"])

	api.fail = true
	out, err = esc.Call(context.Background(), map[string]any{"issue_summary": "x", "urgency": "Low"})
	require.NoError(t, err)
	assert.Contains(t, out, "ESCALATION FAILED:")
}

func TestChatID(t *testing.T) {
	assert.Equal(t, int64(-100123), ChatID("-100123").ID)
	assert.Equal(t, "@support_admins", ChatID("support_admins").Username)
	assert.Equal(t, "@support_admins", ChatID("@support_admins").Username)
}
