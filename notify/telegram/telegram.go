// Package telegram delivers support escalations to a Telegram chat through
// the Bot API using telego.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/hupe1980/supportagent/logging"
	"github.com/hupe1980/supportagent/support"
)

var _ support.Notifier = (*Sender)(nil)

// ErrMissingCredentials is returned when token or chat id are empty.
var ErrMissingCredentials = errors.New("telegram: missing bot token or chat id")

// Options configures a Sender.
type Options struct {
	// APIServer overrides the Bot API base URL (default https://api.telegram.org).
	APIServer string
	// HTTPClient is used for API calls; nil uses telego's default caller.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Sender implements support.Notifier. Credentials are supplied per call, so a
// bot client is built for every notification.
type Sender struct {
	opts Options
}

// NewSender creates a Sender.
func NewSender(optFns ...func(o *Options)) *Sender {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Sender{opts: opts}
}

// Notify sends text to creds.ChatID using creds.Token.
func (s *Sender) Notify(ctx context.Context, creds support.Credentials, text string) error {
	if !creds.Complete() {
		return ErrMissingCredentials
	}

	bot, err := telego.NewBot(creds.Token, s.botOptions()...)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}

	msg, err := bot.SendMessage(ctx, tu.Message(ChatID(creds.ChatID), text))
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}

	s.opts.Logger.Debug("telegram.message.sent", "message_id", msg.MessageID)
	return nil
}

func (s *Sender) botOptions() []telego.BotOption {
	opts := []telego.BotOption{telego.WithDiscardLogger()}
	if s.opts.APIServer != "" {
		opts = append(opts, telego.WithAPIServer(strings.TrimRight(s.opts.APIServer, "/")))
	}
	if s.opts.HTTPClient != nil {
		opts = append(opts, telego.WithHTTPClient(s.opts.HTTPClient))
	}
	return opts
}

// ChatID converts a configured destination into a telego chat id: numeric
// values are chat ids, anything else is treated as a public @username.
func ChatID(dest string) telego.ChatID {
	dest = strings.TrimSpace(dest)
	if id, err := strconv.ParseInt(dest, 10, 64); err == nil {
		return tu.ID(id)
	}
	if !strings.HasPrefix(dest, "@") {
		dest = "@" + dest
	}
	return tu.Username(dest)
}
