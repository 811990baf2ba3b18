package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// pollTimeout is the long-polling timeout in seconds.
const pollTimeout = 60

// Telegram implements Gateway over the Telegram Bot API.
type Telegram struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// Compile-time interface check
var _ Gateway = (*Telegram)(nil)

// NewTelegram authenticates against the Bot API with token.
func NewTelegram(token string, logger *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Telegram{api: api, logger: logger}, nil
}

func (t *Telegram) SendText(_ context.Context, userID, text string) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", userID, err)
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(id, text)); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// SendDocument uploads the file at path under the given attachment
// name, so the temp artifact's name never leaks to the user.
func (t *Telegram) SendDocument(_ context.Context, userID, filename, path string) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", userID, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	doc := tgbotapi.NewDocument(id, tgbotapi.FileReader{Name: filename, Reader: f})
	if _, err := t.api.Send(doc); err != nil {
		return fmt.Errorf("sending document: %w", err)
	}
	return nil
}

// Updates converts the Bot API long-polling stream into Update values.
// The channel closes when ctx is cancelled or the stream ends.
func (t *Telegram) Updates(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	raw := t.api.GetUpdatesChan(cfg)

	out := make(chan Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				t.api.StopReceivingUpdates()
				return
			case u, ok := <-raw:
				if !ok {
					return
				}
				if u.Message == nil || u.Message.From == nil {
					continue
				}
				upd := Update{
					UserID: strconv.FormatInt(u.Message.From.ID, 10),
					Text:   u.Message.Text,
				}
				if u.Message.IsCommand() {
					upd.Command = u.Message.Command()
					upd.Arg = firstToken(u.Message.CommandArguments())
				}
				select {
				case out <- upd:
				case <-ctx.Done():
					t.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return out
}

// firstToken returns the first whitespace-delimited token of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
