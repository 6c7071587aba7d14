package share

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

type TelegramOptions struct {
	Token      string
	ChatID     int64
	HTTPClient *http.Client
	// Endpoint overrides tgbotapi.APIEndpoint; it takes the token and the
	// method name as format arguments.
	Endpoint string
}

// TelegramSharer posts the image as a photo to one chat, captioned with the
// payload title. The bot is connected on first use and a failed connection is
// retried on the next share.
type TelegramSharer struct {
	token    string
	chatID   int64
	client   *http.Client
	endpoint string

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegramSharer(opts TelegramOptions) (*TelegramSharer, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if opts.ChatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &TelegramSharer{token: token, chatID: opts.ChatID, client: client, endpoint: endpoint}, nil
}

func (s *TelegramSharer) connect() (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil {
		return s.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(s.token, s.endpoint, s.client)
	if err != nil {
		return nil, err
	}
	s.bot = bot
	return bot, nil
}

func (s *TelegramSharer) Share(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("share canceled: %v: %w", err, domain.ErrShareUnavailable)
	}
	bot, err := s.connect()
	if err != nil {
		return fmt.Errorf("connect telegram bot: %v: %w", err, domain.ErrShareUnavailable)
	}
	name := p.Filename
	if name == "" {
		name = "mood-sketch.png"
	}
	photo := tgbotapi.NewPhoto(s.chatID, tgbotapi.FileBytes{Name: name, Bytes: p.Data})
	photo.Caption = p.Title
	if _, err := bot.Send(photo); err != nil {
		return fmt.Errorf("send telegram photo: %v: %w", err, domain.ErrShareUnavailable)
	}
	return nil
}

var _ Sharer = (*TelegramSharer)(nil)
