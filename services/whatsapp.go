package services

import (
	"backoffice/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Провайдеры WhatsApp
const (
	ProviderMeta    = "meta"
	ProviderTwilio  = "twilio"
	ProviderGupshup = "gupshup"
)

// ErrSenderNotConfigured - провайдер WhatsApp не задан
var ErrSenderNotConfigured = errors.New("whatsapp provider is not configured")

// MessageSender отправляет текстовое сообщение на номер.
// Пустой from означает номер отправителя из конфигурации.
type MessageSender interface {
	Provider() string
	Send(ctx context.Context, from, to, message string) error
}

// NewWhatsAppSender создает отправителя по конфигурации. Пустой провайдер - nil без ошибки.
func NewWhatsAppSender(cfg *config.Config) (MessageSender, error) {
	wa := cfg.WhatsApp
	client := resty.New().SetTimeout(15 * time.Second)

	switch wa.Provider {
	case "":
		return nil, nil
	case ProviderMeta:
		if wa.Token == "" || wa.PhoneID == "" {
			return nil, errors.New("meta provider requires WHATSAPP_TOKEN and WHATSAPP_PHONE_ID")
		}
		return &metaSender{client: client.SetBaseURL(baseURL(wa.BaseURL, "https://graph.facebook.com/v19.0")).SetAuthToken(wa.Token), phoneID: wa.PhoneID}, nil
	case ProviderTwilio:
		if wa.AccountSID == "" || wa.Token == "" || wa.From == "" {
			return nil, errors.New("twilio provider requires WHATSAPP_ACCOUNT_SID, WHATSAPP_TOKEN and WHATSAPP_FROM")
		}
		return &twilioSender{client: client.SetBaseURL(baseURL(wa.BaseURL, "https://api.twilio.com")).SetBasicAuth(wa.AccountSID, wa.Token), accountSID: wa.AccountSID, from: wa.From}, nil
	case ProviderGupshup:
		if wa.Token == "" || wa.From == "" {
			return nil, errors.New("gupshup provider requires WHATSAPP_TOKEN and WHATSAPP_FROM")
		}
		return &gupshupSender{client: client.SetBaseURL(baseURL(wa.BaseURL, "https://api.gupshup.io")).SetHeader("apikey", wa.Token), from: wa.From, appName: wa.AppName}, nil
	}
	return nil, fmt.Errorf("unknown whatsapp provider %q", wa.Provider)
}

func baseURL(configured, fallback string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	return fallback
}

// checkResponse переводит ответ провайдера с кодом не 2xx в ошибку
func checkResponse(provider string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s responded %d: %s", provider, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

// metaSender - WhatsApp Cloud API
type metaSender struct {
	client  *resty.Client
	phoneID string
}

func (s *metaSender) Provider() string { return ProviderMeta }

// Send отправляет с номера, привязанного к WHATSAPP_PHONE_ID; from не используется
func (s *metaSender) Send(ctx context.Context, _, to, message string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"messaging_product": "whatsapp",
			"to":                digits(to),
			"type":              "text",
			"text":              map[string]string{"body": message},
		}).
		Post("/" + s.phoneID + "/messages")
	return checkResponse(ProviderMeta, resp, err)
}

// twilioSender - Twilio Messages API с каналом whatsapp:
type twilioSender struct {
	client     *resty.Client
	accountSID string
	from       string
}

func (s *twilioSender) Provider() string { return ProviderTwilio }

func (s *twilioSender) Send(ctx context.Context, from, to, message string) error {
	if from == "" {
		from = s.from
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"From": "whatsapp:+" + digits(from),
			"To":   "whatsapp:+" + digits(to),
			"Body": message,
		}).
		Post("/2010-04-01/Accounts/" + s.accountSID + "/Messages.json")
	return checkResponse(ProviderTwilio, resp, err)
}

// gupshupSender - Gupshup WhatsApp API
type gupshupSender struct {
	client  *resty.Client
	from    string
	appName string
}

func (s *gupshupSender) Provider() string { return ProviderGupshup }

func (s *gupshupSender) Send(ctx context.Context, from, to, message string) error {
	if from == "" {
		from = s.from
	}
	body, err := json.Marshal(map[string]string{"type": "text", "text": message})
	if err != nil {
		return err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"channel":     "whatsapp",
			"source":      digits(from),
			"destination": digits(to),
			"message":     string(body),
			"src.name":    s.appName,
		}).
		Post("/wa/api/v1/msg")
	return checkResponse(ProviderGupshup, resp, err)
}

// digits оставляет в номере только цифры
func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
