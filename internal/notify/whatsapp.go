package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"realtyhub/internal/config"
)

// WhatsAppService delivers text messages to the business WhatsApp number
type WhatsAppService struct {
	cfg    *config.WhatsAppConfig
	client *http.Client

	mu       sync.Mutex
	failing  bool
	onChange func(Event)
}

// NewWhatsAppService creates a new WhatsApp service
func NewWhatsAppService(cfg *config.WhatsAppConfig) *WhatsAppService {
	return &WhatsAppService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Provider returns the configured delivery provider
func (s *WhatsAppService) Provider() string {
	return s.cfg.Provider
}

// IsReady reports whether messages can be delivered
func (s *WhatsAppService) IsReady() bool {
	switch s.cfg.Provider {
	case config.ProviderConsole:
		return true
	case config.ProviderCloudAPI:
		return s.cfg.PhoneNumberID != "" && s.cfg.AccessToken != ""
	default:
		return false
	}
}

// OnStateChange sets the callback receiving whatsapp_ready when delivery
// recovers after a failed send
func (s *WhatsAppService) OnStateChange(fn func(Event)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// StatusEvent describes the current readiness for a newly connected client
func (s *WhatsAppService) StatusEvent() Event {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()

	ready := s.IsReady() && !failing
	message := "WhatsApp is not configured"
	switch {
	case failing:
		message = "WhatsApp delivery is failing"
	case ready:
		message = "WhatsApp is ready"
	}
	return Event{
		Type:    EventWhatsAppStatus,
		Message: message,
		Data: map[string]interface{}{
			"ready":    ready,
			"provider": s.cfg.Provider,
		},
	}
}

// DisconnectedEvent tells clients the relay is going away
func (s *WhatsAppService) DisconnectedEvent() Event {
	return Event{
		Type:    EventWhatsAppDisconnected,
		Message: "WhatsApp relay disconnected",
		Data:    map[string]interface{}{"provider": s.cfg.Provider},
	}
}

// Send delivers text to the given number. An empty number falls back to the
// configured recipient.
func (s *WhatsAppService) Send(ctx context.Context, to, text string) error {
	if to == "" {
		to = s.cfg.Recipient
	}

	var err error
	switch s.cfg.Provider {
	case config.ProviderConsole:
		// Development mode - just log
		log.Printf("[WHATSAPP] Message would be sent to %q:\n%s", to, text)
	case config.ProviderCloudAPI:
		err = s.sendViaCloudAPI(ctx, to, text)
	default:
		err = fmt.Errorf("unsupported WhatsApp provider: %s", s.cfg.Provider)
	}
	s.record(err)
	return err
}

func (s *WhatsAppService) record(err error) {
	s.mu.Lock()
	recovered := s.failing && err == nil
	s.failing = err != nil
	fn := s.onChange
	s.mu.Unlock()

	if recovered {
		log.Printf("[WHATSAPP] Delivery recovered")
		if fn != nil {
			fn(Event{
				Type:    EventWhatsAppReady,
				Message: "WhatsApp is ready",
				Data:    map[string]interface{}{"provider": s.cfg.Provider},
			})
		}
	}
}

type cloudAPIText struct {
	Body string `json:"body"`
}

type cloudAPIMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             cloudAPIText `json:"text"`
}

// sendViaCloudAPI sends a text message through the WhatsApp Cloud API
func (s *WhatsAppService) sendViaCloudAPI(ctx context.Context, to, text string) error {
	if s.cfg.PhoneNumberID == "" || s.cfg.AccessToken == "" {
		return fmt.Errorf("WhatsApp Cloud API not properly configured")
	}
	recipient := digitsOnly(to)
	if recipient == "" {
		return fmt.Errorf("no WhatsApp recipient configured")
	}

	url := fmt.Sprintf("%s/%s/%s/messages",
		strings.TrimRight(s.cfg.APIBaseURL, "/"), s.cfg.APIVersion, s.cfg.PhoneNumberID)

	payload, err := json.Marshal(cloudAPIMessage{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             cloudAPIText{Body: text},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errorResp)
		return fmt.Errorf("WhatsApp API error (status %d): %v", resp.StatusCode, errorResp)
	}

	return nil
}
