package services

import (
	"context"
	"log"
	"strings"

	"realtyhub/internal/domain"
	"realtyhub/internal/metrics"
	"realtyhub/internal/notify"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// MessageSender delivers a text message to a phone number
type MessageSender interface {
	Send(ctx context.Context, to, text string) error
}

// Broadcaster pushes an event to every connected client
type Broadcaster interface {
	Broadcast(evt notify.Event) int
}

// InquiryMailer sends an e-mail copy of an inquiry
type InquiryMailer interface {
	SendInquiryNotification(m domain.ContactMessage) error
}

// ContactService stores inquiries and relays them to the business
type ContactService struct {
	store    storage.Storage
	whatsapp MessageSender
	hub      Broadcaster
	mailer   InquiryMailer
}

// NewContactService creates a new contact service. mailer may be nil.
func NewContactService(store storage.Storage, whatsapp MessageSender, hub Broadcaster, mailer InquiryMailer) *ContactService {
	return &ContactService{
		store:    store,
		whatsapp: whatsapp,
		hub:      hub,
		mailer:   mailer,
	}
}

// SubmitResult tells the client whether the inquiry also reached WhatsApp
type SubmitResult struct {
	Message      string `json:"message"`
	Success      bool   `json:"success"`
	WhatsAppSent bool   `json:"whatsappSent"`
}

// Submit stores an inquiry, then relays it. Relay failures never fail the submission.
func (s *ContactService) Submit(ctx context.Context, in domain.NewContactMessage) (*SubmitResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	log.Printf("[CONTACT] Submit request: name=%s, email=%s", in.Name, in.Email)

	if err := domain.Validate(in); err != nil {
		log.Printf("[CONTACT] Submit failed: validation error: %v", err)
		return nil, err
	}

	msg, err := s.store.CreateContactMessage(ctx, in)
	if err != nil {
		log.Printf("[CONTACT] Submit failed: storage error: %v", err)
		return nil, err
	}
	log.Printf("[CONTACT] Submit successful: id=%s, name=%s", msg.ID, msg.Name)
	metrics.RecordContactSubmission()

	sent := s.relay(ctx, *msg)

	// Send email notification to admin (async, don't fail if email fails)
	if s.mailer != nil {
		stored := *msg
		go func() {
			if err := s.mailer.SendInquiryNotification(stored); err != nil {
				log.Printf("[CONTACT] Warning: failed to send notification email: %v", err)
			}
		}()
	}

	result := &SubmitResult{
		Message:      "Your message has been received. We will get back to you soon.",
		Success:      true,
		WhatsAppSent: sent,
	}
	if sent {
		result.Message = "Your message has been sent. We will get back to you soon."
	}
	return result, nil
}

func (s *ContactService) relay(ctx context.Context, msg domain.ContactMessage) bool {
	settings, err := s.store.GetWhatsAppSettings(ctx)
	if err != nil {
		log.Printf("[WHATSAPP] Relay of message id=%s skipped: cannot read settings: %v", msg.ID, err)
		metrics.RecordWhatsAppRelay("failed")
		s.broadcastRelayError(msg)
		return false
	}

	to := ""
	if settings != nil {
		if !settings.IsActive {
			log.Printf("[WHATSAPP] Relay of message id=%s skipped: WhatsApp is disabled", msg.ID)
			metrics.RecordWhatsAppRelay("skipped")
			return false
		}
		to = settings.PhoneNumber
	}

	if err := s.whatsapp.Send(ctx, to, notify.RenderInquiry(msg)); err != nil {
		log.Printf("[WHATSAPP] Relay of message id=%s failed: %v", msg.ID, err)
		metrics.RecordWhatsAppRelay("failed")
		s.broadcastRelayError(msg)
		return false
	}

	metrics.RecordWhatsAppRelay("sent")
	s.hub.Broadcast(notify.Event{
		Type:    notify.EventContactMessageSent,
		Message: "New contact message forwarded to WhatsApp",
		Data: map[string]interface{}{
			"contactMessageId": msg.ID,
			"name":             msg.Name,
		},
	})
	return true
}

func (s *ContactService) broadcastRelayError(msg domain.ContactMessage) {
	s.hub.Broadcast(notify.Event{
		Type:    notify.EventWhatsAppError,
		Message: "Failed to forward contact message to WhatsApp",
		Data: map[string]interface{}{
			"contactMessageId": msg.ID,
		},
	})
}

// Messages returns every inquiry, newest first
func (s *ContactService) Messages(ctx context.Context) ([]domain.ContactMessage, error) {
	list, err := s.store.ListContactMessages(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.ContactMessage{}
	}
	return list, nil
}

// MarkRead is idempotent
func (s *ContactService) MarkRead(ctx context.Context, id string) error {
	ok, err := s.store.MarkContactMessageAsRead(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Contact message")
	}
	return nil
}
