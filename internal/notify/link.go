package notify

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"realtyhub/internal/domain"
)

// DeepLink builds a wa.me link that opens a chat with phone prefilled with text
func DeepLink(phone, text string) string {
	link := "https://wa.me/" + digitsOnly(phone)
	if text == "" {
		return link
	}
	// wa.me expects %20 rather than + for spaces
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// RenderPropertyInquiry fills the {title} {location} {bedrooms} {bathrooms}
// {size} and {type} placeholders of a template
func RenderPropertyInquiry(template string, p domain.Property) string {
	return strings.NewReplacer(
		"{title}", p.Title,
		"{location}", p.Location,
		"{bedrooms}", strconv.Itoa(p.Bedrooms),
		"{bathrooms}", strconv.Itoa(p.Bathrooms),
		"{size}", strconv.Itoa(p.Size),
		"{type}", p.PropertyType,
	).Replace(template)
}

// RenderInquiry formats a contact message for delivery to the business
func RenderInquiry(m domain.ContactMessage) string {
	var b strings.Builder
	b.WriteString("New contact inquiry\n\n")
	fmt.Fprintf(&b, "Name: %s\n", m.Name)
	fmt.Fprintf(&b, "Email: %s\n", m.Email)
	fmt.Fprintf(&b, "Phone: %s\n", m.Phone)
	fmt.Fprintf(&b, "Message: %s\n\n", m.Message)
	fmt.Fprintf(&b, "Received: %s\n", m.CreatedAt.UTC().Format(time.RFC1123))
	fmt.Fprintf(&b, "Message ID: %s", m.ID)
	return b.String()
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
