// Package templates provides email template rendering for the order
// intake service. Templates are embedded so the binary is self-contained.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"
)

//go:embed *.html
var templateFS embed.FS

// ErrNilRenderer is returned when render methods are called on a nil renderer
var ErrNilRenderer = errors.New("renderer is nil")

// Renderer handles email template rendering
type Renderer struct {
	templates map[string]*template.Template
}

// EmailData contains data for all email templates
type EmailData struct {
	// Common fields
	Subject      string
	Preheader    string
	Year         int
	BusinessName string
	AdminEmail   string

	// Submitter fields
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	AddressLine   string
	City          string
	Postcode      string
	Message       string

	// Order fields
	OrderNumber    int
	OrderDate      string
	ProductName    string
	ProductType    string
	Quantity       int
	Size           string
	Flavor         string
	TotalPrice     string
	DateNeeded     string
	DeliveryMethod string
	DeliveryNotes  string
	PaymentMethod  string
	GiftNote       string
	DesignImageURL string

	// Inquiry classification shown on admin notifications
	InquiryType string
	HasImage    bool
}

// NewRenderer parses all embedded templates
func NewRenderer() (*Renderer, error) {
	entries, err := fs.ReadDir(templateFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".html") {
			continue
		}
		tmpl, err := template.ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return &Renderer{templates: templates}, nil
}

// Render executes the named template with the given data
func (r *Renderer) Render(name string, data *EmailData) (string, error) {
	if r == nil {
		return "", ErrNilRenderer
	}
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}

	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
