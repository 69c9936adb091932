package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bakery-order-service/internal/events"
	"bakery-order-service/internal/models"
	"bakery-order-service/internal/repository"
	"bakery-order-service/internal/services"
	"bakery-order-service/internal/templates"
)

// maxDesignImageBytes caps the in-memory design image read
const maxDesignImageBytes = 10 << 20

// minMessageLength applies to contact messages, not order forms
const minMessageLength = 10

// ErrEmailNotConfigured signals no delivery provider is wired
var ErrEmailNotConfigured = errors.New("email service not configured")

// ErrInvalidEmailFormat signals the confirmation recipient failed the
// basic shape check
var ErrInvalidEmailFormat = errors.New("invalid email address format")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InquiryHandler handles contact and order form submissions. The whole
// intake pipeline lives here: validate, classify, persist, notify, with
// the fallback email pair when persistence fails.
type InquiryHandler struct {
	orderRepo     repository.OrderRepository
	emailProvider services.Provider
	assetStore    services.AssetStore
	renderer      *templates.Renderer
	publisher     *events.Publisher
	businessName  string
	adminEmail    string
	logger        *logrus.Entry
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(
	orderRepo repository.OrderRepository,
	emailProvider services.Provider,
	assetStore services.AssetStore,
	renderer *templates.Renderer,
	publisher *events.Publisher,
	businessName string,
	adminEmail string,
) *InquiryHandler {
	return &InquiryHandler{
		orderRepo:     orderRepo,
		emailProvider: emailProvider,
		assetStore:    assetStore,
		renderer:      renderer,
		publisher:     publisher,
		businessName:  businessName,
		adminEmail:    adminEmail,
		logger:        logrus.StandardLogger().WithField("component", "inquiry_handler"),
	}
}

// Submission holds the parsed multipart form fields
type Submission struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	City        string
	Postcode    string
	Message     string
	DateNeeded  string
	IsOrderForm bool

	// Order-specific fields
	ProductID       string
	ProductName     string
	ProductType     string
	Quantity        int
	UnitPrice       float64
	TotalPrice      float64
	Size            string
	Flavor          string
	DeliveryMethod  string
	DeliveryAddress string
	DeliveryNotes   string
	PaymentMethod   string
	GiftNote        string
	InternalNote    string
	Referrer        string
}

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// parseSubmission reads the multipart form fields
func parseSubmission(c *gin.Context) *Submission {
	quantity, _ := strconv.Atoi(c.PostForm("quantity"))
	unitPrice, _ := strconv.ParseFloat(c.PostForm("unitPrice"), 64)
	totalPrice, _ := strconv.ParseFloat(c.PostForm("totalPrice"), 64)
	isOrderForm, _ := strconv.ParseBool(c.PostForm("isOrderForm"))

	return &Submission{
		Name:        c.PostForm("name"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		Address:     c.PostForm("address"),
		City:        c.PostForm("city"),
		Postcode:    c.PostForm("postcode"),
		Message:     c.PostForm("message"),
		DateNeeded:  c.PostForm("dateNeeded"),
		IsOrderForm: isOrderForm,

		ProductID:       c.PostForm("productId"),
		ProductName:     c.PostForm("productName"),
		ProductType:     c.PostForm("productType"),
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      totalPrice,
		Size:            c.PostForm("size"),
		Flavor:          c.PostForm("flavor"),
		DeliveryMethod:  c.PostForm("deliveryMethod"),
		DeliveryAddress: c.PostForm("deliveryAddress"),
		DeliveryNotes:   c.PostForm("deliveryNotes"),
		PaymentMethod:   c.PostForm("paymentMethod"),
		GiftNote:        c.PostForm("giftNote"),
		InternalNote:    c.PostForm("internalNote"),
		Referrer:        c.PostForm("referrer"),
	}
}

// Validate checks required fields. The message length rule is skipped
// for submissions classified as order inquiries. Pure check, no side
// effects.
func (s *Submission) Validate() []FieldError {
	var errs []FieldError

	if s.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if s.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if !emailPattern.MatchString(s.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "email is not a valid address"})
	}
	if s.Phone == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "phone is required"})
	}

	if !services.IsOrderInquiry(s.IsOrderForm, s.Message) && len(s.Message) < minMessageLength {
		errs = append(errs, FieldError{
			Field:   "message",
			Message: fmt.Sprintf("message must be at least %d characters", minMessageLength),
		})
	}

	return errs
}

// Submit handles POST /api/v1/inquiries
func (h *InquiryHandler) Submit(c *gin.Context) {
	sub := parseSubmission(c)

	if errs := sub.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	// Nothing downstream works without a delivery provider; fail before
	// any side effect for order and contact paths alike.
	if h.emailProvider == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrEmailNotConfigured.Error()})
		return
	}

	attachment := h.readDesignImage(c)

	ctx := c.Request.Context()

	if !services.IsOrderInquiry(sub.IsOrderForm, sub.Message) {
		h.handleContact(c, ctx, sub, attachment)
		return
	}

	h.handleOrder(c, ctx, sub, attachment)
}

// readDesignImage loads the optional design-reference image into memory.
// A broken upload is treated as no image; the submission still succeeds.
func (h *InquiryHandler) readDesignImage(c *gin.Context) *services.Attachment {
	fileHeader, err := c.FormFile("designImage")
	if err != nil {
		return nil
	}
	if fileHeader.Size > maxDesignImageBytes {
		h.logger.WithField("bytes", fileHeader.Size).Warn("Design image too large, skipping")
		return nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).Warn("Failed to open design image")
		return nil
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxDesignImageBytes))
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read design image")
		return nil
	}

	contentType := contentTypeOf(fileHeader)

	return &services.Attachment{
		Filename:    fileHeader.Filename,
		Content:     content,
		ContentType: contentType,
	}
}

func contentTypeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// handleContact sends the business a notification email. This is the
// only path where a send failure surfaces to the submitter.
func (h *InquiryHandler) handleContact(c *gin.Context, ctx context.Context, sub *Submission, attachment *services.Attachment) {
	subject, htmlBody, textBody, err := h.renderer.RenderContactNotification(h.emailData(sub, attachment))
	if err != nil {
		h.logger.WithError(err).Error("Failed to render contact notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compose notification"})
		return
	}

	message := &services.Message{
		To:       h.adminEmail,
		Subject:  subject,
		Body:     textBody,
		BodyHTML: htmlBody,
		ReplyTo:  sub.Email,
	}
	if attachment != nil {
		message.Attachments = []services.Attachment{*attachment}
	}

	if _, err := h.emailProvider.Send(ctx, message); err != nil {
		h.logger.WithError(err).Error("Failed to send contact notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	h.publisher.PublishInquiryReceived(events.InquiryReceivedEvent{
		Name:       sub.Name,
		Email:      sub.Email,
		ReceivedAt: time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleOrder persists the order and attempts the confirmation email.
// Everything below the persistence call is best-effort: once the order
// exists the submitter is told success regardless of email outcome, and
// if persistence itself fails the fallback email pair keeps the inquiry
// from being lost.
func (h *InquiryHandler) handleOrder(c *gin.Context, ctx context.Context, sub *Submission, attachment *services.Attachment) {
	assetRef := h.uploadDesignImage(ctx, attachment)

	order, err := h.buildOrder(sub, assetRef)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build order document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process order"})
		return
	}

	if err := h.orderRepo.Create(ctx, order); err != nil {
		h.logger.WithError(err).Error("Order persistence failed, sending fallback emails")
		h.sendFallbackEmails(ctx, sub, attachment)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	emailSent := h.sendConfirmation(ctx, order)

	h.publisher.PublishOrderCreated(events.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderType:   string(order.OrderType),
		Email:       order.CustomerEmail,
		EmailSent:   emailSent,
		CreatedAt:   order.CreatedAt,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"orderNumber": order.OrderNumber,
	})
}

// uploadDesignImage pushes the image to the asset store for the order
// record. Failures are logged and swallowed; the order is created
// without an image reference.
func (h *InquiryHandler) uploadDesignImage(ctx context.Context, attachment *services.Attachment) *services.AssetRef {
	if attachment == nil || h.assetStore == nil {
		return nil
	}
	ref, err := h.assetStore.Upload(ctx, attachment.Filename, attachment.Content, attachment.ContentType)
	if err != nil {
		h.logger.WithError(err).Warn("Design image upload failed, order will have no image reference")
		return nil
	}
	return ref
}

// buildOrder assembles the order document from the submission
func (h *InquiryHandler) buildOrder(sub *Submission, assetRef *services.AssetRef) (*models.Order, error) {
	orderType := models.OrderTypeCustom
	switch sub.ProductType {
	case "cake":
		orderType = models.OrderTypeCake
	case "hamper":
		orderType = models.OrderTypeHamper
	}

	quantity := sub.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	order := &models.Order{
		Status:    models.OrderStatusNew,
		OrderType: orderType,

		CustomerName:  sub.Name,
		CustomerEmail: sub.Email,
		CustomerPhone: sub.Phone,
		AddressLine:   sub.Address,
		City:          sub.City,
		Postcode:      sub.Postcode,

		ProductID:    sub.ProductID,
		ProductName:  sub.ProductName,
		ProductType:  sub.ProductType,
		Quantity:     quantity,
		UnitPrice:    sub.UnitPrice,
		TotalPrice:   sub.TotalPrice,
		Size:         sub.Size,
		Flavor:       sub.Flavor,
		Instructions: sub.DeliveryNotes,

		DeliveryMethod:  sub.DeliveryMethod,
		DeliveryAddress: sub.DeliveryAddress,
		DeliveryNotes:   sub.DeliveryNotes,

		PaymentMethod: sub.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,

		DateNeeded:   sub.DateNeeded,
		GiftNote:     sub.GiftNote,
		InternalNote: sub.InternalNote,
		Referrer:     sub.Referrer,
	}

	if assetRef != nil {
		order.DesignImageKey = assetRef.Key
		order.DesignImageURL = assetRef.URL
	}

	if err := order.SeedThread(sub.Message, time.Now()); err != nil {
		return nil, err
	}

	return order, nil
}

// sendConfirmation emails the customer and records the outcome on the
// order. Both the send and the metadata patch are best-effort; neither
// fails the request. Returns whether the email went out.
func (h *InquiryHandler) sendConfirmation(ctx context.Context, order *models.Order) bool {
	err := h.trySendConfirmation(ctx, order)
	if err == nil {
		if patchErr := h.orderRepo.UpdateEmailStatus(ctx, order.ID, true, ""); patchErr != nil {
			h.logger.WithError(patchErr).Warn("Failed to record email success on order")
		}
		return true
	}

	h.logger.WithError(err).WithField("order_number", order.OrderNumber).
		Warn("Confirmation email failed, order stands")
	if patchErr := h.orderRepo.UpdateEmailStatus(ctx, order.ID, false, err.Error()); patchErr != nil {
		h.logger.WithError(patchErr).Warn("Failed to record email failure on order")
	}
	return false
}

func (h *InquiryHandler) trySendConfirmation(ctx context.Context, order *models.Order) error {
	if h.emailProvider == nil {
		return ErrEmailNotConfigured
	}
	if !emailPattern.MatchString(order.CustomerEmail) {
		return ErrInvalidEmailFormat
	}

	data := &templates.EmailData{
		BusinessName:   h.businessName,
		AdminEmail:     h.adminEmail,
		CustomerName:   order.CustomerName,
		CustomerEmail:  order.CustomerEmail,
		OrderNumber:    order.OrderNumber,
		OrderDate:      order.CreatedAt.Format("2 January 2006"),
		ProductName:    order.ProductName,
		ProductType:    order.ProductType,
		Quantity:       order.Quantity,
		Size:           order.Size,
		Flavor:         order.Flavor,
		DateNeeded:     order.DateNeeded,
		DeliveryMethod: order.DeliveryMethod,
		PaymentMethod:  order.PaymentMethod,
		GiftNote:       order.GiftNote,
		DesignImageURL: order.DesignImageURL,
	}
	if order.TotalPrice > 0 {
		data.TotalPrice = fmt.Sprintf("£%.2f", order.TotalPrice)
	}

	subject, htmlBody, err := h.renderer.RenderOrderConfirmation(data)
	if err != nil {
		return err
	}

	_, err = h.emailProvider.Send(ctx, &services.Message{
		To:       order.CustomerEmail,
		Subject:  subject,
		BodyHTML: htmlBody,
		ReplyTo:  h.adminEmail,
	})
	return err
}

// sendFallbackEmails notifies admin and customer directly when order
// persistence failed, so the inquiry is not silently lost. Both sends
// are independently best-effort.
func (h *InquiryHandler) sendFallbackEmails(ctx context.Context, sub *Submission, attachment *services.Attachment) {
	data := h.emailData(sub, attachment)
	data.InquiryType = "order"

	if subject, htmlBody, textBody, err := h.renderer.RenderContactNotification(data); err != nil {
		h.logger.WithError(err).Error("Failed to render fallback admin notification")
	} else {
		message := &services.Message{
			To:       h.adminEmail,
			Subject:  subject,
			Body:     textBody,
			BodyHTML: htmlBody,
			ReplyTo:  sub.Email,
		}
		if attachment != nil {
			message.Attachments = []services.Attachment{*attachment}
		}
		if _, err := h.emailProvider.Send(ctx, message); err != nil {
			h.logger.WithError(err).Error("Fallback admin notification failed")
		}
	}

	if subject, htmlBody, err := h.renderer.RenderCustomerAck(data); err != nil {
		h.logger.WithError(err).Error("Failed to render fallback customer acknowledgement")
	} else {
		if _, err := h.emailProvider.Send(ctx, &services.Message{
			To:       sub.Email,
			Subject:  subject,
			BodyHTML: htmlBody,
			ReplyTo:  h.adminEmail,
		}); err != nil {
			h.logger.WithError(err).Error("Fallback customer acknowledgement failed")
		}
	}
}

func (h *InquiryHandler) emailData(sub *Submission, attachment *services.Attachment) *templates.EmailData {
	inquiryType := "contact"
	if services.IsOrderInquiry(sub.IsOrderForm, sub.Message) {
		inquiryType = "order"
	}
	return &templates.EmailData{
		BusinessName:  h.businessName,
		AdminEmail:    h.adminEmail,
		CustomerName:  sub.Name,
		CustomerEmail: sub.Email,
		CustomerPhone: sub.Phone,
		AddressLine:   sub.Address,
		City:          sub.City,
		Postcode:      sub.Postcode,
		Message:       sub.Message,
		DateNeeded:    sub.DateNeeded,
		InquiryType:   inquiryType,
		HasImage:      attachment != nil,
	}
}
