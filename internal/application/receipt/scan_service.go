package receipt

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/shared"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MaxImageSize is the largest receipt image accepted
const MaxImageSize = 5 << 20

// Scan outcomes, used as metric attributes
const (
	OutcomeScanned    = "scanned"
	OutcomeNotReceipt = "not_receipt"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

// Model generates text from a prompt and an inline image
type Model interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Store archives receipt images
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// ScanResult is the draft transaction extracted from a receipt
type ScanResult struct {
	IsReceipt           bool            `json:"isReceipt"`
	Amount              decimal.Decimal `json:"amount"`
	Date                *time.Time      `json:"date,omitempty"`
	Description         string          `json:"description,omitempty"`
	MerchantName        string          `json:"merchantName,omitempty"`
	Category            string          `json:"category,omitempty"`
	ReceiptURL          string          `json:"receiptUrl,omitempty"`
	ReceiptURLExpiresAt *time.Time      `json:"receiptUrlExpiresAt,omitempty"`
}

// ScanError reports a failed scan. It matches ErrReceiptScanFailed and its cause.
type ScanError struct {
	Cause error
}

func (e *ScanError) Error() string {
	return shared.ErrReceiptScanFailed.Message
}

func (e *ScanError) Unwrap() []error {
	return []error{shared.ErrReceiptScanFailed, e.Cause}
}

// ScanService extracts transaction drafts from receipt images
type ScanService struct {
	model   Model
	store   Store
	metrics *telemetry.FinanceMetrics
	logger  *zap.Logger
}

// NewScanService creates a new ScanService. store may be nil, in which
// case images are not archived.
func NewScanService(model Model, store Store, logger *zap.Logger) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{
		model:  model,
		store:  store,
		logger: logger,
	}
}

// SetMetrics sets the business metrics recorder
func (s *ScanService) SetMetrics(metrics *telemetry.FinanceMetrics) {
	s.metrics = metrics
}

// ScanReceipt validates the image, asks the model to read it and, for a
// receipt, archives the image when a store is configured.
func (s *ScanService) ScanReceipt(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*ScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "scan")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrUserID, userID.String(),
		telemetry.SpanAttrMimeType, mimeType,
		telemetry.SpanAttrImageSize, len(image),
	)

	mediaType, err := ValidateImage(image, mimeType)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordReceiptScan(ctx, OutcomeRejected)
		return nil, err
	}

	text, err := s.model.Generate(ctx, Prompt, image, mediaType)
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	result, err := ParseReply(text)
	if err != nil {
		s.logger.Warn("Error parsing JSON response", zap.String("op", "scan_receipt"), zap.Error(err))
		return nil, s.fail(ctx, span, shared.ErrInvalidModelResponse)
	}

	if !result.IsReceipt {
		s.metrics.RecordReceiptScan(ctx, OutcomeNotReceipt)
		telemetry.SetOK(span)
		return result, nil
	}

	s.archive(ctx, userID, image, mediaType, result)

	s.metrics.RecordReceiptScan(ctx, OutcomeScanned)
	telemetry.SetOK(span)
	return result, nil
}

func (s *ScanService) fail(ctx context.Context, span trace.Span, cause error) error {
	err := &ScanError{Cause: cause}
	telemetry.RecordError(span, cause)
	s.logger.Error("Error scanning receipt", zap.String("op", "scan_receipt"), zap.Error(cause))
	s.metrics.RecordReceiptScan(ctx, OutcomeFailed)
	return err
}

// archive uploads the image and attaches a download URL. Failures are
// logged and leave the result without a URL.
func (s *ScanService) archive(ctx context.Context, userID uuid.UUID, image []byte, mediaType string, result *ScanResult) {
	if s.store == nil {
		return
	}

	key := ObjectKey(userID, uuid.New(), mediaType)
	if err := s.store.Upload(ctx, key, image, mediaType); err != nil {
		s.logger.Warn("Failed to archive receipt image", zap.String("key", key), zap.Error(err))
		return
	}

	url, expiresAt, err := s.store.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		s.logger.Warn("Failed to presign receipt URL", zap.String("key", key), zap.Error(err))
		// Nothing references the object without a URL
		if err := s.store.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("Failed to remove unreferenced receipt image", zap.String("key", key), zap.Error(err))
		}
		return
	}
	result.ReceiptURL = url
	result.ReceiptURLExpiresAt = &expiresAt
}

// ValidateImage checks size and MIME type and returns the bare media type
func ValidateImage(image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", shared.ErrInvalidFileType
	}
	if len(image) > MaxImageSize {
		return "", shared.ErrFileTooLarge
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", shared.ErrInvalidFileType
	}
	return mediaType, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

// ObjectKey returns the storage key receipts/<userID>/<id>.<ext>
func ObjectKey(userID, id uuid.UUID, mediaType string) string {
	ext, ok := imageExtensions[mediaType]
	if !ok {
		ext = "." + strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, strings.TrimPrefix(mediaType, "image/"))
		if ext == "." {
			ext = ".bin"
		}
	}
	return fmt.Sprintf("receipts/%s/%s%s", userID, id, ext)
}
