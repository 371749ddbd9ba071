package finance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptStorage stores receipt images in object storage
type ReceiptStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// receiptExtensions maps the accepted content types to file extensions
var receiptExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ReceiptKey builds the object key of a receipt
func ReceiptKey(ownerID, transactionID, objectID uuid.UUID, ext string) string {
	return fmt.Sprintf("receipts/%s/%s/%s%s", ownerID, transactionID, objectID, ext)
}

// UploadReceipt stores a receipt image and attaches it to the transaction.
// The content type is sniffed from the data, not taken from the client.
// A receipt that was attached before is replaced.
func (s *TransactionService) UploadReceipt(ctx context.Context, ownerID, id uuid.UUID, body io.Reader) (*ReceiptResponse, error) {
	if s.receipts == nil {
		return nil, shared.NewInvalidStateError("Receipt storage is not configured")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	if len(data) == 0 {
		return nil, shared.NewValidationError("Receipt file is empty")
	}
	if int64(len(data)) > s.cfg.MaxReceiptSize {
		return nil, shared.NewValidationError(fmt.Sprintf("Receipt exceeds the %d MB limit", s.cfg.MaxReceiptSize>>20))
	}
	contentType := http.DetectContentType(data)
	ext, ok := receiptExtensions[contentType]
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("Unsupported receipt type %s, use JPEG, PNG, WebP or PDF", contentType))
	}

	var (
		previous string
		stored   bool
	)
	key := ReceiptKey(ownerID, id, uuid.New(), ext)
	_, err = s.mutate(ctx, ownerID, id, "attach_receipt", func(txn *finance.Transaction) error {
		previous = txn.ReceiptImageKey
		if err := s.receipts.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to store receipt: %w", err)
		}
		stored = true
		return txn.AttachReceipt(key)
	})
	if err != nil {
		// The object was written but the transaction never referenced it
		if stored {
			s.removeReceipt(ctx, key)
		}
		return nil, err
	}
	if previous != "" && previous != key {
		s.removeReceipt(ctx, previous)
	}

	return &ReceiptResponse{Key: key, ContentType: contentType, Size: int64(len(data))}, nil
}

// ReceiptURL returns a temporary download link for the transaction's receipt
func (s *TransactionService) ReceiptURL(ctx context.Context, ownerID, id uuid.UUID) (*ReceiptURLResponse, error) {
	if s.receipts == nil {
		return nil, shared.NewInvalidStateError("Receipt storage is not configured")
	}
	txn, err := s.txnRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if txn.ReceiptImageKey == "" {
		return nil, shared.NewNotFoundError("Receipt of transaction", id)
	}
	url, expires, err := s.receipts.PresignGet(ctx, txn.ReceiptImageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to presign receipt: %w", err)
	}
	return &ReceiptURLResponse{URL: url, ExpiresAt: expires}, nil
}

// removeReceipt deletes an orphaned object and logs failures
func (s *TransactionService) removeReceipt(ctx context.Context, key string) {
	if err := s.receipts.Delete(ctx, key); err != nil {
		logger.Or(ctx, s.logger).Warn("Failed to delete receipt object",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
