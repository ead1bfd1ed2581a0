package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/async"
	"github.com/reisekosten/reisekosten/internal/entity"
)

func (s *Server) handleUploadReceipt(c *fiber.Ctx) error {
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if travel.EmployeeID != currentUserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the owner may attach receipts"})
	}
	if !travel.Editable() {
		return c.Status(409).JSON(fiber.Map{"error": fmt.Sprintf("travel is %s, not accepting receipts", travel.Status)})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "no file provided"})
	}
	ext := constants.NormalizeExt(filepath.Ext(file.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("unsupported file type: .%s", ext)})
	}
	if s.cfg.Uploads.MaxBytes > 0 && file.Size > s.cfg.Uploads.MaxBytes {
		return c.Status(413).JSON(fiber.Map{"error": "file too large"})
	}

	dir := filepath.Join(s.cfg.Uploads.Dir, travel.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("failed to create upload dir", "dir", dir, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to store file"})
	}
	storedPath := filepath.Join(dir, fmt.Sprintf("%s.%s", uuid.NewString(), ext))
	if err := c.SaveFile(file, storedPath); err != nil {
		s.logger.Error("failed to save upload", "path", storedPath, "error", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to store file"})
	}

	filename := file.Filename
	size := file.Size
	mimeType := file.Header.Get("Content-Type")
	status := constants.ParsingStatusPending

	rc := &entity.Receipt{
		TravelID:         travel.ID,
		FilePath:         &storedPath,
		OriginalFilename: &filename,
		FileSize:         &size,
		MimeType:         &mimeType,
		ParsingStatus:    &status,
	}
	if err := s.receipts.Create(c.Context(), rc); err != nil {
		return respondError(c, err)
	}
	if err := s.queue.Enqueue(c.Context(), async.Job{ReceiptID: rc.ID}); err != nil {
		s.logger.Error("failed to enqueue receipt", "receipt_id", rc.ID, "error", err)
	}

	s.logger.Info("receipt uploaded", "receipt_id", rc.ID, "travel_id", travel.ID, "file", filename)
	return c.Status(201).JSON(rc)
}

func (s *Server) handleListReceipts(c *fiber.Ctx) error {
	travel, err := s.loadTravelForView(c)
	if err != nil {
		return travelError(c, err)
	}
	receipts, err := s.receipts.ListByTravel(c.Context(), travel.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(receipts)
}

// loadReceiptForView resolves a receipt whose travel the caller may read.
func (s *Server) loadReceiptForView(c *fiber.Ctx) (*entity.Receipt, *entity.Travel, error) {
	receiptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, nil, errBadID
	}
	rc, err := s.receipts.GetByID(c.Context(), receiptID)
	if err != nil {
		return nil, nil, err
	}
	travel, err := s.viewTravel(c, rc.TravelID)
	if err != nil {
		return nil, nil, err
	}
	return rc, travel, nil
}

func (s *Server) handleGetReceipt(c *fiber.Ctx) error {
	rc, _, err := s.loadReceiptForView(c)
	if err != nil {
		return travelError(c, err)
	}
	return c.JSON(rc)
}

type receiptUpdateRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Currency      *string          `json:"currency"`
	Date          *time.Time       `json:"date"`
	VAT           *decimal.Decimal `json:"vat"`
	VATRate       *decimal.Decimal `json:"vat_rate"`
	Merchant      *string          `json:"merchant"`
	Category      *string          `json:"category"`
	InvoiceNumber *string          `json:"invoice_number"`
	PaymentMethod *string          `json:"payment_method"`
	Notes         *string          `json:"notes"`
}

// handleUpdateReceipt lets the owner (while the travel is editable) or the
// reviewing controller correct parsed fields. Only provided fields change.
func (s *Server) handleUpdateReceipt(c *fiber.Ctx) error {
	rc, travel, err := s.loadReceiptForView(c)
	if err != nil {
		return travelError(c, err)
	}
	role := currentRole(c)
	isOwner := travel.EmployeeID == currentUserID(c)
	if isOwner && !travel.Editable() && role == constants.RoleEmployee {
		return c.Status(409).JSON(fiber.Map{"error": fmt.Sprintf("travel is %s and cannot be edited", travel.Status)})
	}

	var req receiptUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Amount != nil {
		rc.Amount = req.Amount
	}
	if req.Currency != nil {
		rc.Currency = req.Currency
	}
	if req.Date != nil {
		rc.Date = req.Date
	}
	if req.VAT != nil {
		rc.VAT = req.VAT
	}
	if req.VATRate != nil {
		rc.VATRate = req.VATRate
	}
	if req.Merchant != nil {
		rc.Merchant = req.Merchant
	}
	if req.Category != nil {
		category, ok := constants.ParseCategory(*req.Category)
		if !ok {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("unknown category: %s", *req.Category)})
		}
		rc.Category = &category
	}
	if req.InvoiceNumber != nil {
		rc.InvoiceNumber = req.InvoiceNumber
	}
	if req.PaymentMethod != nil {
		rc.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != nil {
		rc.Notes = req.Notes
	}

	if err := s.receipts.Update(c.Context(), rc); err != nil {
		return respondError(c, err)
	}
	return c.JSON(rc)
}

// handleVerifyReceipt marks a receipt as manually checked. Verified receipts
// are skipped by later parsing runs.
func (s *Server) handleVerifyReceipt(c *fiber.Ctx) error {
	role := currentRole(c)
	if role != constants.RoleController && role != constants.RoleAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	}
	rc, _, err := s.loadReceiptForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if err := s.receipts.SetVerified(c.Context(), rc.ID, true); err != nil {
		return respondError(c, err)
	}
	s.logger.Info("receipt verified", "receipt_id", rc.ID, "verified_by", currentUserID(c))
	rc.Verified = true
	return c.JSON(rc)
}

func (s *Server) handleReparseReceipt(c *fiber.Ctx) error {
	rc, _, err := s.loadReceiptForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if rc.Verified {
		return c.Status(409).JSON(fiber.Map{"error": "verified receipts are not reparsed"})
	}
	if err := s.queue.Enqueue(c.Context(), async.Job{ReceiptID: rc.ID}); err != nil {
		return respondError(c, err)
	}
	return c.Status(202).JSON(fiber.Map{"status": "queued"})
}

func (s *Server) handleDeleteReceipt(c *fiber.Ctx) error {
	rc, travel, err := s.loadReceiptForView(c)
	if err != nil {
		return travelError(c, err)
	}
	if travel.EmployeeID != currentUserID(c) && currentRole(c) != constants.RoleAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	}
	if !travel.Editable() && currentRole(c) != constants.RoleAdmin {
		return c.Status(409).JSON(fiber.Map{"error": fmt.Sprintf("travel is %s and cannot be edited", travel.Status)})
	}
	if err := s.receipts.Delete(c.Context(), rc.ID); err != nil {
		return respondError(c, err)
	}
	if rc.FilePath != nil {
		if err := os.Remove(*rc.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove receipt file", "path", *rc.FilePath, "error", err)
		}
	}
	return c.SendStatus(204)
}
