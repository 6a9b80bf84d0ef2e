package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sbs-nexus/docrisk/alerts"
	"github.com/sbs-nexus/docrisk/contracts"
	"github.com/sbs-nexus/docrisk/documents"
	"github.com/sbs-nexus/docrisk/invoices"
	"github.com/sbs-nexus/docrisk/shared/models"
	"github.com/sbs-nexus/docrisk/shared/utils"
)

// CreateDocumentRequest represents a document metadata creation request
type CreateDocumentRequest struct {
	DocumentType   models.DocumentType   `json:"document_type" binding:"required"`
	FileName       string                `json:"file_name" binding:"required"`
	MimeType       string                `json:"mime_type" binding:"required"`
	UploadedBy     string                `json:"uploaded_by"`
	Classification models.Classification `json:"classification"`
	RetentionYears int                   `json:"retention_years"`
}

// RegisterContractRequest represents a contract registration request
type RegisterContractRequest struct {
	FileName         string `json:"file_name" binding:"required"`
	MimeType         string `json:"mime_type" binding:"required"`
	CounterpartyName string `json:"counterparty_name" binding:"required"`
	PaymentTermsDays *int   `json:"payment_terms_days"`
	UploadedBy       string `json:"uploaded_by"`
}

// AnalyzeContractRequest represents a contract analysis request
type AnalyzeContractRequest struct {
	ContractID       uuid.UUID `json:"contract_id" binding:"required"`
	ContractText     string    `json:"contract_text" binding:"required"`
	CounterpartyName *string   `json:"counterparty_name"`
}

// RegisterInvoiceRequest represents an invoice registration request
type RegisterInvoiceRequest struct {
	FileName         string     `json:"file_name" binding:"required"`
	MimeType         string     `json:"mime_type" binding:"required"`
	UploadedBy       string     `json:"uploaded_by"`
	DueDate          *time.Time `json:"due_date"`
	CounterpartyName *string    `json:"counterparty_name"`
	PaymentTermsDays *int       `json:"payment_terms_days"`
}

// CheckPaymentTermsRequest represents a payment terms reconciliation request
type CheckPaymentTermsRequest struct {
	InvoiceDocumentID uuid.UUID `json:"invoice_document_id" binding:"required"`
	CounterpartyName  string    `json:"counterparty_name" binding:"required"`
	InvoiceTermsDays  *int      `json:"invoice_terms_days" binding:"required"`
}

// handleListAlerts returns the tenant's alerts, most recent first
func handleListAlerts(store *alerts.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := alerts.ListFilter{}

		if v := c.Query("type"); v != "" {
			alertType := models.AlertType(v)
			filter.AlertType = &alertType
		}
		if v := c.Query("severity"); v != "" {
			severity := models.Severity(v)
			filter.Severity = &severity
		}
		if v := c.Query("limit"); v != "" {
			if limit, err := strconv.Atoi(v); err == nil {
				filter.Limit = limit
			}
		}
		if v := c.Query("offset"); v != "" {
			if offset, err := strconv.Atoi(v); err == nil {
				filter.Offset = offset
			}
		}

		result, err := store.List(c.Request.Context(), filter)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to list alerts")
			return
		}

		utils.OKResponse(c, "Alerts retrieved successfully", result)
	}
}

// handleCreateDocument creates a new document metadata record
func handleCreateDocument(svc *documents.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		doc, err := svc.Create(c.Request.Context(), documents.CreateInput{
			DocumentType:   req.DocumentType,
			FileName:       req.FileName,
			MimeType:       req.MimeType,
			UploadedBy:     req.UploadedBy,
			Classification: req.Classification,
			RetentionYears: req.RetentionYears,
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create document")
			return
		}

		utils.CreatedResponse(c, "Document created successfully", doc)
	}
}

// handleGetDocument fetches one document
func handleGetDocument(svc *documents.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid document ID")
			return
		}

		doc, err := svc.Get(c.Request.Context(), docID)
		if err != nil {
			if errors.Is(err, documents.ErrDocumentNotFound) {
				utils.NotFoundResponse(c, "Document not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch document")
			}
			return
		}

		utils.OKResponse(c, "Document retrieved successfully", doc)
	}
}

// handleMarkProcessed transitions a document to processed
func handleMarkProcessed(svc *documents.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid document ID")
			return
		}

		doc, err := svc.MarkProcessed(c.Request.Context(), docID)
		if err != nil {
			if errors.Is(err, documents.ErrDocumentNotFound) {
				utils.NotFoundResponse(c, "Document not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to update document")
			}
			return
		}

		utils.OKResponse(c, "Document marked processed", doc)
	}
}

// handleSoftDeleteDocument soft-deletes a document
func handleSoftDeleteDocument(svc *documents.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid document ID")
			return
		}

		doc, err := svc.SoftDelete(c.Request.Context(), docID)
		if err != nil {
			switch {
			case errors.Is(err, documents.ErrDocumentNotFound):
				utils.NotFoundResponse(c, "Document not found")
			case errors.Is(err, documents.ErrAlreadyDeleted):
				// Repeat delete keeps the original deletion timestamp
				utils.OKResponse(c, "Document already deleted", doc)
			default:
				utils.InternalServerErrorResponse(c, "Failed to delete document")
			}
			return
		}

		utils.OKResponse(c, "Document deleted", doc)
	}
}

// handleRegisterContract registers a contract document
func handleRegisterContract(svc *contracts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterContractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		contract, err := svc.Register(c.Request.Context(), contracts.RegisterInput{
			FileName:         req.FileName,
			MimeType:         req.MimeType,
			CounterpartyName: req.CounterpartyName,
			PaymentTermsDays: req.PaymentTermsDays,
			UploadedBy:       req.UploadedBy,
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to register contract")
			return
		}

		utils.CreatedResponse(c, "Contract registered successfully", contract)
	}
}

// handleAnalyzeContract runs the clause analysis on submitted contract text
func handleAnalyzeContract(svc *contracts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnalyzeContractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		result, err := svc.AnalyzeAndStore(c.Request.Context(), contracts.AnalyzeInput{
			ContractID:       req.ContractID,
			ContractText:     req.ContractText,
			CounterpartyName: req.CounterpartyName,
		})
		if err != nil {
			if errors.Is(err, contracts.ErrInvalidContractText) {
				utils.BadRequestResponse(c, err.Error())
			} else {
				utils.InternalServerErrorResponse(c, "Failed to analyze contract")
			}
			return
		}

		utils.OKResponse(c, "Contract analyzed successfully", result)
	}
}

// handleGetAnalysis fetches one stored contract analysis
func handleGetAnalysis(svc *contracts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		analysisID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid analysis ID")
			return
		}

		result, err := svc.GetAnalysis(c.Request.Context(), analysisID)
		if err != nil {
			if errors.Is(err, contracts.ErrAnalysisNotFound) {
				utils.NotFoundResponse(c, "Analysis not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch analysis")
			}
			return
		}

		utils.OKResponse(c, "Analysis retrieved successfully", result)
	}
}

// handleRegisterInvoice registers an invoice record
func handleRegisterInvoice(svc *invoices.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterInvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		invoice, err := svc.Register(c.Request.Context(), invoices.RegisterInput{
			FileName:         req.FileName,
			MimeType:         req.MimeType,
			UploadedBy:       req.UploadedBy,
			DueDate:          req.DueDate,
			CounterpartyName: req.CounterpartyName,
			PaymentTermsDays: req.PaymentTermsDays,
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to register invoice")
			return
		}

		utils.CreatedResponse(c, "Invoice registered successfully", invoice)
	}
}

// handleCheckPaymentTerms reconciles an invoice's terms against its contract
func handleCheckPaymentTerms(svc *invoices.Service, reconciler *invoices.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckPaymentTermsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		invoice, err := svc.GetByDocumentID(c.Request.Context(), req.InvoiceDocumentID)
		if err != nil {
			if errors.Is(err, invoices.ErrInvoiceNotFound) {
				utils.NotFoundResponse(c, "Invoice not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch invoice")
			}
			return
		}

		alert, err := reconciler.CheckPaymentTerms(c.Request.Context(), invoice, req.CounterpartyName, *req.InvoiceTermsDays)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to check payment terms")
			return
		}

		if alert == nil {
			utils.OKResponse(c, "Payment terms consistent", nil)
			return
		}

		utils.OKResponse(c, "Payment terms mismatch detected", alert)
	}
}

// handleScanOverdue runs the overdue invoice scan for the tenant
func handleScanOverdue(scanner *invoices.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		created, err := scanner.ScanOverdue(c.Request.Context())
		if err != nil {
			utils.InternalServerErrorResponse(c, "Overdue scan failed")
			return
		}

		utils.OKResponse(c, "Overdue scan finished", gin.H{"alerts_created": created})
	}
}
