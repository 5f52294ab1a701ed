package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/config"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/middleware"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/pkg/logger"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/service"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/view"
	"github.com/gin-gonic/gin"
)

// Receipt extensions accepted for staging.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// rejectedFileMessage is shown as a blocking alert when the selected
// file is not an accepted image type.
const rejectedFileMessage = "Seuls les justificatifs au format jpg, jpeg ou png sont acceptés"

// NewBillHandler drives the bill creation page: the form itself, the
// receipt staging step, and the final submit.
type NewBillHandler struct {
	store      service.Store
	validation *config.ValidationConfig
	billsPath  string
	submitPath string
	stagePath  string
}

func NewNewBillHandler(store service.Store, validation *config.ValidationConfig, billsPath, submitPath, stagePath string) *NewBillHandler {
	return &NewBillHandler{
		store:      store,
		validation: validation,
		billsPath:  billsPath,
		submitPath: submitPath,
		stagePath:  stagePath,
	}
}

// ShowPage renders the creation form
func (h *NewBillHandler) ShowPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(view.NewBillUI(view.NewBillData{
		SubmitPath: h.submitPath,
		StagePath:  h.stagePath,
	})))
}

// StageFile validates the selected receipt and stages it in the store.
// An extension outside the allow-list is rejected before any upload;
// the client clears the input and shows the error as an alert.
func (h *NewBillHandler) StageFile(c *gin.Context) {
	session, _ := middleware.GetSession(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun fichier fourni"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": rejectedFileMessage})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		switch ext {
		case ".png":
			contentType = "image/png"
		default:
			contentType = "image/jpeg"
		}
	}

	result, err := h.store.Bills().Create(c.Request.Context(), service.CreateBillInput{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		File:        file,
		Email:       session.Email,
		PreviousKey: c.PostForm("previousKey"),
	})
	if err != nil {
		// Nothing is staged; the required file input keeps the form
		// from being submitted without a receipt.
		logger.Error(c.Request.Context(), "failed to stage receipt file",
			"file_name", header.Filename,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'envoi du justificatif"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"fileUrl":  result.FileURL,
		"key":      result.Key,
		"fileName": header.Filename,
	})
}

// Submit assembles the bill from the form fields, the session email and
// the staged receipt, submits it against the draft record, and sends
// the employee back to the bills page. Navigation is not held back by a
// failing update; the failure is logged.
func (h *NewBillHandler) Submit(c *gin.Context) {
	session, _ := middleware.GetSession(c)

	amount, ok := h.parseFloat(c.PostForm("amount"))
	if !ok {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(view.ErrorUI("Montant invalide")))
		return
	}
	pct, ok := h.parseInt(c.PostForm("pct"), model.DefaultPct)
	if !ok {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(view.ErrorUI("Pourcentage invalide")))
		return
	}

	bill := model.Bill{
		ID:         c.PostForm("billId"),
		Email:      session.Email,
		Type:       c.PostForm("expense-type"),
		Name:       c.PostForm("expense-name"),
		Amount:     amount,
		Date:       c.PostForm("datepicker"),
		VAT:        c.PostForm("vat"),
		Pct:        pct,
		Commentary: c.PostForm("commentary"),
		FileURL:    c.PostForm("fileUrl"),
		FileName:   c.PostForm("fileName"),
		Status:     model.StatusPending,
	}

	if err := bill.Submittable(); err != nil {
		// Lenient validation can let an incomplete bill through; the
		// admin workflow refuses those, so leave a trace here.
		logger.Warn(c.Request.Context(), "submitting incomplete bill",
			"bill_id", bill.ID,
			"error", err,
		)
	}

	if _, err := h.store.Bills().Update(c.Request.Context(), bill); err != nil {
		logger.Error(c.Request.Context(), "failed to submit bill",
			"bill_id", bill.ID,
			"error", err,
		)
	}

	c.Redirect(http.StatusSeeOther, h.billsPath)
}

// parseFloat applies the numeric validation policy: lenient coerces
// empty or unparseable input to zero, strict refuses it.
func (h *NewBillHandler) parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		if h.validation.StrictNumbers {
			return 0, false
		}
		return 0, true
	}
	return v, true
}

// parseInt is parseFloat's integer counterpart, with a default for the
// empty percentage field.
func (h *NewBillHandler) parseInt(s string, def int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		if h.validation.StrictNumbers {
			return 0, false
		}
		return def, true
	}
	return v, true
}
