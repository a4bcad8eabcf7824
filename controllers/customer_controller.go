package controllers

import (
	"backoffice/services"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CustomerController обрабатывает запросы по клиентам
type CustomerController struct {
	customers *services.CustomerService
	imports   *services.ImportService
	exports   *services.ExportService
	uploadDir string
	maxUpload int64
}

// NewCustomerController создает новый экземпляр CustomerController
func NewCustomerController(customers *services.CustomerService, imports *services.ImportService, exports *services.ExportService, uploadDir string, maxUploadMB int) *CustomerController {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &CustomerController{
		customers: customers,
		imports:   imports,
		exports:   exports,
		uploadDir: uploadDir,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

func (h *CustomerController) List(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context(), actorOf(c), services.CustomerFilter{
		Status: c.Query("status"),
		Query:  c.Query("q"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := h.customers.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerController) Create(c *gin.Context) {
	var req services.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), actorOf(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.customers.Delete(c.Request.Context(), actorOf(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadFiles сохраняет фото и документ клиента (поля photo и document)
func (h *CustomerController) UploadFiles(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	// Проверяем доступ до записи файлов на диск
	if _, err := h.customers.Get(c.Request.Context(), actorOf(c), id); err != nil {
		respondError(c, err)
		return
	}

	photo, err := h.saveUpload(c, "photo")
	if err != nil {
		respondError(c, err)
		return
	}
	document, err := h.saveUpload(c, "document")
	if err != nil {
		respondError(c, err)
		return
	}
	if photo == "" && document == "" {
		respondError(c, &services.ValidationError{Fields: map[string]string{"photo": "photo or document file is required"}})
		return
	}

	customer, err := h.customers.AttachFiles(c.Request.Context(), actorOf(c), id, photo, document)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// File отдает фото или документ клиента (kind: photo|document) после проверки доступа
func (h *CustomerController) File(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	customer, err := h.customers.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var stored string
	switch c.Param("kind") {
	case "photo":
		stored = customer.PhotoPath
	case "document":
		stored = customer.DocumentPath
	default:
		respondError(c, &services.ValidationError{Fields: map[string]string{"kind": "must be one of: photo document"}})
		return
	}
	if stored == "" {
		respondError(c, services.ErrNotFound)
		return
	}

	path := filepath.Join(h.uploadDir, filepath.Base(stored))
	if _, err := os.Stat(path); err != nil {
		respondError(c, services.ErrNotFound)
		return
	}
	c.File(path)
}

// saveUpload сохраняет файл поля под случайным именем и возвращает относительный путь.
// Отсутствующее поле - пустой путь без ошибки.
func (h *CustomerController) saveUpload(c *gin.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", &services.ValidationError{Fields: map[string]string{field: "invalid multipart form"}}
	}
	if fh.Size > h.maxUpload {
		return "", &services.ValidationError{Fields: map[string]string{field: fmt.Sprintf("file exceeds %d MB", h.maxUpload>>20)}}
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return "", err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, filepath.Join(h.uploadDir, name)); err != nil {
		return "", err
	}
	return "uploads/" + name, nil
}

// openSheet открывает загруженный .xlsx из поля file
func openSheet(c *gin.Context, maxUpload int64) (multipart.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, &services.ValidationError{Fields: map[string]string{"file": "file is required"}}
	}
	if fh.Size > maxUpload {
		return nil, &services.ValidationError{Fields: map[string]string{"file": fmt.Sprintf("file exceeds %d MB", maxUpload>>20)}}
	}
	if strings.ToLower(filepath.Ext(fh.Filename)) != ".xlsx" {
		return nil, &services.ValidationError{Fields: map[string]string{"file": "only .xlsx files are supported"}}
	}
	return fh.Open()
}

// Import загружает клиентов из Excel
func (h *CustomerController) Import(c *gin.Context) {
	file, err := openSheet(c, h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	result, err := h.imports.ImportCustomers(c.Request.Context(), actorOf(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export выгружает клиентов в Excel
func (h *CustomerController) Export(c *gin.Context) {
	data, err := h.exports.CustomersXLSX(c.Request.Context(), actorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="customers.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
