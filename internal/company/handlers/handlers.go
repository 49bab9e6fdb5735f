package handlers

import (
	"context"
	"net/http"

	"github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Version is reported by the service info endpoint.
const Version = "1.0.0"

// CompanyController defines the business logic interface
// that the HTTP handlers will invoke.
type CompanyController interface {
	ListCompanies(ctx context.Context, spec query.Spec) (*models.CompanyPage, error)
	CreateCompany(ctx context.Context, input models.CompanyInput) (*models.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Options(ctx context.Context) models.Options
	Ping(ctx context.Context) error
}

// CompanyHandler serves the REST routes for Company operations,
// mapping requests to a CompanyController.
type CompanyHandler struct {
	service CompanyController
	logger  *zap.Logger
}

// NewCompanyHandler constructs a new CompanyHandler with the given service and logger.
func NewCompanyHandler(service CompanyController, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.Named("http_handler"),
	}
}

// ListCompanies serves GET /api/companies.
func (h *CompanyHandler) ListCompanies(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	spec, err := query.ParseValues(r.URL.Query())
	if err != nil {
		h.writeError(w, "Invalid query parameters", err)
		return
	}

	page, err := h.service.ListCompanies(r.Context(), spec)
	if err != nil {
		h.writeError(w, "Error fetching companies", err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

// GetCompany serves GET /api/companies/{id}. Responses carry an ETag and
// are revalidated on every use.
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams)
	if err != nil {
		h.writeError(w, "Invalid company ID", err)
		return
	}

	company, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		h.writeError(w, "Error fetching company", err)
		return
	}

	tag := etag(company)
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.writeJSON(w, http.StatusOK, company)
}

// CreateCompany serves POST /api/companies.
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	input, err := decodeInput(r)
	if err != nil {
		h.writeError(w, "Error creating company", err)
		return
	}

	created, err := h.service.CreateCompany(r.Context(), input)
	if err != nil {
		h.logger.Warn("Create company failed", zap.Error(err))
		h.writeError(w, "Error creating company", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// UpdateCompany serves PUT /api/companies/{id}.
func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams)
	if err != nil {
		h.writeError(w, "Invalid company ID", err)
		return
	}
	input, err := decodeInput(r)
	if err != nil {
		h.writeError(w, "Error updating company", err)
		return
	}

	updated, err := h.service.UpdateCompany(r.Context(), &models.CompanyUpdate{ID: id, Input: input})
	if err != nil {
		h.writeError(w, "Error updating company", err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteCompany serves DELETE /api/companies/{id} and returns the removed record.
func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := parseID(pathParams)
	if err != nil {
		h.writeError(w, "Invalid company ID", err)
		return
	}

	deleted, err := h.service.DeleteCompany(r.Context(), id)
	if err != nil {
		h.writeError(w, "Error deleting company", err)
		return
	}
	h.writeJSON(w, http.StatusOK, deleted)
}

// Options serves GET /api/options.
func (h *CompanyHandler) Options(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, h.service.Options(r.Context()))
}

type info struct {
	Message  string `json:"message"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// Info serves GET / with the service name, version and database state.
func (h *CompanyHandler) Info(w http.ResponseWriter, r *http.Request) {
	state := "connected"
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("Database ping failed", zap.Error(err))
		state = "disconnected"
	}
	h.writeJSON(w, http.StatusOK, info{
		Message:  "Company Directory API",
		Version:  Version,
		Database: state,
	})
}
