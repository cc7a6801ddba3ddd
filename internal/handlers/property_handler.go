package handlers

import (
	"mime/multipart"
	"net/http"
	"net/url"

	"estatelist/backend/internal/listing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PropertyHandler exposes the property persistence workflow over HTTP.
// The workflow service is injected so the handler carries no hidden
// provider or database state.
type PropertyHandler struct {
	svc *listing.Service
}

func NewPropertyHandler(svc *listing.Service) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

// List returns all listed properties.
func (h *PropertyHandler) List(c *gin.Context) {
	props, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

// Get returns one property by id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	prop, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

// Create handles the multipart create request: the form fields are
// validated before any file is touched, then the attached "images" files
// are uploaded and the row inserted. Per-file upload failures come back
// as upload_warnings alongside the created property.
func (h *PropertyHandler) Create(c *gin.Context) {
	form, files, ok := h.parseMultipart(c)
	if !ok {
		return
	}

	userID, _ := c.Get("userID")
	uid, _ := userID.(uuid.UUID)

	prop, warnings, err := h.svc.Create(c.Request.Context(), form, files, uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := gin.H{"message": "Property added", "property": prop}
	if len(warnings) > 0 {
		resp["upload_warnings"] = warnings
	}
	c.JSON(http.StatusCreated, resp)
}

// Update handles the multipart update request with full-row replace
// semantics plus removed_images merging.
func (h *PropertyHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	form, files, ok := h.parseMultipart(c)
	if !ok {
		return
	}

	prop, warnings, err := h.svc.Update(c.Request.Context(), id, form, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := gin.H{"message": "Property updated", "property": prop}
	if len(warnings) > 0 {
		resp["upload_warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes the row; remote assets stay behind (logged by the
// workflow for out-of-band cleanup).
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// parseMultipart decodes the request form and pulls the "images" file
// parts. Validation errors are written to the response here.
func (h *PropertyHandler) parseMultipart(c *gin.Context) (listing.Form, []*multipart.FileHeader, bool) {
	mForm, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return listing.Form{}, nil, false
	}

	form, err := listing.ParseForm(url.Values(mForm.Value))
	if err != nil {
		respondServiceError(c, err)
		return listing.Form{}, nil, false
	}

	return form, mForm.File["images"], true
}
