// Package server exposes the projection engine over HTTP: a client posts a
// YAML project definition and receives the computed projection as JSON.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lotline/proforma/internal/config"
	"github.com/lotline/proforma/internal/projection"
	"github.com/lotline/proforma/pkg/constants"
	"github.com/lotline/proforma/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/projection", h.handleProjection)
	mux.HandleFunc("/api/version", h.handleVersion)
	return mux
}

type projectionResponse struct {
	Projection *projection.Projection `json:"projection"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxUploadSize+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if int64(len(body)) > h.maxUploadSize {
		h.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("project definition exceeds %d bytes", h.maxUploadSize))
		return
	}

	var conf config.Configuration
	if err := yaml.Unmarshal(body, &conf); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid project definition: %v", err))
		return
	}

	req := projection.Request{IncludeFinancing: true}
	if v := r.URL.Query().Get("includeFinancing"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "includeFinancing must be a boolean")
			return
		}
		req.IncludeFinancing = include
	}
	if v := r.URL.Query().Get("discountRate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "discountRate must be numeric")
			return
		}
		req.DiscountRateOverride = &rate
	}
	for _, raw := range strings.Split(r.URL.Query().Get("containers"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "containers must be a comma-separated list of IDs")
			return
		}
		req.ContainerIDs = append(req.ContainerIDs, id)
	}

	warnings := validation.ValidateConfiguration(&conf)

	started := time.Now()
	engine := projection.NewEngine(h.logger, config.NewSource(&conf).Providers())
	proj, err := engine.Project(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, projection.ErrProjectNotFound):
			status = http.StatusNotFound
		case errors.Is(err, projection.ErrUnsupportedConfiguration),
			errors.Is(err, projection.ErrInvalidAnalysisType):
			status = http.StatusUnprocessableEntity
		}
		h.logger.Warn("projection failed",
			zap.String("op", "server.handleProjection"),
			zap.Error(err),
		)
		h.writeError(w, status, err.Error())
		return
	}

	h.logger.Info(fmt.Sprintf("projected %s over %d periods", proj.ProjectName, proj.TotalPeriods),
		zap.String("op", "server.handleProjection"),
		zap.Duration("duration", time.Since(started)),
	)

	h.writeJSON(w, http.StatusOK, projectionResponse{
		Projection: proj,
		Warnings:   warnings,
		Duration:   time.Since(started).String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
