package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ginjaninja78/iso20022-converter/internal/converter"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
	"github.com/ginjaninja78/iso20022-converter/internal/validation"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 10 << 20

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	conv   *converter.Converter
	logger *zap.Logger
}

// --- helpers ---

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorBody{Error: msg})
}

// readBody returns the request body as text, or writes an error response.
func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		h.writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return "", false
	}
	if strings.TrimSpace(string(data)) == "" {
		h.writeError(w, http.StatusBadRequest, "request body is empty")
		return "", false
	}
	return string(data), true
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Convert ---

// Convert converts the legacy text in the body. The {format} parameter is
// a format name (mt103, nacha, ...) or "auto".
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "format")

	input, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var (
		conv *converter.Conversion
		err  error
	)
	if strings.EqualFold(name, "auto") {
		conv, err = h.conv.ConvertAuto(r.Context(), input)
	} else {
		format, perr := types.ParseFormat(name)
		if perr != nil {
			h.writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		conv, err = h.conv.Convert(r.Context(), format, input)
	}
	if err != nil {
		h.writeConvertError(w, err)
		return
	}

	h.logger.Debug("Converted request body",
		zap.Stringer("format", conv.Format),
		zap.Bool("valid", conv.Validation.Valid),
		zap.Int("risks", len(conv.Risks())))

	h.writeJSON(w, http.StatusOK, conv)
}

func (h *Handlers) writeConvertError(w http.ResponseWriter, err error) {
	var missing *types.MissingFieldError
	var invalid *types.InvalidFormatError
	switch {
	case errors.As(err, &missing):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: missing.Error(), Field: missing.Field})
	case errors.As(err, &invalid):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: invalid.Error(), Field: invalid.Field})
	case errors.Is(err, converter.ErrUnknownFormat):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Conversion failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Validate ---

// Validate soft-validates the XML document in the body as the {message}
// type (pacs.008 or pain.001).
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	message := chi.URLParam(r, "message")

	var format types.Format
	switch strings.ToLower(message) {
	case "pacs.008", "pacs008":
		format = types.FormatMT103
	case "pain.001", "pain001":
		format = types.FormatNACHA
	default:
		h.writeError(w, http.StatusBadRequest, "unsupported message type "+message+"; expected pacs.008 or pain.001")
		return
	}

	doc, ok := h.readBody(w, r)
	if !ok {
		return
	}

	result, err := validation.Validate(format, doc)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// --- Detect ---

type detectResponse struct {
	Format  types.Format `json:"format"`
	Message string       `json:"message"`
	Fields  []string     `json:"fields"`
}

// Detect reports the format of the legacy text in the body and the fields
// it appears to carry.
func (h *Handlers) Detect(w http.ResponseWriter, r *http.Request) {
	input, ok := h.readBody(w, r)
	if !ok {
		return
	}

	format, err := converter.DetectFormat(input)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	fields := converter.DetectFields(input, format)
	if fields == nil {
		fields = []string{}
	}

	h.writeJSON(w, http.StatusOK, detectResponse{
		Format:  format,
		Message: format.TargetMessage(),
		Fields:  fields,
	})
}
