package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/internal/imageio"
	"github.com/qrsnap/qrsnap/scan"
	"github.com/qrsnap/qrsnap/urlnorm"
)

// formField is the multipart field holding the image.
const formField = "image"

type decodeHandler struct {
	srv *Server
}

type decodeResponse struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Bytes   []byte `json:"bytes"`
	ECLevel string `json:"ec_level"`
	Version int    `json:"version"`
	Mask    int    `json:"mask"`
	URL     string `json:"url,omitempty"`
}

type errorResponse struct {
	ID      string `json:"id"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *decodeHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	id := w.Header().Get(RequestIDHeader)
	fail := func(status int, kind string, err error) {
		writeJSON(w, status, errorResponse{ID: id, Error: kind, Message: err.Error()})
	}

	data, err := h.readImage(w, req)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(http.StatusRequestEntityTooLarge, "upload_too_large", err)
			return
		}
		fail(http.StatusBadRequest, "bad_request", err)
		return
	}

	cfg, _, err := imageio.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		fail(http.StatusUnsupportedMediaType, "unsupported_image", err)
		return
	}
	if err := qrsnap.CheckSize(cfg.Width, cfg.Height, h.srv.cfg.MaxPixels); err != nil {
		fail(http.StatusUnprocessableEntity, ErrorKind(err), err)
		return
	}
	img, _, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		fail(http.StatusUnsupportedMediaType, "unsupported_image", err)
		return
	}

	ctx := req.Context()
	if err := h.srv.sem.Acquire(ctx, 1); err != nil {
		fail(http.StatusServiceUnavailable, "busy", err)
		return
	}
	res, err := h.srv.backend.Decode(ctx, img)
	h.srv.sem.Release(1)
	if err != nil {
		fail(http.StatusUnprocessableEntity, ErrorKind(err), err)
		return
	}

	resp := decodeResponse{
		ID:      id,
		Text:    res.Text,
		Bytes:   res.Bytes,
		ECLevel: res.ECLevel,
		Version: res.Version,
		Mask:    res.Mask,
	}
	if urlnorm.IsURL(res.Text) {
		resp.URL = urlnorm.Normalize(res.Bytes)
	}
	writeJSON(w, http.StatusOK, resp)
}

// readImage returns the uploaded image bytes from a multipart "image" field
// or, for any other content type, the raw body.
func (h *decodeHandler) readImage(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	limit := h.srv.cfg.MaxUploadBytes
	req.Body = http.MaxBytesReader(w, req.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(req.Body)
	}
	if err := req.ParseMultipartForm(limit); err != nil {
		return nil, err
	}
	f, _, err := req.FormFile(formField)
	if err != nil {
		return nil, fmt.Errorf("multipart field %q: %w", formField, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ErrorKind names the decode failure class of err for API responses.
func ErrorKind(err error) string {
	kinds := []struct {
		err  error
		kind string
	}{
		{qrsnap.ErrImageTooLarge, "image_too_large"},
		{qrsnap.ErrInvalidBuffer, "invalid_buffer"},
		{qrsnap.ErrNoFinderPatterns, "no_finder_patterns"},
		{qrsnap.ErrSampleOutOfBounds, "sample_out_of_bounds"},
		{qrsnap.ErrFormatInfoUnrecoverable, "format_info_unrecoverable"},
		{qrsnap.ErrMatrixTooSmall, "matrix_too_small"},
		{qrsnap.ErrCorruptLayout, "corrupt_layout"},
		{qrsnap.ErrBlockUncorrectable, "block_uncorrectable"},
		{qrsnap.ErrSegmentDecode, "segment_decode"},
		{scan.ErrUnsupportedPayload, "unsupported_payload"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "decode_failed"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already out; an encode error cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}
