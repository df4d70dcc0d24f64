package http

import (
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/aretw0/psdrun/pkg/domain"
)

// getFrame serves the newest composited frame as PNG. The X-Frame-Seq
// header carries the sequence number of the request that produced it.
func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	frame, ok := sess.Frame()
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no frame rendered yet"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Frame-Seq", strconv.FormatUint(frame.Seq, 10))
	if err := png.Encode(w, toImage(frame.Bitmap)); err != nil {
		s.logger.Error("failed to encode frame", "session", sess.ID(), "err", err)
	}
}

// toImage wraps a bitmap without copying; both are straight-alpha RGBA.
func toImage(b domain.Bitmap) *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pixels,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
