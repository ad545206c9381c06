package assets

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Handler serves one optimized image, preferring WebP when the client
// accepts it and the file exists, and falling back to JPEG otherwise.
// ?variant=placeholder selects the blurred placeholder.
type Handler struct {
	dir  string
	name string
}

// NewHandler serves <dir>/<name>.{webp,jpg} and <dir>/<name>-blur.jpg.
func NewHandler(dir, name string) *Handler {
	return &Handler{dir: dir, name: name}
}

// Candidates returns the files tried for a request, in order.
func (h *Handler) Candidates(accept, variant string) []string {
	if variant == "placeholder" {
		return []string{filepath.Join(h.dir, h.name+"-blur.jpg")}
	}
	jpg := filepath.Join(h.dir, h.name+".jpg")
	if acceptsWebP(accept) {
		return []string{filepath.Join(h.dir, h.name+".webp"), jpg}
	}
	return []string{jpg}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", "Accept")
	for _, p := range h.Candidates(r.Header.Get("Accept"), r.URL.Query().Get("variant")) {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			f.Close()
			continue
		}
		w.Header().Set("Content-Type", mime.TypeByExtension(filepath.Ext(p)))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeContent(w, r, filepath.Base(p), info.ModTime(), f)
		f.Close()
		return
	}
	http.NotFound(w, r)
}

// acceptsWebP reports whether an Accept header lists image/webp with a
// non-zero quality.
func acceptsWebP(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		if strings.TrimSpace(fields[0]) != "image/webp" {
			continue
		}
		for _, p := range fields[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if ok && k == "q" {
				if q, err := strconv.ParseFloat(v, 64); err == nil && q == 0 {
					return false
				}
			}
		}
		return true
	}
	return false
}
