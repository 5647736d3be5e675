// Package server provides the textmark local web UI and HTTP API.
//
// Each browser tab creates its own editing session; sessions live in memory
// and are discarded when the process exits.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/xob0t/textmark/pkg/compositor"
	"github.com/xob0t/textmark/pkg/generator"
	"github.com/xob0t/textmark/pkg/session"
)

//go:embed web/*
var webContent embed.FS

// EmbeddedFont names the built-in Go Regular font in session requests.
const EmbeddedFont = "embedded"

// Options configures the server.
type Options struct {
	Addr        string       // listen address, e.g. "localhost:8080"
	FontPath    string       // font file used when a session names none
	OutputPath  string       // file every session saves to; default session.DefaultOutputPath
	OpenBrowser bool         // open the UI in the default browser
	Logger      *slog.Logger // nil discards
}

// ── Session store ──

type entry struct {
	mu sync.Mutex // one command at a time per session
	s  *session.Session
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*entry)}
}

func (st *sessionStore) add(s *session.Session) string {
	id := uuid.NewString()
	st.mu.Lock()
	st.sessions[id] = &entry{s: s}
	st.mu.Unlock()
	return id
}

func (st *sessionStore) get(id string) (*entry, bool) {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	return e, ok
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// ── Font store ──

type fontStore struct {
	mu    sync.RWMutex
	fonts map[string]*compositor.FontManager
}

func newFontStore() *fontStore {
	return &fontStore{fonts: make(map[string]*compositor.FontManager)}
}

func (fsr *fontStore) add(fm *compositor.FontManager) string {
	id := uuid.NewString()
	fsr.mu.Lock()
	fsr.fonts[id] = fm
	fsr.mu.Unlock()
	return id
}

func (fsr *fontStore) get(id string) (*compositor.FontManager, bool) {
	fsr.mu.RLock()
	fm, ok := fsr.fonts[id]
	fsr.mu.RUnlock()
	return fm, ok
}

// ── Server ──

type srv struct {
	opts     Options
	log      *slog.Logger
	sessions *sessionStore
	fonts    *fontStore
	embedded *compositor.FontManager
}

// NewHandler returns the API and UI routes without starting a listener.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.FontPath == "" {
		opts.FontPath = compositor.DefaultFontPath
	}
	if opts.OutputPath == "" {
		opts.OutputPath = session.DefaultOutputPath
	}

	embedded, err := compositor.NewFontManagerFromBytes(EmbeddedFont, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("embedded font: %w", err)
	}

	s := &srv{
		opts:     opts,
		log:      opts.Logger.With(slog.String("component", "server")),
		sessions: newSessionStore(),
		fonts:    newFontStore(),
		embedded: embedded,
	}

	webFS, err := fs.Sub(webContent, "web")
	if err != nil {
		return nil, fmt.Errorf("embed web: %w", err)
	}

	mux := http.NewServeMux()

	// API routes.
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionState)
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/sessions/{id}/watermarks", s.handleAddWatermark)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /api/sessions/{id}/save", s.handleSave)
	mux.HandleFunc("GET /api/sessions/{id}/preview", s.handlePreview)
	mux.HandleFunc("GET /api/sessions/{id}/image", s.handleImage)
	mux.HandleFunc("POST /api/fonts", s.handleUploadFont)

	// Static files.
	mux.Handle("/", http.FileServer(http.FS(webFS)))

	return mux, nil
}

// RunServe starts the web UI server and blocks until it fails.
func RunServe(opts Options) error {
	if opts.Addr == "" {
		opts.Addr = "localhost:8080"
	}
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}

	url := "http://" + opts.Addr
	if opts.Logger != nil {
		opts.Logger.Info("textmark UI", slog.String("url", url))
	}
	if opts.OpenBrowser {
		go openBrowser(url)
	}

	return http.ListenAndServe(opts.Addr, handler)
}

// ── Requests ──

type createRequest struct {
	Font string `json:"font"` // "", EmbeddedFont, or an uploaded font id
}

type inputsRequest struct {
	Text      string  `json:"text"`
	TextSize  int     `json:"textSize"`
	Density   float64 `json:"density"`
	Seed      uint64  `json:"seed"`
	Watermark string  `json:"watermark,omitempty"`
}

func (r inputsRequest) inputs() session.Inputs {
	in := session.Inputs{
		Text:     r.Text,
		TextSize: r.TextSize,
		Density:  r.Density,
		Seed:     r.Seed,
	}
	if in.TextSize == 0 {
		in.TextSize = compositor.DefaultTextSize
	}
	if in.Seed == 0 {
		in.Seed = rand.Uint64()
	}
	return in
}

type stateResponse struct {
	ID         string   `json:"id"`
	State      string   `json:"state"`
	Watermarks []string `json:"watermarks"`
	TextSize   int      `json:"textSize"`
	Density    float64  `json:"density"`
	Path       string   `json:"path,omitempty"`
	Seed       uint64   `json:"seed,omitempty"`
}

// ── Handlers ──

func (s *srv) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeOptional(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := []session.Option{
		session.WithFontPath(s.opts.FontPath),
		session.WithOutputPath(s.opts.OutputPath),
		session.WithLogger(s.opts.Logger.With(slog.String("component", "session"))),
	}
	switch req.Font {
	case "":
	case EmbeddedFont:
		opts = append(opts, session.WithFonts(s.embedded))
	default:
		fm, ok := s.fonts.get(req.Font)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown font %q", req.Font), http.StatusBadRequest)
			return
		}
		opts = append(opts, session.WithFonts(fm))
	}

	sess := session.New(opts...)
	id := s.sessions.add(sess)
	s.log.Info("session created", slog.String("id", id))
	writeJSON(w, http.StatusCreated, s.state(id, sess, session.Result{State: sess.State()}))
}

func (s *srv) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.remove(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *srv) handleSessionState(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(id string, sess *session.Session) {
		writeJSON(w, http.StatusOK, s.state(id, sess, session.Result{State: sess.State()}))
	})
}

func (s *srv) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req inputsRequest
	if err := decodeOptional(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := req.inputs()
	s.dispatch(w, r, session.Generate{Inputs: in}, in.Seed)
}

func (s *srv) handleAddWatermark(w http.ResponseWriter, r *http.Request) {
	var req inputsRequest
	if err := decodeOptional(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := req.inputs()
	s.dispatch(w, r, session.AddWatermark{Inputs: in, Watermark: req.Watermark}, in.Seed)
}

func (s *srv) handleReset(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.Reset{}, 0)
}

// handleSave writes to Options.OutputPath. The target is not chosen by the client.
func (s *srv) handleSave(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.Save{}, 0)
}

func (s *srv) handlePreview(w http.ResponseWriter, r *http.Request) {
	width, err1 := strconv.Atoi(r.URL.Query().Get("w"))
	height, err2 := strconv.Atoi(r.URL.Query().Get("h"))
	if err1 != nil || err2 != nil {
		http.Error(w, "w and h must be integers", http.StatusBadRequest)
		return
	}

	s.withSession(w, r, func(_ string, sess *session.Session) {
		res, err := sess.Dispatch(session.Preview{Width: width, Height: height})
		if err != nil {
			writeError(w, err)
			return
		}
		writeImage(w, ".png", res.Image)
	})
}

func (s *srv) handleImage(w http.ResponseWriter, r *http.Request) {
	ext := "." + r.URL.Query().Get("format")
	if ext == "." {
		ext = ".png"
	}

	s.withSession(w, r, func(_ string, sess *session.Session) {
		img := sess.Image()
		if img == nil {
			http.Error(w, "nothing generated yet", http.StatusConflict)
			return
		}
		writeImage(w, ext, img)
	})
}

func (s *srv) handleUploadFont(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(32 << 20)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	fm, err := compositor.NewFontManagerFromBytes(header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	id := s.fonts.add(fm)
	s.log.Info("font uploaded", slog.String("id", id), slog.String("name", fm.Name()))
	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "name": fm.Name()})
}

// ── Helpers ──

// withSession runs fn holding the session's lock, or answers 404.
func (s *srv) withSession(w http.ResponseWriter, r *http.Request, fn func(id string, sess *session.Session)) {
	id := r.PathValue("id")
	e, ok := s.sessions.get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(id, e.s)
}

// dispatch runs cmd on the addressed session and answers with its state.
func (s *srv) dispatch(w http.ResponseWriter, r *http.Request, cmd session.Command, seed uint64) {
	s.withSession(w, r, func(id string, sess *session.Session) {
		res, err := sess.Dispatch(cmd)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := s.state(id, sess, res)
		resp.Seed = seed
		writeJSON(w, http.StatusOK, resp)
	})
}

func (s *srv) state(id string, sess *session.Session, res session.Result) stateResponse {
	wm := sess.Watermarks()
	if wm == nil {
		wm = []string{}
	}
	in := sess.Inputs()
	return stateResponse{
		ID:         id,
		State:      res.State.String(),
		Watermarks: wm,
		TextSize:   in.TextSize,
		Density:    in.Density,
		Path:       res.Path,
	}
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var re *compositor.ResourceError
	switch {
	case errors.As(err, &re),
		errors.Is(err, compositor.ErrOutOfRange),
		errors.Is(err, compositor.ErrEmptyViewport),
		errors.Is(err, compositor.ErrViewportTooLarge):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		// *session.WriteError and anything unexpected.
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeImage(w http.ResponseWriter, ext string, img image.Image) {
	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ext, generator.Config{Image: img}); err != nil {
		if errors.Is(err, generator.ErrUnsupportedFormat) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", generator.ContentType(ext))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// decodeOptional decodes a JSON body, treating an empty body as zero values.
func decodeOptional(body io.Reader, v any) error {
	err := json.NewDecoder(body).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Start()
}
