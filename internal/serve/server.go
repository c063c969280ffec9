package serve

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pbarilla/blog/internal/catalog"
	"github.com/pbarilla/blog/internal/domain/config"
	"github.com/pbarilla/blog/internal/domain/content"
	domainerr "github.com/pbarilla/blog/internal/domain/errors"
	"github.com/pbarilla/blog/internal/render"
	"github.com/pbarilla/blog/internal/view"
)

type Server struct {
	cfg config.Config

	loader catalog.Loader
	md     *render.MarkdownRenderer
	gate   render.Gate
	views  *view.Composer

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config) (*Server, error) {
	src, err := newSource(cfg.Content)
	if err != nil {
		return nil, err
	}
	views, err := view.NewComposer()
	if err != nil {
		return nil, fmt.Errorf("serve: failed to create composer: %w", err)
	}

	s := &Server{
		cfg: cfg,
		loader: catalog.Loader{
			Source:    src,
			Catalog:   cfg.Content.Catalog,
			Extension: cfg.Content.Extension,
		},
		md: render.NewMarkdownRenderer(),
		gate: render.Gate{
			Interval: time.Duration(cfg.Render.PollInterval),
			Timeout:  time.Duration(cfg.Render.ReadyTimeout),
		},
		views:    views,
		sseConns: make(map[chan string]struct{}),
	}
	return s, nil
}

func newSource(cc config.ContentConfig) (catalog.Source, error) {
	switch cc.Mode {
	case config.SourceHTTP:
		return catalog.HTTPSource{
			BaseURL: cc.BaseURL,
			Client:  &http.Client{Timeout: 10 * time.Second},
		}, nil
	case "", config.SourceFS:
		return catalog.FileSource{Dir: cc.Dir}, nil
	default:
		return nil, fmt.Errorf("serve: unknown content mode %q", cc.Mode)
	}
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Handler builds the route table. Split out from ListenAndServe so tests
// can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleListing)
	mux.HandleFunc("/post", s.handlePost)

	// dev SSE
	mux.HandleFunc("/dev/events", s.handleSSE)

	if dir := s.cfg.Serve.StaticDir; dir != "" {
		fileServer := http.FileServer(http.Dir(dir))
		mux.Handle("/css/", fileServer)
		mux.Handle("/js/", fileServer)
		mux.Handle("/images/", fileServer)
		mux.Handle("/favicon.ico", fileServer)
	}
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if s.cfg.Content.Mode == config.SourceFS || s.cfg.Content.Mode == "" {
		if err := s.startWatch(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("[serve] listening on %s", addr)
	return srv.ListenAndServe()
}

// Listing view. The catalog is loaded fresh on every request and failure
// degrades to an empty listing; only the sorting is the handler's job.
func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.renderNotFound(w, r, "")
		return
	}

	records := s.loader.Load(r.Context())
	content.SortByDateDesc(records)

	page := view.ListingPage{
		Site:      s.cfg.Site,
		Items:     records,
		Generated: time.Now(),
	}
	htmlBytes, err := s.views.Listing(r.Context(), page)
	if err != nil {
		log.Printf("render listing error: %v", err)
		http.Error(w, "render listing error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

// Single-post view: /post?id=<id>. No id redirects to the listing; a
// resolution or content miss renders the not-found page; otherwise the
// render path waits for the markdown engine and highlighter before
// converting the body.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	doc, err := s.loader.LoadPost(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domainerr.ErrNotFound) {
			log.Printf("[warn] load post %q: %v", id, err)
		}
		s.renderNotFound(w, r, id)
		return
	}

	if err := s.gate.Await(r.Context(), s.md.EngineReady, s.md.HighlighterReady); err != nil {
		log.Printf("[warn] render gate: %v", err)
		s.renderPlain(w, r, doc)
		return
	}

	mdResult, err := s.md.Render(doc.Body)
	if err != nil {
		log.Printf("markdown render error: %v", err)
		http.Error(w, "markdown render error", http.StatusInternalServerError)
		return
	}

	pp := view.PostPage{
		Site: s.cfg.Site,
		Meta: doc.Record,
		HTML: template.HTML(mdResult.HTML),
		TOC:  mdResult.Headings,
	}
	htmlBytes, err := s.views.Post(r.Context(), pp)
	if err != nil {
		log.Printf("render post error: %v", err)
		http.Error(w, "render post error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

// renderPlain is the degraded path when rendering dependencies never come
// up: the body goes out escaped in a <pre> instead of a blank page.
func (s *Server) renderPlain(w http.ResponseWriter, r *http.Request, doc catalog.PostDocument) {
	pp := view.PostPage{
		Site: s.cfg.Site,
		Meta: doc.Record,
		HTML: template.HTML("<pre>" + template.HTMLEscapeString(string(doc.Body)) + "</pre>"),
	}
	htmlBytes, err := s.views.Post(r.Context(), pp)
	if err != nil {
		log.Printf("render post error: %v", err)
		http.Error(w, "render post error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, id string) {
	page := view.NotFoundPage{
		Site: s.cfg.Site,
		ID:   id,
	}
	htmlBytes, err := s.views.NotFound(r.Context(), page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	writeHTML(w, htmlBytes)
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		err = filepath.Walk(s.cfg.Content.Dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	log.Printf("[serve] watching %s for changes ...", s.cfg.Content.Dir)
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(200 * time.Millisecond)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[warn] watcher error: %v", err)
		case <-debounce.C:
			s.broadcastSSE("reload")
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		close(ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
