package devserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-press/internal/dom"
)

// ReloadSnippet is the client script that reloads the page on a change
// event from eventPath.
func ReloadSnippet(eventPath string) string {
	return fmt.Sprintf("new EventSource('%s').addEventListener('change', () => location.reload()); console.info('Listening for live updates')", eventPath)
}

// InjectScript appends an inline script holding source to the page head.
func InjectScript(page []byte, source string) ([]byte, error) {
	doc, err := dom.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	if !dom.AppendToHead(doc, dom.Script(source)) {
		return nil, fmt.Errorf("devserver: page has no <head>")
	}
	return dom.Render(doc)
}

// injectReload buffers responses from next and rewrites successful HTML
// responses to carry the reload script.
func injectReload(snippet string, onError func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			buf := &bufferedResponse{header: http.Header{}}
			next.ServeHTTP(buf, r)

			body := buf.body.Bytes()
			if buf.statusCode() == http.StatusOK && strings.HasPrefix(buf.header.Get("Content-Type"), "text/html") {
				if injected, err := InjectScript(body, snippet); err != nil {
					onError(err)
				} else {
					body = injected
					buf.header.Set("Content-Length", strconv.Itoa(len(body)))
				}
			}

			for key, values := range buf.header {
				w.Header()[key] = values
			}
			w.WriteHeader(buf.statusCode())
			_, _ = w.Write(body)
		})
	}
}

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) statusCode() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}
