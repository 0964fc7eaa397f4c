package telegram_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/djoldoshevv/Turniti/notify/telegram"
)

func botServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNotifySendsMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	srv := botServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"ok":true}`)
	})

	c := telegram.New("test-token", telegram.WithAPIBase(srv.URL))
	if err := c.Notify(t.Context(), 42, "your document is ready"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPayload["chat_id"] != float64(42) {
		t.Errorf("chat_id = %v, want 42", gotPayload["chat_id"])
	}
	if gotPayload["text"] != "your document is ready" {
		t.Errorf("text = %v", gotPayload["text"])
	}
}

func TestDeliverFileSendsMultipart(t *testing.T) {
	var gotChatID, gotCaption, gotFileName, gotContent string

	srv := botServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendDocument") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotChatID = r.FormValue("chat_id")
		gotCaption = r.FormValue("caption")
		f, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer f.Close()
			gotFileName = header.Filename
			buf := make([]byte, header.Size)
			f.Read(buf) //nolint:errcheck // short test payload
			gotContent = string(buf)
		}
		fmt.Fprint(w, `{"ok":true}`)
	})

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("processed artifact"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	c := telegram.New("test-token", telegram.WithAPIBase(srv.URL))
	if err := c.DeliverFile(t.Context(), 42, path, "here you go"); err != nil {
		t.Fatalf("DeliverFile: %v", err)
	}

	if gotChatID != "42" {
		t.Errorf("chat_id = %q, want 42", gotChatID)
	}
	if gotCaption != "here you go" {
		t.Errorf("caption = %q", gotCaption)
	}
	if gotFileName != "report.pdf" {
		t.Errorf("filename = %q", gotFileName)
	}
	if gotContent != "processed artifact" {
		t.Errorf("content = %q", gotContent)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	srv := botServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	})

	c := telegram.New("test-token", telegram.WithAPIBase(srv.URL))
	err := c.Notify(t.Context(), 42, "hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("err = %v, want api error with description", err)
	}
}
