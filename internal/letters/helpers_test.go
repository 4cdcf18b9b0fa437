package letters

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"letter-backend/internal/extract"
	"letter-backend/internal/llm"
	"letter-backend/internal/shared/storage/object"
	localstore "letter-backend/internal/shared/storage/object/local"
	"letter-backend/internal/shared/telemetry"
)

const (
	testJobPosting = "We are hiring a backend engineer to build Go services for our payments platform."
	testResumeText = "Jane Doe. Senior Go engineer with ten years of backend and distributed systems experience."
)

var validCompletion = `Here are your letters:
{"professional":{"content":"Dear Hiring Manager,
I am applying.","tone":"Professional"},"friendly":{"content":"Hi Acme team!","tone":"Friendly"},"enthusiastic":{"content":"I'd love to join!","tone":"Enthusiastic"},"customizationTips":["Mention the payments launch"]}`

type fakeLLM struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	lastReq llm.Request
	lastErr error
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	f.lastErr = ctx.Err()
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Text: f.text, Model: "test-model", InputTokens: 100, OutputTokens: 50}, nil
}

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// trackingStore counts lifecycle calls on top of a real local store.
type trackingStore struct {
	object.ObjectStore
	mu        sync.Mutex
	saves     int
	deletes   int
	deleteErr error
}

func (s *trackingStore) Save(ctx context.Context, fileName string, r io.Reader) (string, int64, error) {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.ObjectStore.Save(ctx, fileName, r)
}

func (s *trackingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.ObjectStore.Delete(ctx, key)
}

func (s *trackingStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves, s.deletes
}

func newTrackingStore(t *testing.T) (*trackingStore, string) {
	t.Helper()
	dir := t.TempDir()
	return &trackingStore{ObjectStore: localstore.New(dir)}, dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected no staged files, found %v", names)
	}
}

func silenceLogs(t *testing.T) {
	t.Helper()
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
}

func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	files := map[string]string{
		"word/document.xml": doc.String(),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func pdfBytes(t *testing.T, lines ...string) []byte {
	t.Helper()
	var content strings.Builder
	y := 720
	for _, line := range lines {
		content.WriteString("BT\n")
		if line != "" {
			fmt.Fprintf(&content, "/F1 12 Tf 72 %d Td (%s) Tj\n", y, line)
			y -= 16
		}
		content.WriteString("ET\n")
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)
	return buf.Bytes()
}

func pdfUpload(name string, data []byte) *Upload {
	return &Upload{
		Document: extract.Document{Name: name, MediaType: extract.MimePDF, SizeBytes: int64(len(data))},
		Body:     bytes.NewReader(data),
	}
}

func docxUpload(name string, data []byte) *Upload {
	return &Upload{
		Document: extract.Document{Name: name, MediaType: extract.MimeDOCX, SizeBytes: int64(len(data))},
		Body:     bytes.NewReader(data),
	}
}

func assertInputError(t *testing.T, err error, wantSubstring string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q", wantSubstring)
	}
	if !IsInputError(err) {
		t.Fatalf("expected input error, got %T (%v)", err, err)
	}
	if !strings.Contains(err.Error(), wantSubstring) {
		t.Fatalf("expected %q in %q", wantSubstring, err.Error())
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		t.Fatalf("unexpected parse error: %v", err)
	}
}
