package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "resume-1-cv.pdf", want: "resume-1-cv.pdf"},
		{name: "simple prefix", prefix: "uploads", key: "resume-1-cv.pdf", want: "uploads/resume-1-cv.pdf"},
		{name: "prefix trailing slash", prefix: "uploads/", key: "resume-1-cv.pdf", want: "uploads/resume-1-cv.pdf"},
		{name: "prefix and key slashes", prefix: "/uploads/", key: "/resume-1-cv.pdf", want: "uploads/resume-1-cv.pdf"},
		{name: "nested prefix", prefix: "root/uploads", key: "resume-1-cv.pdf", want: "root/uploads/resume-1-cv.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestStoreLifecycle(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "/uploads/", "")
	ctx := context.Background()

	key, size, err := store.Save(ctx, "CV.docx", strings.NewReader("docx-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("docx-bytes")) {
		t.Fatalf("unexpected size %d", size)
	}
	if len(fake.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(fake.puts))
	}
	put := fake.puts[0]
	if !strings.HasPrefix(aws.ToString(put.Key), "uploads/resume-") {
		t.Fatalf("unexpected object key %q", aws.ToString(put.Key))
	}
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption, got %q", put.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "docx-bytes" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.objects) != 0 {
		t.Fatalf("expected bucket empty, got %d objects", len(fake.objects))
	}
}

func TestSaveUsesKMSKey(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "", "kms-key")
	if _, _, err := store.Save(context.Background(), "cv.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	put := fake.puts[0]
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms {
		t.Fatalf("expected aws:kms encryption, got %q", put.ServerSideEncryption)
	}
	if aws.ToString(put.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("unexpected kms key %q", aws.ToString(put.SSEKMSKeyId))
	}
}
