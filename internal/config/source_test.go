package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	pnerrors "github.com/vango-dev/pagenav/internal/errors"
)

type fakeS3 struct {
	objects map[string]string
	err     error

	bucket, key string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[f.bucket+"/"+f.key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

const deckYAML = `title: Remote talk
autoLink: true
pages:
  - path: /
  - path: /2
`

func TestLoadDeck_Inline(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pagenav.json", `{"name": "talk", "deck": {"pages": [{"path": "/"}, {"path": "/2"}]}}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	deck, err := LoadDeck(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("LoadDeck() error = %v", err)
	}
	if deck.Title != "talk" || deck.Source != path {
		t.Errorf("deck = %+v", deck)
	}
	if len(deck.Pages) != 2 || len(deck.Pages[0].Targets) != 0 {
		t.Errorf("pages = %+v, want two unlinked pages", deck.Pages)
	}
}

func TestLoadDeck_InlineAutoLink(t *testing.T) {
	cfg := New()
	cfg.Deck.AutoLink = true
	cfg.Deck.Pages = []PageConfig{{Path: "/"}, {Path: "/2"}}

	deck, err := LoadDeck(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if deck.Pages[0].Targets["down"] != "/2" || deck.Pages[1].Targets["up"] != "/" {
		t.Errorf("pages not linked: %+v", deck.Pages)
	}
}

func TestLoadDeck_FileSourceIsRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "decks/talk.yaml", deckYAML)
	path := writeFile(t, dir, "pagenav.yaml", "name: talk\ndeck:\n  source: decks/talk.yaml\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	deck, err := LoadDeck(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("LoadDeck() error = %v", err)
	}
	if deck.Title != "Remote talk" {
		t.Errorf("Title = %q", deck.Title)
	}
	if !strings.HasSuffix(deck.Source, "talk.yaml") {
		t.Errorf("Source = %q", deck.Source)
	}
	if deck.Pages[0].Targets["right"] != "/2" {
		t.Errorf("document autoLink ignored: %+v", deck.Pages[0].Targets)
	}
	if got := SourcePath(cfg); got != deck.Source {
		t.Errorf("SourcePath() = %q, want %q", got, deck.Source)
	}
}

func TestLoadDeck_S3(t *testing.T) {
	api := &fakeS3{objects: map[string]string{"slides/talks/deck.yaml": deckYAML}}
	cfg := New()
	cfg.Deck.Source = "s3://slides/talks/deck.yaml"

	deck, err := LoadDeck(context.Background(), cfg, api)
	if err != nil {
		t.Fatalf("LoadDeck() error = %v", err)
	}
	if api.bucket != "slides" || api.key != "talks/deck.yaml" {
		t.Errorf("GetObject(%q, %q)", api.bucket, api.key)
	}
	if deck.Source != "s3://slides/talks/deck.yaml" || len(deck.Pages) != 2 {
		t.Errorf("deck = %+v", deck)
	}
	if SourcePath(cfg) != "" {
		t.Error("SourcePath() should be empty for s3 sources")
	}
}

func TestLoadDeck_SourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		api    S3GetObjectAPI
		code   string
	}{
		{"missing file", "nope.yaml", nil, "E205"},
		{"unsupported scheme", "https://example.com/deck.yaml", nil, "E206"},
		{"s3 without key", "s3://bucket", &fakeS3{}, "E206"},
		{"s3 without client", "s3://bucket/deck.yaml", nil, "E205"},
		{"s3 failure", "s3://bucket/deck.yaml", &fakeS3{err: errors.New("AccessDenied")}, "E205"},
		{"unknown extension", "s3://bucket/deck.ini", &fakeS3{objects: map[string]string{"bucket/deck.ini": "x"}}, "E104"},
		{"bad document", "s3://bucket/deck.json", &fakeS3{objects: map[string]string{"bucket/deck.json": "{"}}, "E102"},
		{"empty document", "s3://bucket/deck.json", &fakeS3{objects: map[string]string{"bucket/deck.json": `{"pages": []}`}}, "E201"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Deck.Source = tt.source
			_, err := LoadDeck(context.Background(), cfg, tt.api)
			if !pnerrors.HasCode(err, tt.code) {
				t.Fatalf("LoadDeck() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadDeck_ValidationErrorNamesSource(t *testing.T) {
	api := &fakeS3{objects: map[string]string{"b/deck.json": `{"pages": [{"path": "x"}]}`}}
	cfg := New()
	cfg.Deck.Source = "s3://b/deck.json"

	_, err := LoadDeck(context.Background(), cfg, api)
	pe := pnerrors.FromError(err, "")
	if pe.Code != "E203" {
		t.Fatalf("Code = %q, want E203", pe.Code)
	}
	if pe.Location == nil || pe.Location.File != "s3://b/deck.json" {
		t.Errorf("Location = %+v", pe.Location)
	}
}

func TestAttachFile(t *testing.T) {
	pe := pnerrors.New("E203")
	err := attachFile(fmt.Errorf("validate: %w", pe), "deck.yaml")
	if pe.Location == nil || pe.Location.File != "deck.yaml" {
		t.Fatalf("Location = %+v, want deck.yaml for a wrapped error", pe.Location)
	}
	if !errors.Is(err, pe) {
		t.Errorf("attachFile() = %v, want the original chain", err)
	}

	located := pnerrors.New("E203").WithLocation("other.yaml", 3, 1)
	attachFile(located, "deck.yaml")
	if located.Location.File != "other.yaml" {
		t.Errorf("existing location replaced with %q", located.Location.File)
	}

	plain := errors.New("boom")
	if got := attachFile(plain, "deck.yaml"); got != plain {
		t.Errorf("attachFile() on a plain error = %v", got)
	}
}
