package config

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/pagenav/internal/errors"
)

// maxDeckSize bounds the size of a fetched deck document.
const maxDeckSize = 4 << 20

// S3GetObjectAPI is the subset of the S3 client used to fetch decks.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client creates an S3 client from the default AWS configuration chain.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.New("E205").
			WithDetail("AWS configuration could not be loaded").
			Wrap(err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Deck is a resolved, validated deck.
type Deck struct {
	Title string
	Pages []PageConfig

	// Source is where the pages came from: the config file, a deck file
	// path or an s3:// URL.
	Source string
}

// LoadDeck resolves the pages of cfg. Inline pages are used when
// deck.source is empty; otherwise the source is fetched and decoded by its
// extension. api may be nil unless the source is on S3.
func LoadDeck(ctx context.Context, cfg *Config, api S3GetObjectAPI) (*Deck, error) {
	deck := &Deck{
		Title:  cfg.Deck.Title,
		Pages:  cfg.Deck.Pages,
		Source: cfg.Path(),
	}
	autoLink := cfg.Deck.AutoLink

	if cfg.Deck.Source != "" {
		name, data, err := fetchSource(ctx, cfg.Deck.Source, cfg.Dir(), api)
		if err != nil {
			return nil, err
		}
		var doc DeckDocument
		if err := decode(name, data, &doc); err != nil {
			return nil, err
		}
		if doc.Title != "" {
			deck.Title = doc.Title
		}
		if doc.AutoLink != nil {
			autoLink = *doc.AutoLink
		}
		deck.Pages = doc.Pages
		deck.Source = name
	}

	if err := ValidatePages(deck.Pages); err != nil {
		return nil, attachFile(err, deck.Source)
	}
	if autoLink {
		deck.Pages = LinkPages(deck.Pages)
	}
	return deck, nil
}

// fetchSource returns the name used for format detection and the raw bytes.
func fetchSource(ctx context.Context, source, baseDir string, api S3GetObjectAPI) (string, []byte, error) {
	u, err := url.Parse(source)
	if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		switch u.Scheme {
		case "s3":
			return fetchS3(ctx, u, api)
		case "file":
			return fetchFile(u.Path, "")
		default:
			return "", nil, errors.New("E206").
				WithDetail("deck.source " + source + " uses scheme " + u.Scheme).
				WithSuggestion("Use a file path or an s3://bucket/key URL")
		}
	}
	return fetchFile(source, baseDir)
}

func fetchFile(path, baseDir string) (string, []byte, error) {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.New("E205").
			WithFile(path).
			Wrap(err)
	}
	return path, data, nil
}

func fetchS3(ctx context.Context, u *url.URL, api S3GetObjectAPI) (string, []byte, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", nil, errors.New("E206").
			WithDetail(u.String() + " must name a bucket and a key").
			WithExample("deck:\n  source: s3://my-bucket/decks/talk.yaml")
	}
	if api == nil {
		return "", nil, errors.New("E205").
			WithDetail("no S3 client available for " + u.String())
	}

	out, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", nil, errors.New("E205").
			WithDetail("GetObject " + u.String()).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxDeckSize+1))
	if err != nil {
		return "", nil, errors.New("E205").
			WithDetail("reading " + u.String()).
			Wrap(err)
	}
	if len(data) > maxDeckSize {
		return "", nil, errors.New("E205").
			WithDetail(u.String() + " is larger than 4 MiB")
	}
	return u.String(), data, nil
}

// attachFile sets file as the location of the PagenavError in err's chain
// when it has none.
func attachFile(err error, file string) error {
	var pe *errors.PagenavError
	if file != "" && stderrors.As(err, &pe) && pe.Location == nil {
		pe.WithFile(file)
	}
	return err
}

// IsRemoteSource reports whether source is fetched over the network.
func IsRemoteSource(source string) bool {
	return strings.HasPrefix(source, "s3://")
}

// SourcePath returns the local file a deck source refers to, or "" for
// remote sources.
func SourcePath(cfg *Config) string {
	src := cfg.Deck.Source
	if src == "" || IsRemoteSource(src) {
		return ""
	}
	src = strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(src) && cfg.Dir() != "" {
		src = filepath.Join(cfg.Dir(), src)
	}
	return src
}
