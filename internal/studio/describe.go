package studio

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/logoforge-mcp/internal/imaging"
	"github.com/ironsheep/logoforge-mcp/internal/inference"
)

// Description output formats.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// uploadQuality is the JPEG quality of images re-encoded for the model.
const uploadQuality = 90

// DescribeRequest asks for product descriptions of one image.
type DescribeRequest struct {
	// ImageURL is a data URL, bare base64 text or an http(s) URL.
	ImageURL string

	// Model selects an allowed vision model; empty uses the default.
	Model string

	// Languages lists the languages to describe the product in.
	Languages []string

	// Length names one of the configured lengths; empty uses the default.
	Length string

	// Format is FormatText (the default, Markdown as written by the model)
	// or FormatHTML.
	Format string
}

// DescribeResult holds one description per requested language.
type DescribeResult struct {
	Descriptions map[string]string

	// Hint is the label text read from the image and added to the prompt,
	// empty when OCR was not used or found nothing.
	Hint string
}

// Describe asks the vision model for a description in every requested
// language. Requests run in parallel, bounded by the configured concurrency;
// the first failure cancels the rest.
func (s *Service) Describe(ctx context.Context, req DescribeRequest) (*DescribeResult, error) {
	d := s.cfg.Describe

	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return nil, invalidf("image URL is required")
	}

	model := req.Model
	if model == "" {
		model = s.cfg.Models.Vision
	}
	if !contains(s.cfg.Models.AllowedVision, model) {
		return nil, invalidf("model %q is not allowed", model)
	}

	languages, err := s.languages(req.Languages)
	if err != nil {
		return nil, err
	}

	length := strings.ToLower(strings.TrimSpace(req.Length))
	if length == "" {
		length = d.DefaultLength
	}
	instruction, ok := d.Lengths[length]
	if !ok {
		return nil, invalidf("unknown length %q", req.Length)
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	switch format {
	case "", FormatText:
		format = FormatText
	case FormatHTML:
	default:
		return nil, invalidf("unknown format %q", req.Format)
	}

	imageURL, hint, err := s.prepareImage(imageURL)
	if err != nil {
		return nil, err
	}
	if hint != "" {
		instruction += fmt.Sprintf(" The label in the image reads: %q.", hint)
	}

	var mu sync.Mutex
	descriptions := make(map[string]string, len(languages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Concurrency)
	for _, language := range languages {
		g.Go(func() error {
			text, err := s.provider.Describe(gctx, model, inference.ChatRequest{
				Prompt:    fmt.Sprintf("%s Respond in %s.", instruction, language),
				ImageURL:  imageURL,
				MaxTokens: d.MaxTokens,
			})
			if err != nil {
				return errors.Wrapf(err, "unable to describe product in %s", language)
			}
			if format == FormatHTML {
				if text, err = s.renderHTML(text); err != nil {
					return err
				}
			}

			mu.Lock()
			descriptions[language] = text
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DescribeResult{Descriptions: descriptions, Hint: hint}, nil
}

// languages normalizes and checks the requested languages, dropping
// duplicates while keeping the request order.
func (s *Service) languages(requested []string) ([]string, error) {
	d := s.cfg.Describe

	seen := make(map[string]bool, len(requested))
	var out []string
	for _, l := range requested {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		if !contains(d.Languages, l) {
			return nil, invalidf("unsupported language %q", l)
		}
		seen[l] = true
		out = append(out, l)
	}

	if len(out) == 0 {
		return nil, invalidf("at least one language is required")
	}
	if len(out) > d.MaxLanguages {
		return nil, invalidf("at most %d languages may be requested, got %d", d.MaxLanguages, len(out))
	}
	return out, nil
}

// prepareImage downscales inline images for upload and reads their label
// text. Remote URLs are passed to the model unchanged.
func (s *Service) prepareImage(ref string) (string, string, error) {
	if isRemote(ref) {
		return ref, "", nil
	}

	img, _, err := imaging.Decode([]byte(ref), 0)
	if err != nil {
		return "", "", invalidf("unreadable image: %v", err)
	}

	enc, err := imaging.FitForUpload(img, s.cfg.Describe.UploadMaxSide, uploadQuality)
	if err != nil {
		return "", "", errors.Wrap(err, "unable to prepare image")
	}

	var hint string
	if s.hinter != nil && s.cfg.OCR.Enabled {
		// A missing hint only makes the prompt less specific.
		hint, _ = s.hinter.Hint(img)
	}
	return enc.DataURL(), hint, nil
}

func (s *Service) renderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.Wrap(err, "unable to render description")
	}
	return buf.String(), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
