package scoring

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/jobfit-analyzer/internal/types"
	"golang.org/x/sync/errgroup"
)

var dataURIPattern = regexp.MustCompile(`^data:(image/[a-z]+);base64,(.+)$`)

// ParseDataURI decodes an inline image of the form data:image/<type>;base64,<payload>.
// It reports false for anything else, including payloads that are not valid base64.
func ParseDataURI(uri string) (types.Attachment, bool) {
	match := dataURIPattern.FindStringSubmatch(uri)
	if match == nil {
		return types.Attachment{}, false
	}
	data, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return types.Attachment{}, false
	}
	return types.Attachment{MIMEType: match[1], Data: data}, true
}

// ParseDataURIs decodes every valid data URI in uris, skipping the rest.
func ParseDataURIs(uris []string) []types.Attachment {
	attachments := make([]types.Attachment, 0, len(uris))
	for _, uri := range uris {
		if a, ok := ParseDataURI(uri); ok {
			attachments = append(attachments, a)
		}
	}
	return attachments
}

// LoadImages reads image files concurrently, keeping the order of paths.
// Files whose content is not recognised as an image are rejected.
func LoadImages(ctx context.Context, paths []string) ([]types.Attachment, error) {
	attachments := make([]types.Attachment, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read image %s: %w", path, err)
			}
			mimeType := http.DetectContentType(data)
			if !strings.HasPrefix(mimeType, "image/") {
				return fmt.Errorf("file %s is not an image (detected %s)", path, mimeType)
			}
			attachments[i] = types.Attachment{MIMEType: mimeType, Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return attachments, nil
}
