package email

import (
	"context"
	"embed"
	"fmt"
	"os"
)

//go:embed tmpl/*.html
var templateFS embed.FS

// TemplateSource supplies the raw welcome template. It is called once per request.
type TemplateSource interface {
	Load(ctx context.Context) (string, error)
}

// FileSource reads the template from a path on disk on every call.
type FileSource struct {
	Path string
}

// Load reads the template file.
func (f FileSource) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", f.Path, err)
	}
	return string(data), nil
}

// EmbeddedSource serves the welcome template compiled into the binary.
type EmbeddedSource struct{}

// Load returns the embedded welcome template.
func (EmbeddedSource) Load(ctx context.Context) (string, error) {
	data, err := templateFS.ReadFile("tmpl/welcome.html")
	if err != nil {
		return "", fmt.Errorf("read embedded template: %w", err)
	}
	return string(data), nil
}
