package printing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/papermill/portal/internal/domain/printing"
)

// ManifestFile is read from the external template directory when present
const ManifestFile = "manifest.yaml"

// TemplateStore holds the print templates. Embedded templates are always
// available; an external directory may override their HTML by file name,
// and its manifest may add templates or rename and re-flag existing ones.
type TemplateStore struct {
	externalDir string
	templates   []StaticTemplate
	mu          sync.RWMutex
}

// StaticTemplate is a loaded print template
type StaticTemplate struct {
	ID          string               `json:"id"` // stable, derived from the file name
	DocType     printing.DocType     `json:"doc_type"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	PaperSize   printing.PaperSize   `json:"paper_size"`
	Orientation printing.Orientation `json:"orientation"`
	Margins     printing.Margins     `json:"margins"`
	Content     string               `json:"-"`
	IsDefault   bool                 `json:"is_default"`
	Source      string               `json:"source"` // embedded or external
	file        string
}

// TemplateStoreConfig configures the template store
type TemplateStoreConfig struct {
	// ExternalDir is the directory to load overrides from. Empty or missing
	// means embedded templates only.
	ExternalDir string
}

// Manifest lists templates in the external directory
type Manifest struct {
	Templates []ManifestEntry `yaml:"templates"`
}

// ManifestEntry describes one template file. Entries naming an embedded
// file adjust that template; other entries add a new one.
type ManifestEntry struct {
	File        string               `yaml:"file"`
	DocType     printing.DocType     `yaml:"doc_type"`
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	PaperSize   printing.PaperSize   `yaml:"paper_size"`
	Orientation printing.Orientation `yaml:"orientation"`
	Margins     *printing.Margins    `yaml:"margins"`
	Default     *bool                `yaml:"default"`
}

// NewTemplateStore creates a template store and loads all templates
func NewTemplateStore(config *TemplateStoreConfig) (*TemplateStore, error) {
	store := &TemplateStore{}
	if config != nil {
		store.externalDir = config.ExternalDir
	}
	if err := store.loadTemplates(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *TemplateStore) loadTemplates() error {
	defaults := GetDefaultTemplates()
	templates := make([]StaticTemplate, 0, len(defaults))

	for _, dt := range defaults {
		file := filepath.Base(dt.FilePath)
		content, source, err := s.loadTemplateContent(dt.FilePath)
		if err != nil {
			return fmt.Errorf("failed to load template %s: %w", dt.Name, err)
		}
		templates = append(templates, StaticTemplate{
			ID:          generateTemplateID(dt.DocType, file),
			DocType:     dt.DocType,
			Name:        dt.Name,
			Description: dt.Description,
			PaperSize:   dt.PaperSize,
			Orientation: dt.Orientation,
			Margins:     dt.Margins,
			Content:     content,
			IsDefault:   dt.IsDefault,
			Source:      source,
			file:        file,
		})
	}

	manifest, err := s.readManifest()
	if err != nil {
		return err
	}
	if manifest != nil {
		if templates, err = s.applyManifest(templates, manifest); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.templates = templates
	s.mu.Unlock()
	return nil
}

// loadTemplateContent prefers a same-named file in the external directory
func (s *TemplateStore) loadTemplateContent(embeddedPath string) (string, string, error) {
	if s.externalDir != "" {
		externalPath := filepath.Join(s.externalDir, filepath.Base(embeddedPath))
		if content, err := os.ReadFile(externalPath); err == nil {
			return string(content), "external", nil
		}
	}
	content, err := LoadTemplateContent(embeddedPath)
	return content, "embedded", err
}

func (s *TemplateStore) readManifest() (*Manifest, error) {
	if s.externalDir == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(filepath.Join(s.externalDir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse template manifest: %w", err)
	}
	return &m, nil
}

func (s *TemplateStore) applyManifest(templates []StaticTemplate, m *Manifest) ([]StaticTemplate, error) {
	for i, entry := range m.Templates {
		file := filepath.Base(strings.TrimSpace(entry.File))
		if file == "" || file == "." {
			return nil, fmt.Errorf("template manifest entry %d: file is required", i+1)
		}

		idx := -1
		for j := range templates {
			if templates[j].file == file && (entry.DocType == "" || templates[j].DocType == entry.DocType) {
				idx = j
				break
			}
		}

		if idx < 0 {
			t, err := s.newExternalTemplate(file, entry)
			if err != nil {
				return nil, fmt.Errorf("template manifest entry %d: %w", i+1, err)
			}
			templates = append(templates, t)
			idx = len(templates) - 1
		} else {
			applyEntry(&templates[idx], entry)
		}

		if templates[idx].IsDefault {
			for j := range templates {
				if j != idx && templates[j].DocType == templates[idx].DocType {
					templates[j].IsDefault = false
				}
			}
		}
	}
	return templates, nil
}

func (s *TemplateStore) newExternalTemplate(file string, entry ManifestEntry) (StaticTemplate, error) {
	if !entry.DocType.IsValid() {
		return StaticTemplate{}, fmt.Errorf("unknown doc_type %q", entry.DocType)
	}
	content, err := os.ReadFile(filepath.Join(s.externalDir, file))
	if err != nil {
		return StaticTemplate{}, fmt.Errorf("failed to read %s: %w", file, err)
	}
	t := StaticTemplate{
		ID:          generateTemplateID(entry.DocType, file),
		DocType:     entry.DocType,
		Name:        strings.TrimSuffix(file, filepath.Ext(file)),
		PaperSize:   printing.PaperSizeA4,
		Orientation: printing.OrientationPortrait,
		Margins:     printing.DefaultMargins(),
		Content:     string(content),
		Source:      "external",
		file:        file,
	}
	applyEntry(&t, entry)
	if !t.PaperSize.IsValid() {
		return StaticTemplate{}, fmt.Errorf("unknown paper_size %q", t.PaperSize)
	}
	if !t.Orientation.IsValid() {
		return StaticTemplate{}, fmt.Errorf("unknown orientation %q", t.Orientation)
	}
	return t, nil
}

func applyEntry(t *StaticTemplate, e ManifestEntry) {
	if e.Name != "" {
		t.Name = e.Name
	}
	if e.Description != "" {
		t.Description = e.Description
	}
	if e.PaperSize.IsValid() {
		t.PaperSize = e.PaperSize
	}
	if e.Orientation.IsValid() {
		t.Orientation = e.Orientation
	}
	if e.Margins != nil {
		t.Margins = *e.Margins
	}
	if e.Default != nil {
		t.IsDefault = *e.Default
	}
}

// GetByID returns a template by its ID
func (s *TemplateStore) GetByID(id string) *StaticTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.templates {
		if s.templates[i].ID == id {
			t := s.templates[i]
			return &t
		}
	}
	return nil
}

// GetByDocType returns all templates for a document type
func (s *TemplateStore) GetByDocType(docType printing.DocType) []StaticTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []StaticTemplate
	for _, t := range s.templates {
		if t.DocType == docType {
			result = append(result, t)
		}
	}
	return result
}

// GetDefault returns the default template for a document type, or the
// first template of that type when none is flagged
func (s *TemplateStore) GetDefault(docType printing.DocType) *StaticTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *StaticTemplate
	for i := range s.templates {
		if s.templates[i].DocType != docType {
			continue
		}
		if s.templates[i].IsDefault {
			t := s.templates[i]
			return &t
		}
		if first == nil {
			t := s.templates[i]
			first = &t
		}
	}
	return first
}

// Resolve returns the template with id when given, else the default. A
// template of another document type is rejected.
func (s *TemplateStore) Resolve(docType printing.DocType, id string) (*StaticTemplate, error) {
	if id == "" {
		if t := s.GetDefault(docType); t != nil {
			return t, nil
		}
		return nil, NewRenderError(ErrCodeTemplateNotFound, "no template for document type "+docType.String(), nil)
	}
	t := s.GetByID(id)
	if t == nil || t.DocType != docType {
		return nil, NewRenderError(ErrCodeTemplateNotFound, "template "+id+" not found for "+docType.String(), nil)
	}
	return t, nil
}

// GetAll returns all templates
func (s *TemplateStore) GetAll() []StaticTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]StaticTemplate, len(s.templates))
	copy(result, s.templates)
	return result
}

// Reload reloads templates from disk and the embedded set. On error the
// previously loaded templates stay in place.
func (s *TemplateStore) Reload() error {
	return s.loadTemplates()
}

// generateTemplateID derives a stable UUID v5 from doc type and file name
func generateTemplateID(docType printing.DocType, file string) string {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	name := fmt.Sprintf("print-template:%s:%s", docType, file)
	return uuid.NewSHA1(namespace, []byte(name)).String()
}
