package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

const (
	// AttachmentsDir is the reserved folder name holding a design
	// document's binary resources.
	AttachmentsDir = "_attachments"

	// DesignRootName is the conventional folder containing one
	// subdirectory per design document.
	DesignRootName = "_design"
)

// AttachmentBuilder produces the inline attachment set for a
// document's attachments folder. Implemented by internal/attachments.
type AttachmentBuilder interface {
	Build(dir string) domain.AttachmentSet
}

// Builder assembles documents from a directory tree. Failures anywhere
// in a subtree are recorded and replaced with safe placeholders so
// sibling subtrees still complete.
type Builder struct {
	classifier  *Classifier
	attachments AttachmentBuilder
	reporter    *domain.Reporter
}

// NewBuilder creates a tree builder.
func NewBuilder(classifier *Classifier, attachments AttachmentBuilder, reporter *domain.Reporter) *Builder {
	return &Builder{classifier: classifier, attachments: attachments, reporter: reporter}
}

// BuildDesignDocs assembles one design document per immediate
// subdirectory of the design root, identifiers already resolved.
func (b *Builder) BuildDesignDocs(ctx context.Context, designRoot string) []domain.Document {
	entries, err := os.ReadDir(designRoot)
	if err != nil {
		b.reporter.Errorf(domain.KindIO, designRoot, "read design root: %v", err)
		return nil
	}

	var docs []domain.Document
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		logger.Debug("assembling design document %s", e.Name())
		doc := domain.Document{
			Fields: b.buildDir(ctx, filepath.Join(designRoot, e.Name()), true),
		}
		ResolveDesignID(&doc, e.Name())
		docs = append(docs, doc)
	}
	return docs
}

// buildDir assembles one directory level. The attachments folder is
// only special at the top level of a document; nested folders of the
// same name become plain objects.
func (b *Builder) buildDir(ctx context.Context, dir string, top bool) map[string]domain.Value {
	fields := make(map[string]domain.Value)

	entries, err := os.ReadDir(dir)
	if err != nil {
		b.reporter.Errorf(domain.KindIO, dir, "read directory: %v", err)
		return fields
	}

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if e.IsDir() {
			if top && name == AttachmentsDir {
				fields[AttachmentsDir] = domain.Attachments(b.attachments.Build(path))
				continue
			}
			fields[name] = domain.Object(b.buildDir(ctx, path, false))
			continue
		}

		// Colliding base names with different extensions overwrite
		// silently; last processed wins.
		fields[fileKey(name)] = b.classifier.Classify(ctx, path)
	}
	return fields
}

// BuildLooseDocs scans for structured-data files outside the design
// root. Top-level arrays explode into one document per element.
func (b *Builder) BuildLooseDocs(ctx context.Context, root, designRoot string) []domain.Document {
	var docs []domain.Document
	b.scanLoose(ctx, root, designRoot, &docs)
	return docs
}

func (b *Builder) scanLoose(ctx context.Context, dir, designRoot string, out *[]domain.Document) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.reporter.Errorf(domain.KindIO, dir, "read directory: %v", err)
		return
	}

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if e.IsDir() {
			if path == designRoot || name == AttachmentsDir || strings.HasSuffix(name, AttachmentsDir) {
				continue
			}
			b.scanLoose(ctx, path, designRoot, out)
			continue
		}

		if strings.ToLower(filepath.Ext(name)) != ".json" {
			continue
		}
		b.looseFromFile(path, out)
	}
}

// looseFromFile parses one loose JSON file into documents.
func (b *Builder) looseFromFile(path string, out *[]domain.Document) {
	data, err := os.ReadFile(path)
	if err != nil {
		b.reporter.Errorf(domain.KindIO, path, "read file: %v", err)
		return
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		line, col := positionOf(data, offsetOf(err))
		b.reporter.ErrorAt(domain.KindParse, path, line, col, "%v", err)
		return
	}

	base := fileKey(filepath.Base(path))

	switch val := v.(type) {
	case map[string]any:
		doc := looseDoc(val)
		if ResolveLooseID(&doc, base, path, false, b.reporter) {
			*out = append(*out, doc)
		}
	case []any:
		for i, el := range val {
			origin := fmt.Sprintf("%s[%d]", path, i)
			obj, ok := el.(map[string]any)
			if !ok {
				b.reporter.Errorf(domain.KindShape, origin, "document must be an object")
				continue
			}
			doc := looseDoc(obj)
			if ResolveLooseID(&doc, base, origin, true, b.reporter) {
				*out = append(*out, doc)
			}
		}
	default:
		b.reporter.Errorf(domain.KindShape, path, "document must be an object")
	}
}

// looseDoc wraps a parsed JSON object as a document body.
func looseDoc(obj map[string]any) domain.Document {
	fields := make(map[string]domain.Value, len(obj))
	for k, v := range obj {
		fields[k] = domain.Parsed(v)
	}
	return domain.Document{Fields: fields}
}

// fileKey derives the document key for a file: the name without its
// extension, with any link suffix stripped first.
func fileKey(name string) string {
	if IsLink(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
