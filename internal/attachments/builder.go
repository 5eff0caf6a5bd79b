package attachments

import (
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/couchpush-cli/internal/assembler"
	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

// Ensure Builder implements the assembler's port.
var _ assembler.AttachmentBuilder = (*Builder)(nil)

// Builder collects every regular file under an attachments folder,
// including all nested subdirectories. Per-file failures are recorded
// against the attachments directory and siblings keep building.
type Builder struct {
	reporter *domain.Reporter
}

// NewBuilder creates an attachment builder.
func NewBuilder(reporter *domain.Reporter) *Builder {
	return &Builder{reporter: reporter}
}

// Build walks root and returns the (possibly partial) attachment set.
func (b *Builder) Build(root string) domain.AttachmentSet {
	set := make(domain.AttachmentSet)

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			b.reporter.Errorf(domain.KindIO, root, "walk %s: %v", p, err)
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			b.reporter.Errorf(domain.KindIO, root, "relativize %s: %v", p, err)
			return nil
		}

		resolved, err := assembler.ResolveLink(p)
		if err != nil {
			b.reporter.Errorf(domain.KindLink, root, "%v", err)
			return nil
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			b.reporter.Errorf(domain.KindIO, root, "read %s: %v", resolved, err)
			return nil
		}

		key := attachmentKey(rel)
		logger.Debug("attachment %s (%d bytes)", key, len(data))
		set[key] = domain.Attachment{
			ContentType: contentType(resolved, data),
			Data:        data,
		}
		return nil
	})
	if walkErr != nil {
		b.reporter.Errorf(domain.KindIO, root, "walk attachments: %v", walkErr)
	}

	return set
}

// attachmentKey normalises a relative path into the attachment map
// key: forward slashes, link suffix stripped, percent-decoded.
func attachmentKey(rel string) string {
	key := filepath.ToSlash(rel)
	if assembler.IsLink(key) {
		key = strings.TrimSuffix(key, path.Ext(key))
	}
	if decoded, err := url.PathUnescape(key); err == nil {
		key = decoded
	}
	return key
}
