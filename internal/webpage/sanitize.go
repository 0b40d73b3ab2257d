package webpage

import (
	"net/url"
	"path/filepath"
	"strings"
)

// ArtifactExt is the extension of saved page artifacts.
const ArtifactExt = ".txt"

// ArtifactName derives a filesystem-safe artifact name from a URL: the host
// followed by the path with separators replaced by underscores, plus the
// artifact extension. Distinct URLs can sanitize to the same name (a path
// segment containing an underscore is indistinguishable from a separator);
// that collision is a known limitation and the last write wins.
func ArtifactName(u *url.URL) string {
	p := strings.ReplaceAll(u.Path, "/", "_")
	p = strings.ReplaceAll(p, "\\", "_")
	return u.Host + p + ArtifactExt
}

// SourceURL is the best-effort inverse of ArtifactName: underscores become
// path separators, the extension is stripped, and the https scheme is
// prepended. Because sanitization is lossy the result is not guaranteed to
// be the exact original URL.
func SourceURL(artifact string) string {
	name := strings.TrimSuffix(filepath.Base(artifact), ArtifactExt)
	return "https://" + strings.ReplaceAll(name, "_", "/")
}
