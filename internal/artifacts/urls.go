package artifacts

import "strings"

// URLBuilder renders the per-platform download URL templates. Templates
// use {version} and {sha} placeholders; the build directory convention of
// the artifact host is "<version>-<sha>".
type URLBuilder struct {
	templates map[Platform]string
}

// Archive link names per platform. The artifact host publishes exactly
// one archive format per platform.
var archiveNames = map[Platform]string{
	PlatformWindows: "zip",
	PlatformLinux:   "tar_xz",
}

func NewURLBuilder(windowsTemplate, linuxTemplate string) *URLBuilder {
	return &URLBuilder{
		templates: map[Platform]string{
			PlatformWindows: windowsTemplate,
			PlatformLinux:   linuxTemplate,
		},
	}
}

// Build returns the named download links for one version on one platform.
// Deterministic: same inputs always produce the same map.
func (b *URLBuilder) Build(platform Platform, version, sha string) map[string]string {
	tmpl := b.templates[platform]
	archive := strings.NewReplacer("{version}", version, "{sha}", sha).Replace(tmpl)

	urls := map[string]string{
		archiveNames[platform]: archive,
	}
	if idx := strings.LastIndexByte(archive, '/'); idx > 0 {
		urls["page"] = archive[:idx+1]
	}
	return urls
}
