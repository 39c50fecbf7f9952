package pkgconfig

import (
	"bufio"
	"net/url"
	"os"
	"strconv"
	"strings"

	"pkgcraft/pkg/perr"
)

// Format names a repo-config file's declared "format" value, per spec.md
// §6's recognized repo-config keys.
type Format string

const (
	FormatEbuild     Format = "ebuild"
	FormatFake       Format = "fake"
	FormatConfigured Format = "configured"
	FormatEmpty      Format = "empty"
)

func parseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatEbuild, FormatFake, FormatConfigured, FormatEmpty:
		return Format(s), nil
	default:
		return "", perr.NewConfig("unrecognized format %q", s)
	}
}

// repoConfig is one parsed repo-config record: location (required),
// format (default ebuild), priority (default 0), and an optional syncer
// URI, per spec.md §6's ini-ish "key = value" repo-config file format.
type repoConfig struct {
	Location string
	Format   Format
	Priority int
	Sync     *url.URL
}

// parseRepoConfigFile reads one repo-config file's "key = value" lines
// (comments and blank lines ignored, matching the same style used for
// metadata/layout.conf). Unrecognized keys are rejected -- this is a
// consumed external file format, not one this package may silently extend.
func parseRepoConfigFile(path string) (repoConfig, error) {
	rc := repoConfig{Format: FormatEbuild}

	f, err := os.Open(path)
	if err != nil {
		return rc, perr.WrapConfig(err, "opening repo config %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			return rc, perr.NewConfig("repo config %s: malformed line %q", path, line)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "location":
			rc.Location = val
		case "format":
			f, err := parseFormat(val)
			if err != nil {
				return rc, perr.WrapConfig(err, "repo config %s", path)
			}
			rc.Format = f
		case "priority":
			p, err := strconv.Atoi(val)
			if err != nil {
				return rc, perr.NewConfig("repo config %s: invalid priority %q", path, val)
			}
			rc.Priority = p
		case "sync":
			u, err := url.Parse(val)
			if err != nil {
				return rc, perr.WrapConfig(err, "repo config %s: invalid sync URI %q", path, val)
			}
			rc.Sync = u
		default:
			return rc, perr.NewConfig("repo config %s: unrecognized key %q", path, key)
		}
	}
	if err := sc.Err(); err != nil {
		return rc, perr.WrapConfig(err, "reading repo config %s", path)
	}

	if rc.Location == "" {
		return rc, perr.NewConfig("repo config %s: missing required key \"location\"", path)
	}
	return rc, nil
}

// writeRepoConfigFile renders rc back into the "key = value" format and
// writes it to path, for repos added by Config.AddPath/AddURI.
func writeRepoConfigFile(path string, rc repoConfig) error {
	var b strings.Builder
	b.WriteString("location = ")
	b.WriteString(rc.Location)
	b.WriteByte('\n')
	b.WriteString("format = ")
	b.WriteString(string(rc.Format))
	b.WriteByte('\n')
	b.WriteString("priority = ")
	b.WriteString(strconv.Itoa(rc.Priority))
	b.WriteByte('\n')
	if rc.Sync != nil {
		b.WriteString("sync = ")
		b.WriteString(rc.Sync.String())
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return perr.WrapConfig(err, "writing repo config %s", path)
	}
	return nil
}
