package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"pkgcraft/pkg/perr"
)

// Encode renders m back into the "KEY=value" cache entry format of
// spec.md §4.G, using eclassChecksums for the "_eclasses_" line.
func Encode(m *Metadata, eclassChecksums map[string]string) string {
	var b strings.Builder
	writeKV := func(key, val string) {
		if val == "" {
			return
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(val)
		b.WriteByte('\n')
	}

	writeKV("EAPI", m.EAPI.Name())
	writeKV("DESCRIPTION", m.Description)
	writeKV("SLOT", m.Slot.String())
	writeKV("HOMEPAGE", strings.Join(m.Homepage, " "))
	writeKV("IUSE", joinIUSE(m.IUSE))
	writeKV("KEYWORDS", strings.Join(m.Keywords, " "))
	writeKV("LICENSE", m.License.String())
	writeKV("PROPERTIES", m.Properties.String())
	writeKV("REQUIRED_USE", m.RequiredUse.String())
	writeKV("RESTRICT", m.Restrict.String())
	writeKV("BDEPEND", m.BDepend.String())
	writeKV("DEPEND", m.Depend.String())
	writeKV("IDEPEND", m.IDepend.String())
	writeKV("PDEPEND", m.PDepend.String())
	writeKV("RDEPEND", m.RDepend.String())
	writeKV("SRC_URI", m.SrcURI.String())

	if len(m.DefinedPhases) == 0 {
		b.WriteString("DEFINED_PHASES=-\n")
	} else {
		writeKV("DEFINED_PHASES", strings.Join(m.DefinedPhases, " "))
	}

	writeKV("INHERIT", strings.Join(m.Inherit, " "))
	writeKV("INHERITED", strings.Join(m.Inherited, " "))
	writeKV("_eclasses_", encodeEclassesField(eclassChecksums))
	writeKV("_md5_", m.Checksum)

	return b.String()
}

func joinIUSE(flags []IUSEFlag) string {
	toks := make([]string, len(flags))
	for i, f := range flags {
		switch {
		case !f.HasSign:
			toks[i] = f.Name
		case f.Default:
			toks[i] = "+" + f.Name
		default:
			toks[i] = "-" + f.Name
		}
	}
	return strings.Join(toks, " ")
}

// WriteAtomic writes m's encoded cache entry to path: a sibling
// dot-prefixed temp file in the same directory, written and fsynced, then
// renamed over path. Parent directories are created as needed, per
// spec.md §4.G.
func WriteAtomic(path string, m *Metadata, eclassChecksums map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.WrapIO(err, "creating cache dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return perr.WrapIO(err, "creating temp cache entry in %s", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(Encode(m, eclassChecksums)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return perr.WrapIO(err, "writing temp cache entry %s", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return perr.WrapIO(err, "syncing temp cache entry %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return perr.WrapIO(err, "closing temp cache entry %s", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return perr.WrapIO(err, "renaming %s to %s", tmpPath, path)
	}
	return nil
}
