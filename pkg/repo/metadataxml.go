package repo

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"pkgcraft/pkg/perr"
)

// Maintainer is one <maintainer> entry from a package's metadata.xml.
type Maintainer struct {
	Email string `xml:"email"`
	Name  string `xml:"name"`
	Type  string `xml:"type,attr"`
}

// PkgMetadataXML is the typed, lazily-loaded model of a package's
// metadata.xml, per SPEC_FULL.md supplement 6.
type PkgMetadataXML struct {
	Maintainers     []Maintainer
	UseDescriptions map[string]string
	Stabilize       bool
}

type pkgMetaXMLDoc struct {
	Maintainers []Maintainer `xml:"maintainer"`
	Stabilize   string       `xml:"stabilize-allarches"`
	Use         struct {
		Flags []struct {
			Name string `xml:"name,attr"`
			Text string `xml:",chardata"`
		} `xml:"flag"`
	} `xml:"use"`
}

// MetadataXML lazily parses and caches cat/pkg/metadata.xml,
// initialize-once per package. A missing file yields a zero-value
// PkgMetadataXML, not an error.
func (r *Repository) MetadataXML(category, pkg string) (*PkgMetadataXML, error) {
	key := category + "/" + pkg

	r.xmlMu.Lock()
	defer r.xmlMu.Unlock()
	if r.xmlCache == nil {
		r.xmlCache = make(map[string]*PkgMetadataXML)
	}
	if x, ok := r.xmlCache[key]; ok {
		return x, nil
	}

	x, err := parseMetadataXML(filepath.Join(r.path, category, pkg, "metadata.xml"))
	if err != nil {
		return nil, err
	}
	r.xmlCache[key] = x
	return x, nil
}

func parseMetadataXML(path string) (*PkgMetadataXML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PkgMetadataXML{UseDescriptions: map[string]string{}}, nil
		}
		return nil, perr.WrapIO(err, "opening %s", path)
	}

	var doc pkgMetaXMLDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, perr.WrapInvalidValue(err, "metadata.xml %q", path)
	}

	uses := make(map[string]string, len(doc.Use.Flags))
	for _, f := range doc.Use.Flags {
		uses[f.Name] = f.Text
	}

	return &PkgMetadataXML{
		Maintainers:     doc.Maintainers,
		UseDescriptions: uses,
		Stabilize:       doc.Stabilize == "true" || doc.Stabilize == "1",
	}, nil
}
