package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlWriter struct{}

func (yamlWriter) Ext() string { return ".yaml" }

func (yamlWriter) Write(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
