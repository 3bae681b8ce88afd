package pmml

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/ajitpratap0/pmmlconv/pkg/pool"
)

// Encode writes doc to w as an indented XML document with declaration
func Encode(w io.Writer, doc *PMML) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded document
func Marshal(doc *PMML) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)
	if err := Encode(buf, doc); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// New creates an empty document root for the supported version
func New() *PMML {
	return &PMML{
		Xmlns:   Namespace,
		Version: Version,
	}
}
