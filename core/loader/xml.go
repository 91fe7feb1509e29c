package loader

import (
	"compress/bzip2"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/benchtable/schema"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/htmlindex"
)

// openInput opens a file for reading and transparently decompresses
// .gz, .bz2 and .zst files.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zstdCloser{zr}, f}}, nil
	case strings.HasSuffix(path, ".bz2"):
		return &stackedReader{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// stackedReader closes every layer of a decompression stack.
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

// parseXMLFile parses a whole XML document into an element tree.
func parseXMLFile(path string) (*schema.Element, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return parseXML(r)
}

// charsetReader decodes documents that declare an encoding other than UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// parseXML reads the document element from r. Comments, processing
// instructions and the text between child elements are dropped.
func parseXML(r io.Reader) (*schema.Element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charsetReader

	type frame struct {
		name     string
		attrs    []schema.Attribute
		text     strings.Builder
		children []*schema.Element
	}
	var stack []*frame
	var root *schema.Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, fmt.Errorf("unexpected element <%s> after document end", t.Name.Local)
			}
			f := &frame{name: t.Name.Local}
			for _, a := range t.Attr {
				f.attrs = append(f.attrs, schema.Attribute{Name: a.Name.Local, Value: a.Value})
			}
			stack = append(stack, f)
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if len(top.children) == 0 {
					top.text.Write(t)
				}
			}
		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			elem := schema.NewElement(top.name, top.attrs, top.text.String(), top.children...)
			if len(stack) == 0 {
				root = elem
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, elem)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no root element found")
	}
	return root, nil
}
