package dataset

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Artifact formats
const (
	FormatJSON    = "json"
	FormatHandler = "handler"
)

// Codec converts a dataset to and from its on-disk representation
type Codec interface {
	Encode(d *Dataset) ([]byte, error)
	Decode(data []byte) (*Dataset, error)
	ContentType() string
}

// NewCodec returns the codec for the given artifact format
func NewCodec(format string) (Codec, error) {
	switch format {
	case FormatJSON, "":
		return JSONCodec{}, nil
	case FormatHandler:
		return HandlerCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown artifact format %q", format)
	}
}

// JSONCodec stores the dataset as an indented JSON document
type JSONCodec struct{}

func (JSONCodec) Encode(d *Dataset) ([]byte, error) {
	data, err := json.MarshalIndentWithOption(d, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (JSONCodec) Decode(data []byte) (*Dataset, error) {
	return decodeJSON(bytes.TrimPrefix(data, utf8BOM))
}

func (JSONCodec) ContentType() string { return "application/json" }

// HandlerCodec wraps the JSON document in the event handler template that the
// original site loads as a server route.
type HandlerCodec struct{}

var utf8BOM = []byte("\xef\xbb\xbf")

const (
	handlerOpen  = "export default defineEventHandler(() => {\n  return "
	handlerClose = ";\n});\n"
)

func (HandlerCodec) Encode(d *Dataset) ([]byte, error) {
	data, err := json.MarshalIndentWithOption(d, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("// server/api/student-representatives-data.ts\n")
	buf.WriteString("// Auto-generated file - Do not edit manually\n")
	fmt.Fprintf(&buf, "// Last updated: %s\n\n", d.LastUpdated)
	buf.WriteString(handlerOpen)
	buf.Write(data)
	buf.WriteString(handlerClose)
	return buf.Bytes(), nil
}

func (HandlerCodec) Decode(data []byte) (*Dataset, error) {
	content := string(data)
	start := strings.Index(content, handlerOpen)
	if start < 0 {
		return nil, fmt.Errorf("%w: handler template not found", ErrCorrupt)
	}
	body := content[start+len(handlerOpen):]
	end := strings.LastIndex(body, strings.TrimSuffix(handlerClose, "\n"))
	if end < 0 {
		return nil, fmt.Errorf("%w: handler template not closed", ErrCorrupt)
	}
	return decodeJSON([]byte(body[:end]))
}

func (HandlerCodec) ContentType() string { return "text/typescript" }

func decodeJSON(data []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	d.Normalize()
	return &d, nil
}
