// Package format renders structured agent answers as markdown.
package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
)

type section struct {
	key     string
	heading string
}

// sections are rendered in this order.
var sections = []section{
	{"summary", "Summary"},
	{"key_findings", "Key Findings"},
	{"risks", "Risks & Considerations"},
	{"assumptions", "Assumptions"},
}

// Formatter converts a JSON answer into labeled markdown sections.
type Formatter struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Formatter {
	return &Formatter{logger: logging.OrNop(logger).Named("formatter")}
}

// Format renders answer. Anything that is not a JSON object with at least
// one known key is returned unchanged.
func (f *Formatter) Format(answer string) string {
	var data map[string]any
	dec := json.NewDecoder(strings.NewReader(answer))
	dec.UseNumber()
	if err := decodeObject(dec, &data); err != nil {
		f.logger.Warn("failed to parse answer as JSON, returning raw text", zap.Error(err))
		return answer
	}

	var blocks []string
	for _, s := range sections {
		v, ok := data[s.key]
		if !ok || v == nil {
			continue
		}
		blocks = append(blocks, "### "+s.heading+"\n"+renderValue(v))
	}
	if len(blocks) == 0 {
		f.logger.Warn("answer JSON has no known sections, returning raw text")
		return answer
	}
	return strings.TrimRight(strings.Join(blocks, "\n\n"), " \t\r\n")
}

// decodeObject decodes exactly one JSON value from dec into dst.
func decodeObject(dec *json.Decoder, dst *map[string]any) error {
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func renderValue(v any) string {
	switch val := v.(type) {
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, "- "+renderScalar(item))
		}
		return strings.Join(lines, "\n")
	default:
		return renderScalar(val)
	}
}

func renderScalar(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	case json.Number:
		return val.String()
	case bool:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
