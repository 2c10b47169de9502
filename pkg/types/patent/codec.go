package patent

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxJSONLLine bounds a single chunk record when reading JSON Lines.
const maxJSONLLine = 16 * 1024 * 1024

// EncodeChunk writes c as one JSON Lines record: compact, non-ASCII and HTML
// characters left unescaped, newline terminated.
func EncodeChunk(w io.Writer, c Chunk) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(c)
}

// WriteChunksJSONL writes chunks as JSON Lines.
func WriteChunksJSONL(w io.Writer, chunks []Chunk) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i := range chunks {
		if err := enc.Encode(chunks[i]); err != nil {
			return fmt.Errorf("encode chunk %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadChunksJSONL parses JSON Lines produced by WriteChunksJSONL. Blank lines
// are skipped.
func ReadChunksJSONL(r io.Reader) ([]Chunk, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxJSONLLine)

	chunks := make([]Chunk, 0)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var c Chunk
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		chunks = append(chunks, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// MarshalDocument encodes d as UTF-8 JSON with non-ASCII left unescaped.
// pretty selects 2-space indentation for interactive output; batch output is
// compact. The result has no trailing newline.
func MarshalDocument(d *Document, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalDocument decodes a document produced by MarshalDocument.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

//Personal.AI order the ending
