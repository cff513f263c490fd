// Package codec exports a manifest.Batch as a JSON document and imports it
// back through a builder.Builder. Exports can be wrapped in the snappy framing
// format.
package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-graphbuilder/pkg/builder"
	"github.com/dd0wney/cluso-graphbuilder/pkg/manifest"
)

// streamMagic is the stream identifier chunk every snappy framed stream
// starts with.
const streamMagic = "\xff\x06\x00\x00sNaPpY"

// ErrDetachedEndpoint is returned by Encode for a relationship whose
// endpoint is not a node of the batch.
var ErrDetachedEndpoint = errors.New("relationship endpoint is not part of the batch")

// Options controls Encode
type Options struct {
	Compress bool
}

// document is the wire form. Node and relationship entries reuse the
// manifest layout, with the batch id added on top.
type document struct {
	ID string `json:"id"`
	manifest.Manifest
}

// Encode writes batch to w as one JSON document.
func Encode(w io.Writer, batch *manifest.Batch, opts Options) error {
	doc, err := toDocument(batch)
	if err != nil {
		return err
	}

	if !opts.Compress {
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode batch: %w", err)
		}
		return nil
	}

	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(doc); err != nil {
		sw.Close()
		return fmt.Errorf("encode batch: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("flush compressed batch: %w", err)
	}
	return nil
}

func toDocument(batch *manifest.Batch) (*document, error) {
	doc := &document{ID: batch.ID.String()}

	keys := batch.Keys()
	for i, n := range batch.Nodes() {
		doc.Nodes = append(doc.Nodes, manifest.NodeEntry{
			Key:        keys[i],
			Labels:     n.Labels,
			Properties: n.Properties,
		})
	}

	for i, r := range batch.Relationships() {
		key := batch.Key(r.Endpoint)
		if key == "" {
			return nil, fmt.Errorf("relationships[%d]: %w", i, ErrDetachedEndpoint)
		}
		doc.Relationships = append(doc.Relationships, manifest.RelationshipEntry{
			Types:      r.Types,
			Properties: r.Properties,
			Direction:  string(r.Direction),
			Endpoint:   key,
		})
	}

	return doc, nil
}

// Decode reads a document written by Encode, compressed or not, and rebuilds
// every entity through b. The batch id is preserved. Integral JSON numbers
// come back as int64 (uint64 above the int64 range), all other numbers as
// float64.
func Decode(r io.Reader, b *builder.Builder) (*manifest.Batch, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if head, err := br.Peek(len(streamMagic)); err == nil && bytes.Equal(head, []byte(streamMagic)) {
		src = snappy.NewReader(br)
	}

	dec := json.NewDecoder(src)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("decode batch: id: %w", err)
	}

	for i := range doc.Nodes {
		doc.Nodes[i].Properties = normalizeProperties(doc.Nodes[i].Properties)
	}
	for i := range doc.Relationships {
		doc.Relationships[i].Properties = normalizeProperties(doc.Relationships[i].Properties)
	}

	batch, err := doc.Manifest.Build(b)
	if err != nil {
		return nil, fmt.Errorf("rebuild batch %s: %w", id, err)
	}
	batch.ID = id
	return batch, nil
}

func normalizeProperties(props map[string]any) map[string]any {
	for k, v := range props {
		props[k] = normalizeNumber(v)
	}
	return props
}

func normalizeNumber(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalizeNumber(x[i])
		}
		return x
	default:
		return v
	}
}
