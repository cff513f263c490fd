package manifest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
	"github.com/dd0wney/cluso-graphbuilder/pkg/validation"
)

// Batch is a set of built entities ready to be handed to a persistence
// layer. Relationship endpoints always point at nodes of the same batch.
type Batch struct {
	ID uuid.UUID

	nodes         []*entity.Node
	keys          []string
	byKey         map[string]*entity.Node
	keyOf         map[*entity.Node]string
	relationships []*entity.RelationshipCandidate
}

func newBatch() *Batch {
	return &Batch{
		ID:    uuid.New(),
		byKey: make(map[string]*entity.Node),
		keyOf: make(map[*entity.Node]string),
	}
}

// NewBatch assembles a batch from already built entities. keys[i] names
// nodes[i]; every relationship endpoint must be one of nodes.
func NewBatch(id uuid.UUID, keys []string, nodes []*entity.Node, rels []*entity.RelationshipCandidate) (*Batch, error) {
	if len(keys) != len(nodes) {
		return nil, fmt.Errorf("batch: %d keys for %d nodes", len(keys), len(nodes))
	}
	b := newBatch()
	b.ID = id
	for i, n := range nodes {
		if _, dup := b.byKey[keys[i]]; dup {
			return nil, fmt.Errorf("batch: key %q: %w", keys[i], ErrDuplicateKey)
		}
		b.addNode(keys[i], n)
	}
	for i, r := range rels {
		if b.Key(r.Endpoint) == "" {
			return nil, fmt.Errorf("batch: relationships[%d]: %w", i, ErrUnknownEndpoint)
		}
	}
	b.relationships = append(b.relationships, rels...)
	return b, nil
}

func (b *Batch) addNode(key string, n *entity.Node) {
	b.nodes = append(b.nodes, n)
	b.keys = append(b.keys, key)
	b.byKey[key] = n
	if _, seen := b.keyOf[n]; !seen {
		b.keyOf[n] = key
	}
}

// Nodes returns the nodes in manifest order
func (b *Batch) Nodes() []*entity.Node {
	return b.nodes
}

// Relationships returns the relationship candidates in manifest order
func (b *Batch) Relationships() []*entity.RelationshipCandidate {
	return b.relationships
}

// Keys returns the node keys in manifest order
func (b *Batch) Keys() []string {
	return b.keys
}

// Node looks a node up by key
func (b *Batch) Node(key string) (*entity.Node, bool) {
	n, ok := b.byKey[key]
	return n, ok
}

// Key returns the key of n, or "" when n is not part of the batch. The match
// is by identity. A node added under several keys answers with the first.
func (b *Batch) Key(n *entity.Node) string {
	return b.keyOf[n]
}

// Validate re-checks every entity with the structural predicates. It is
// meant for batches that went through a transformation after being built.
func (b *Batch) Validate() error {
	for i, n := range b.nodes {
		if err := validation.CheckNodeShape(n); err != nil {
			return fmt.Errorf("batch %s: node %q: %w", b.ID, b.keys[i], err)
		}
	}
	for i, r := range b.relationships {
		if err := validation.CheckRelationshipShape(r); err != nil {
			return fmt.Errorf("batch %s: relationships[%d]: %w", b.ID, i, err)
		}
	}
	return nil
}
