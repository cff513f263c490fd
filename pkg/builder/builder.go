// Package builder is the sanctioned way to construct graph entities. Every
// entity it returns satisfies the structural predicates of package
// validation; invalid input fails with a *validation.ValidationError and no
// partial entity.
package builder

import (
	"fmt"
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
	"github.com/dd0wney/cluso-graphbuilder/pkg/logging"
	"github.com/dd0wney/cluso-graphbuilder/pkg/metrics"
	"github.com/dd0wney/cluso-graphbuilder/pkg/validation"
)

const (
	opMakeNode         = "MakeNode"
	opMakeRelationship = "MakeRelationshipCandidate"
)

// Builder constructs validated nodes and relationship candidates. Its
// configuration is fixed by New; it holds no per-call state and is safe for
// concurrent use.
type Builder struct {
	logger  logging.Logger
	metrics *metrics.Registry
	limits  validation.Limits
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger used for build traces (debug level)
func WithLogger(logger logging.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger.With(logging.Component("builder"))
		}
	}
}

// WithMetrics records every build and rejection in reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(b *Builder) {
		b.metrics = reg
	}
}

// WithLimits enforces size and charset bounds on top of the structural rules
func WithLimits(limits validation.Limits) Option {
	return func(b *Builder) {
		b.limits = limits
	}
}

// New creates a Builder. Without options it logs nothing, records no metrics
// and enforces no limits.
func New(opts ...Option) *Builder {
	b := &Builder{
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MakeNode builds a node from labels and properties.
//
// labels must be non-empty and every label a non-empty string; repeated
// labels are dropped, first occurrence wins. Property keys must be non-empty
// and values scalars or (nested) arrays. Labels and properties are copied, so
// later changes to the arguments do not reach the node.
func (b *Builder) MakeNode(labels []string, properties map[string]any) (*entity.Node, error) {
	start := time.Now()

	req := &validation.NodeRequest{Labels: labels, Properties: properties}
	if err := validation.ValidateNodeRequest(req); err != nil {
		return nil, b.reject(opMakeNode, metrics.EntityNode, err, start)
	}

	labels = validation.Dedupe(labels)
	if verr := b.limits.CheckTags("labels", labels); verr != nil {
		return nil, b.reject(opMakeNode, metrics.EntityNode, verr, start)
	}
	if verr := b.limits.CheckProperties(properties); verr != nil {
		return nil, b.reject(opMakeNode, metrics.EntityNode, verr, start)
	}

	props, err := copyProperties(properties)
	if err != nil {
		return nil, b.reject(opMakeNode, metrics.EntityNode, err, start)
	}

	node := &entity.Node{Labels: labels, Properties: props}
	b.built(metrics.EntityNode, labels, len(props), start)
	return node, nil
}

// MakeRelationshipCandidate builds a relationship candidate anchored on
// endpoint.
//
// types must be non-empty, direction exactly entity.Outbound or
// entity.Inbound, and endpoint an already built, valid node. The candidate
// references endpoint itself; endpoint is never copied or modified.
func (b *Builder) MakeRelationshipCandidate(
	types []string,
	properties map[string]any,
	direction entity.Direction,
	endpoint *entity.Node,
) (*entity.RelationshipCandidate, error) {
	start := time.Now()

	req := &validation.RelationshipRequest{
		Types:      types,
		Properties: properties,
		Direction:  direction,
		Endpoint:   endpoint,
	}
	if err := validation.ValidateRelationshipRequest(req); err != nil {
		return nil, b.reject(opMakeRelationship, metrics.EntityRelationship, err, start)
	}

	types = validation.Dedupe(types)
	if verr := b.limits.CheckTags("types", types); verr != nil {
		return nil, b.reject(opMakeRelationship, metrics.EntityRelationship, verr, start)
	}
	if verr := b.limits.CheckProperties(properties); verr != nil {
		return nil, b.reject(opMakeRelationship, metrics.EntityRelationship, verr, start)
	}

	props, err := copyProperties(properties)
	if err != nil {
		return nil, b.reject(opMakeRelationship, metrics.EntityRelationship, err, start)
	}

	rel := &entity.RelationshipCandidate{
		Types:      types,
		Properties: props,
		Direction:  direction,
		Endpoint:   endpoint,
	}
	b.built(metrics.EntityRelationship, types, len(props), start)
	return rel, nil
}

func (b *Builder) built(kind string, tags []string, nprops int, start time.Time) {
	elapsed := time.Since(start)
	if b.metrics != nil {
		b.metrics.RecordBuild(kind, elapsed)
	}
	b.logger.Debug("entity built",
		logging.Entity(kind),
		logging.Labels(tags),
		logging.Int("properties", nprops),
		logging.Latency(elapsed),
	)
}

// reject attributes err to op and entity, records it, and returns it as a
// *validation.ValidationError.
func (b *Builder) reject(op, kind string, err error, start time.Time) error {
	eb := validation.NewError(op)
	if cause, ok := validation.AsValidationError(err); ok {
		eb.From(cause)
	} else {
		eb.Cause(validation.ErrInvalidPropertyValue).Detail("%v", err)
	}
	if kind == metrics.EntityRelationship {
		eb.Relationship()
	} else {
		eb.Node()
	}
	verr := eb.Build()

	elapsed := time.Since(start)
	if b.metrics != nil {
		b.metrics.RecordRejection(kind, verr.Field, elapsed)
	}
	b.logger.Debug("entity rejected",
		logging.Entity(kind),
		logging.String("field", verr.Field),
		logging.Error(verr),
	)
	return verr
}

// copyProperties deep copies a validated property mapping. nil becomes an
// empty mapping.
func copyProperties(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	if len(in) == 0 {
		return out, nil
	}
	if err := deepcopy.Copy(&out, in); err != nil {
		return nil, fmt.Errorf("copy properties: %w", err)
	}
	return out, nil
}

var unconfigured = New()

// MakeNode builds a node with an unconfigured Builder.
func MakeNode(labels []string, properties map[string]any) (*entity.Node, error) {
	return unconfigured.MakeNode(labels, properties)
}

// MakeRelationshipCandidate builds a relationship candidate with an
// unconfigured Builder.
func MakeRelationshipCandidate(
	types []string,
	properties map[string]any,
	direction entity.Direction,
	endpoint *entity.Node,
) (*entity.RelationshipCandidate, error) {
	return unconfigured.MakeRelationshipCandidate(types, properties, direction, endpoint)
}
