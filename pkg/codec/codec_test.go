package codec

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphbuilder/pkg/builder"
	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
	"github.com/dd0wney/cluso-graphbuilder/pkg/manifest"
	"github.com/dd0wney/cluso-graphbuilder/pkg/validation"
)

const people = `
nodes:
  - key: matvey
    labels: [PERSON]
    properties:
      FIRST_NAME: Matvey
      DOB: [2018, 10, 21]
      height: 1.12
  - key: acme
    labels: [COMPANY]
relationships:
  - types: [REL_TYPE]
    direction: outbound
    endpoint: matvey
    properties: {REQUIREDPROP: 1, optionalProp: two, _privateProp: true}
  - types: [EMPLOYS]
    direction: inbound
    endpoint: acme
`

func buildPeople(t *testing.T) *manifest.Batch {
	t.Helper()
	m, err := manifest.Parse(strings.NewReader(people))
	require.NoError(t, err)
	batch, err := m.Build(builder.New())
	require.NoError(t, err)
	return batch
}

func TestRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "snappy"
		}
		t.Run(name, func(t *testing.T) {
			original := buildPeople(t)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, original, Options{Compress: compress}))
			assert.Equal(t, compress, bytes.HasPrefix(buf.Bytes(), []byte(streamMagic)))

			decoded, err := Decode(&buf, builder.New())
			require.NoError(t, err)

			assert.Equal(t, original.ID, decoded.ID)
			assert.Equal(t, original.Keys(), decoded.Keys())
			require.Len(t, decoded.Relationships(), 2)

			matvey, ok := decoded.Node("matvey")
			require.True(t, ok)
			assert.Equal(t, []string{"PERSON"}, matvey.Labels)
			assert.Equal(t, "Matvey", matvey.Properties["FIRST_NAME"])
			assert.Equal(t, []any{int64(2018), int64(10), int64(21)}, matvey.Properties["DOB"])
			assert.Equal(t, 1.12, matvey.Properties["height"])

			rel := decoded.Relationships()[0]
			assert.Same(t, matvey, rel.Endpoint)
			assert.Equal(t, entity.Outbound, rel.Direction)
			assert.Equal(t, int64(1), rel.Properties["REQUIREDPROP"])
			assert.Equal(t, true, rel.Properties["_privateProp"])
			assert.Equal(t, entity.Inbound, decoded.Relationships()[1].Direction)

			assert.NoError(t, decoded.Validate())
		})
	}
}

func TestRoundTripNumericArrays(t *testing.T) {
	n, err := builder.MakeNode([]string{"SAMPLE"}, map[string]any{
		"octets": [3]byte{1, 2, 255},
		"small":  []any{uint8(7), int16(-3)},
		"big":    uint64(math.MaxUint64),
	})
	require.NoError(t, err)
	batch, err := manifest.NewBatch(uuid.New(), []string{"s"}, []*entity.Node{n}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, batch, Options{}))
	assert.Contains(t, buf.String(), `"octets":[1,2,255]`)

	decoded, err := Decode(&buf, builder.New())
	require.NoError(t, err)
	s, ok := decoded.Node("s")
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2), int64(255)}, s.Properties["octets"])
	assert.Equal(t, []any{int64(7), int64(-3)}, s.Properties["small"])
	assert.Equal(t, uint64(math.MaxUint64), s.Properties["big"])
}

func TestUnencodableValuesNeverReachEncode(t *testing.T) {
	for name, v := range map[string]any{
		"bytes":    []byte("raw"),
		"NaN":      math.NaN(),
		"infinity": math.Inf(1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := builder.MakeNode([]string{"SAMPLE"}, map[string]any{"v": v})
			assert.ErrorIs(t, err, validation.ErrInvalidPropertyValue)
		})
	}
}

func TestEncodeDocumentLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, buildPeople(t), Options{}))

	out := buf.String()
	assert.Contains(t, out, `"id":"`)
	assert.Contains(t, out, `"key":"matvey"`)
	assert.Contains(t, out, `"endpoint":"matvey"`)
	assert.Contains(t, out, `"direction":"inbound"`)
}

func TestEncodeDetachedEndpoint(t *testing.T) {
	a, err := builder.MakeNode([]string{"A"}, nil)
	require.NoError(t, err)
	outside, err := builder.MakeNode([]string{"B"}, nil)
	require.NoError(t, err)
	rel, err := builder.MakeRelationshipCandidate([]string{"T"}, nil, entity.Outbound, a)
	require.NoError(t, err)

	batch, err := manifest.NewBatch(uuid.New(), []string{"a"}, []*entity.Node{a}, []*entity.RelationshipCandidate{rel})
	require.NoError(t, err)
	require.NoError(t, Encode(&bytes.Buffer{}, batch, Options{}))

	// NewBatch refuses detached endpoints, so repoint after the fact
	rel.Endpoint = outside
	err = Encode(&bytes.Buffer{}, batch, Options{})
	assert.ErrorIs(t, err, ErrDetachedEndpoint)
}

func TestDecodeErrors(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "not json", doc: "nodes: []"},
		{name: "bad id", doc: `{"id":"nope","nodes":[{"key":"a","labels":["A"]}]}`},
		{name: "unknown field", doc: `{"id":"` + id + `","nodes":[],"extra":1}`},
		{
			name:    "no nodes",
			doc:     `{"id":"` + id + `","nodes":[]}`,
			wantErr: manifest.ErrEmptyManifest,
		},
		{
			name:    "bad direction",
			doc:     `{"id":"` + id + `","nodes":[{"key":"a","labels":["A"]}],"relationships":[{"types":["T"],"direction":"both","endpoint":"a"}]}`,
			wantErr: validation.ErrInvalidDirection,
		},
		{
			name:    "object property",
			doc:     `{"id":"` + id + `","nodes":[{"key":"a","labels":["A"],"properties":{"p":{"x":1}}}]}`,
			wantErr: validation.ErrInvalidPropertyValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := Decode(strings.NewReader(tt.doc), builder.New())
			assert.Nil(t, batch)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeAppliesBuilderLimits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, buildPeople(t), Options{}))

	strict := builder.New(builder.WithLimits(validation.Limits{MaxProperties: 1}))
	_, err := Decode(&buf, strict)
	assert.ErrorIs(t, err, validation.ErrLimitExceeded)
}
