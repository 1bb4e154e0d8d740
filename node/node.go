package node

import "node-render/core"

// Input is a declared parameter of a node. Its ID doubles as the uniform
// name the node's shader uses for it.
type Input struct {
	ID   string
	Type DataType

	// Array inputs carry one sub-input per element.
	Array    bool
	Elements []*Input
}

func NewInput(id string, dt DataType) *Input {
	return &Input{ID: id, Type: dt}
}

// NewArrayInput returns an array input of n elements named id.0, id.1, ...
// Vector types bind as a uniform array plus <id>_count; other types bind
// the input's own value.
func NewArrayInput(id string, dt DataType, n int) *Input {
	in := &Input{ID: id, Type: dt, Array: true}
	for i := 0; i < n; i++ {
		in.Elements = append(in.Elements, NewInput(elementID(id, i), dt))
	}
	return in
}

// TimeRange is a half-open span of sequence time.
type TimeRange struct {
	In, Out core.Rational
}

func NewTimeRange(in, out core.Rational) TimeRange {
	return TimeRange{In: in, Out: out}
}

// Node is a graph node that can be evaluated on the GPU.
type Node interface {
	ID() string
	Inputs() []*Input

	// ShaderID identifies the program built from the current shader
	// sources. Nodes returning equal IDs must return equal sources.
	ShaderID(db ValueDatabase) string
	// ShaderVertexCode and ShaderFragmentCode return GLSL sources. An empty
	// string selects the default stage.
	ShaderVertexCode(db ValueDatabase) string
	ShaderFragmentCode(db ValueDatabase) string

	// ShaderIterations is the number of passes the node renders.
	ShaderIterations() int
	// ShaderIterativeInput is the input that receives the previous pass's
	// output, or nil.
	ShaderIterativeInput() *Input

	// InputValueFromTable resolves the evaluated value of in.
	InputValueFromTable(in *Input, db ValueDatabase) Value
}

// Transition is implemented by nodes blending an outgoing and an incoming
// clip. Progress values are in [0, 1].
type Transition interface {
	Node
	TotalProgress(t core.Rational) float64
	OutProgress(t core.Rational) float64
	InProgress(t core.Rational) float64
}

// ValueFromTable is the usual InputValueFromTable: the latest value of the
// input's declared type, with textures standing in for footage and buffers.
func ValueFromTable(in *Input, db ValueDatabase) Value {
	t := db[in.ID]
	if v, ok := t.Get(in.Type); ok {
		return v
	}
	if in.Type.IsTexture() {
		if v, ok := t.Get(DataTexture); ok {
			return v
		}
	}
	return Value{}
}
