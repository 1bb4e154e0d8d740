package node

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"node-render/core"
)

func elementID(id string, i int) string {
	return id + "." + strconv.Itoa(i)
}

// ShaderNodeConfig describes a node with fixed GLSL sources.
type ShaderNodeConfig struct {
	ID           string
	VertexCode   string
	FragmentCode string
	Inputs       []*Input
	// Iterations below 1 are rendered once.
	Iterations int
	// IterativeInput must be one of Inputs.
	IterativeInput *Input
}

// ShaderNode is a Node whose sources never change with its inputs.
type ShaderNode struct {
	cfg      ShaderNodeConfig
	shaderID string
}

func NewShaderNode(cfg ShaderNodeConfig) (*ShaderNode, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("shader node: empty id")
	}
	if cfg.IterativeInput != nil && !hasInput(cfg.Inputs, cfg.IterativeInput) {
		return nil, fmt.Errorf("shader node %s: iterative input %q is not an input", cfg.ID, cfg.IterativeInput.ID)
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = 1
	}

	h := fnv.New64a()
	h.Write([]byte(cfg.VertexCode))
	h.Write([]byte{0})
	h.Write([]byte(cfg.FragmentCode))
	return &ShaderNode{
		cfg:      cfg,
		shaderID: fmt.Sprintf("%s:%016x", cfg.ID, h.Sum64()),
	}, nil
}

func hasInput(inputs []*Input, in *Input) bool {
	for _, i := range inputs {
		if i == in {
			return true
		}
	}
	return false
}

func (n *ShaderNode) ID() string                              { return n.cfg.ID }
func (n *ShaderNode) Inputs() []*Input                        { return n.cfg.Inputs }
func (n *ShaderNode) ShaderID(ValueDatabase) string           { return n.shaderID }
func (n *ShaderNode) ShaderVertexCode(ValueDatabase) string   { return n.cfg.VertexCode }
func (n *ShaderNode) ShaderFragmentCode(ValueDatabase) string { return n.cfg.FragmentCode }
func (n *ShaderNode) ShaderIterations() int                   { return n.cfg.Iterations }
func (n *ShaderNode) ShaderIterativeInput() *Input            { return n.cfg.IterativeInput }
func (n *ShaderNode) InputValueFromTable(in *Input, db ValueDatabase) Value {
	return ValueFromTable(in, db)
}

// Input returns the input with the given ID, or nil.
func (n *ShaderNode) Input(id string) *Input {
	for _, in := range n.cfg.Inputs {
		if in.ID == id {
			return in
		}
	}
	return nil
}

// TransitionNode is a ShaderNode spanning Length of sequence time. The
// outgoing clip fades over [0, Midpoint] and the incoming one over
// [Midpoint, Length].
type TransitionNode struct {
	*ShaderNode
	Length   core.Rational
	Midpoint core.Rational
}

// NewTransitionNode returns a transition whose midpoint is half its length.
func NewTransitionNode(cfg ShaderNodeConfig, length core.Rational) (*TransitionNode, error) {
	n, err := NewShaderNode(cfg)
	if err != nil {
		return nil, err
	}
	if length.IsNull() || length.Float64() <= 0 {
		return nil, fmt.Errorf("transition %s: length %v must be positive", cfg.ID, length)
	}
	mid := core.NewRational(length.Num, length.Den*2)
	return &TransitionNode{ShaderNode: n, Length: length, Midpoint: mid}, nil
}

func (n *TransitionNode) TotalProgress(t core.Rational) float64 {
	return clamp01(t.Float64() / n.Length.Float64())
}

// OutProgress runs from 1 at the start of the transition to 0 at its
// midpoint.
func (n *TransitionNode) OutProgress(t core.Rational) float64 {
	mid := n.Midpoint.Float64()
	if mid <= 0 {
		return 0
	}
	return clamp01(1 - t.Float64()/mid)
}

// InProgress runs from 0 at the midpoint to 1 at the end.
func (n *TransitionNode) InProgress(t core.Rational) float64 {
	mid, length := n.Midpoint.Float64(), n.Length.Float64()
	if length <= mid {
		if t.Float64() >= length {
			return 1
		}
		return 0
	}
	return clamp01((t.Float64() - mid) / (length - mid))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var (
	_ Node       = (*ShaderNode)(nil)
	_ Transition = (*TransitionNode)(nil)
)
