package main

import (
	"fmt"
	"sort"

	"node-render/node"
)

const gainFrag = `
#version 410 core
uniform sampler2D src;
uniform bool src_enabled;
uniform float gain;
in  vec2 ove_texcoord;
out vec4 fragColor;
void main() {
    if (!src_enabled) {
        fragColor = vec4(0.0);
        return;
    }
    vec4 c = texture(src, ove_texcoord);
    fragColor = vec4(c.rgb * gain, c.a);
}
`

const invertFrag = `
#version 410 core
uniform sampler2D src;
in  vec2 ove_texcoord;
out vec4 fragColor;
void main() {
    vec4 c = texture(src, ove_texcoord);
    fragColor = vec4(c.a - c.rgb, c.a);
}
`

// Each pass averages a 3x3 neighbourhood of the previous one.
const boxBlurFrag = `
#version 410 core
uniform sampler2D src;
uniform vec2 ove_resolution;
uniform int ove_iteration;
in  vec2 ove_texcoord;
out vec4 fragColor;
void main() {
    vec2 texel = 1.0 / ove_resolution;
    vec4 sum = vec4(0.0);
    for (int y = -1; y <= 1; y++) {
        for (int x = -1; x <= 1; x++) {
            sum += texture(src, ove_texcoord + vec2(x, y) * texel);
        }
    }
    fragColor = sum / 9.0;
}
`

// nodeOptions are the command line knobs the built-in nodes read.
type nodeOptions struct {
	Gain       float64
	Iterations int
}

type nodeBuilder func(opts nodeOptions) (*node.ShaderNode, node.ValueDatabase, error)

var builtinNodes = map[string]nodeBuilder{
	"copy": func(nodeOptions) (*node.ShaderNode, node.ValueDatabase, error) {
		n, err := node.NewShaderNode(node.ShaderNodeConfig{
			ID:     "copy",
			Inputs: []*node.Input{node.NewInput("ove_maintex", node.DataTexture)},
		})
		return n, node.ValueDatabase{}, err
	},
	"gain": func(opts nodeOptions) (*node.ShaderNode, node.ValueDatabase, error) {
		n, err := node.NewShaderNode(node.ShaderNodeConfig{
			ID:           "gain",
			FragmentCode: gainFrag,
			Inputs: []*node.Input{
				node.NewInput("src", node.DataTexture),
				node.NewInput("gain", node.DataFloat),
			},
		})
		db := node.ValueDatabase{}
		db.Set("gain", node.Value{Type: node.DataFloat, Data: opts.Gain})
		return n, db, err
	},
	"invert": func(nodeOptions) (*node.ShaderNode, node.ValueDatabase, error) {
		n, err := node.NewShaderNode(node.ShaderNodeConfig{
			ID:           "invert",
			FragmentCode: invertFrag,
			Inputs:       []*node.Input{node.NewInput("src", node.DataTexture)},
		})
		return n, node.ValueDatabase{}, err
	},
	"blur": func(opts nodeOptions) (*node.ShaderNode, node.ValueDatabase, error) {
		src := node.NewInput("src", node.DataTexture)
		n, err := node.NewShaderNode(node.ShaderNodeConfig{
			ID:             "blur",
			FragmentCode:   boxBlurFrag,
			Inputs:         []*node.Input{src},
			Iterations:     opts.Iterations,
			IterativeInput: src,
		})
		return n, node.ValueDatabase{}, err
	},
}

// buildNode returns the named node, the database holding its parameters
// and the input the source texture must be fed to.
func buildNode(name string, opts nodeOptions) (*node.ShaderNode, node.ValueDatabase, *node.Input, error) {
	build, ok := builtinNodes[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown node %q (available: %v)", name, nodeNames())
	}
	n, db, err := build(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	return n, db, n.Inputs()[0], nil
}

func nodeNames() []string {
	names := make([]string, 0, len(builtinNodes))
	for name := range builtinNodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
