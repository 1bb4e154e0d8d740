// Package node describes the parts of a compositing graph the render core
// consumes: nodes with shader sources and typed inputs, and the tables of
// already-evaluated values those inputs resolve to.
package node

// DataType tags the payload of a Value and the declared type of an Input.
type DataType int

const (
	DataNone DataType = iota
	DataInt
	DataFloat
	DataDecimal
	DataNumber
	DataRational
	DataVec2
	DataVec3
	DataVec4
	DataMatrix
	DataCombo
	DataColor
	DataBoolean
	DataFootage
	DataTexture
	DataBuffer
	DataSamples
	DataText
	DataString
	DataFont
	DataFile
	DataVector
	DataAny
)

var dataTypeNames = [...]string{
	DataNone:     "none",
	DataInt:      "int",
	DataFloat:    "float",
	DataDecimal:  "decimal",
	DataNumber:   "number",
	DataRational: "rational",
	DataVec2:     "vec2",
	DataVec3:     "vec3",
	DataVec4:     "vec4",
	DataMatrix:   "matrix",
	DataCombo:    "combo",
	DataColor:    "color",
	DataBoolean:  "boolean",
	DataFootage:  "footage",
	DataTexture:  "texture",
	DataBuffer:   "buffer",
	DataSamples:  "samples",
	DataText:     "text",
	DataString:   "string",
	DataFont:     "font",
	DataFile:     "file",
	DataVector:   "vector",
	DataAny:      "any",
}

func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return "unknown"
	}
	return dataTypeNames[t]
}

// IsTexture reports whether values of this type are carried as textures.
func (t DataType) IsTexture() bool {
	return t == DataFootage || t == DataTexture || t == DataBuffer
}

// Value is one evaluated parameter. Data holds a Go value matching Type:
//
//	DataInt, DataCombo            int
//	DataFloat                     float64
//	DataBoolean                   bool
//	DataVec2, DataVec3, DataVec4  math.Vec2, math.Vec3, math.Vec4
//	DataMatrix                    math.Mat4
//	DataColor                     core.Color
//	DataTexture                   *opengl.TextureRef (nil for no texture)
//
// Other types are opaque to the render core.
type Value struct {
	Type DataType
	Data any
}

// ValueTable is an ordered stack of values. Later pushes shadow earlier
// values of the same type.
type ValueTable struct {
	values []Value
}

func (t *ValueTable) Push(v Value) {
	t.values = append(t.values, v)
}

// Get returns the most recently pushed value of type dt.
func (t *ValueTable) Get(dt DataType) (Value, bool) {
	if t == nil {
		return Value{}, false
	}
	for i := len(t.values) - 1; i >= 0; i-- {
		if t.values[i].Type == dt {
			return t.values[i], true
		}
	}
	return Value{}, false
}

// Last returns the most recently pushed value.
func (t *ValueTable) Last() (Value, bool) {
	if t == nil || len(t.values) == 0 {
		return Value{}, false
	}
	return t.values[len(t.values)-1], true
}

func (t *ValueTable) Values() []Value { return t.values }

func (t *ValueTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// ValueDatabase maps input IDs to the table of values evaluated for them.
type ValueDatabase map[string]*ValueTable

// Set pushes v onto the table of the input with the given ID, creating the
// table if needed.
func (db ValueDatabase) Set(id string, v Value) {
	t, ok := db[id]
	if !ok {
		t = &ValueTable{}
		db[id] = t
	}
	t.Push(v)
}
