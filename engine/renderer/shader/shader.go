package shader

// ShaderType identifies which programmable pipeline stage a shader targets.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds the shader source and, once the compiler collaborator has run, the
// compiled module produced from it.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string

	compiled *Compiled
}

// Shader defines the interface for a single-stage shader program. It exposes the
// shader's unique key, WGSL source, entry point, and the compiled module once
// compilation has been delegated to the Compiler collaborator.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and labels.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// ShaderType returns the type of the shader (vertex or fragment).
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// Compiled returns the compiled module produced by the Compiler collaborator,
	// or nil if the shader has not been compiled yet.
	//
	// Returns:
	//   - *Compiled: the compiled module, or nil
	Compiled() *Compiled

	// SetCompiled stores the compiled module for this shader.
	//
	// Parameters:
	//   - c: the compiled module produced by a Compiler
	SetCompiled(c *Compiled)
}

var _ Shader = &shader{}

// NewShader creates a new Shader from WGSL source. The shader is not compiled
// until a pipeline registration passes it through the Compiler collaborator.
//
// Parameters:
//   - key: the unique identifier for this shader
//   - source: the WGSL source code
//   - shaderType: the pipeline stage this shader targets
//   - opts: a variadic list of ShaderBuilderOption functions to configure the shader
//
// Returns:
//   - Shader: a new Shader instance
func NewShader(key, source string, shaderType ShaderType, opts ...ShaderBuilderOption) Shader {
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
	}
	switch shaderType {
	case ShaderTypeVertex:
		s.entryPoint = "vs_main"
	case ShaderTypeFragment:
		s.entryPoint = "fs_main"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Compiled() *Compiled {
	return s.compiled
}

func (s *shader) SetCompiled(c *Compiled) {
	s.compiled = c
}

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithEntryPoint overrides the default entry point name for the shader stage.
//
// Parameters:
//   - entryPoint: the entry point function name within the shader source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the entry point for this shader
func WithEntryPoint(entryPoint string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = entryPoint
	}
}
