package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Compiled is the output of a Compiler: a shader module translated and validated
// from textual source, ready to hand to the GPU device. SPIRV holds the
// little-endian 32-bit words produced by the compiler; WGSL retains the
// validated source for backends that consume it natively.
type Compiled struct {
	// Label identifies the module in device diagnostics.
	Label string

	// WGSL is the validated WGSL source the module was compiled from.
	WGSL string

	// SPIRV is the compiled SPIR-V binary as 32-bit words.
	SPIRV []uint32
}

// Compiler translates textual shader source into a compiled module. It is an
// injected collaborator with no side effects on GPU state, so pipelines can be
// built against a mock compiler in tests.
type Compiler interface {
	// Compile translates shader source text into a compiled module.
	//
	// Parameters:
	//   - label: an identifier for the module, used in diagnostics
	//   - source: the WGSL source text to compile
	//
	// Returns:
	//   - *Compiled: the compiled module
	//   - error: compiler diagnostics if the source does not compile
	Compile(label, source string) (*Compiled, error)
}

// nagaCompiler compiles WGSL to SPIR-V through the naga library.
type nagaCompiler struct{}

var _ Compiler = nagaCompiler{}

// NewCompiler creates the default Compiler, backed by the naga WGSL compiler.
//
// Returns:
//   - Compiler: a Compiler that translates WGSL to SPIR-V
func NewCompiler() Compiler {
	return nagaCompiler{}
}

func (nagaCompiler) Compile(label, source string) (*Compiled, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	return &Compiled{
		Label: label,
		WGSL:  source,
		SPIRV: words,
	}, nil
}
