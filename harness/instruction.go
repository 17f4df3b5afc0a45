package harness

// Provider supplies a system instruction for a case at runtime.
type Provider interface {
	Instruction(Case) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(Case) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(c Case) (string, error) { return f(c) }

// Instruction represents either a static instruction string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(Case) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(c Case) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(c)
	}
	return i.text, nil
}
