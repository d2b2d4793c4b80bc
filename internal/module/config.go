package module

// Length limits shared by all modules. The *Old limits apply to optimized
// kernels, which keep the candidate inside a single compression block.
const (
	PwMin      = 0
	PwMax      = 256
	PwMaxOld   = 55
	SaltMin    = 0
	SaltMax    = 256
	SaltMaxOld = 51
)

// UserOptions are the host settings that change how a module behaves.
type UserOptions struct {
	// OptimizedKernel selects the optimized compute path (-O).
	OptimizedKernel bool
	// PwMin and PwMax narrow the accepted candidate length. Zero means no
	// override.
	PwMin uint32
	PwMax uint32
}

// Config is the effective configuration of one module for one session.
type Config struct {
	Mode     uint32
	HashName string
	OptiType OptiType
	OptsType OptsType
	SaltType SaltType
	DgstSize DgstSize
	DgstPos  Positions

	User UserOptions
}

// NewConfig derives the session configuration for m. The generic kernels do
// not implement the precomputed shortcuts, so those bits are only kept when
// the optimized path is selected.
func NewConfig(m Module, u UserOptions) *Config {
	opti := m.OptiType()
	if u.OptimizedKernel {
		opti |= OptiOptimizedKernel
	} else {
		opti &^= OptiPrecomputed | OptiOptimizedKernel
	}
	return &Config{
		Mode:     m.Mode(),
		HashName: m.HashName(),
		OptiType: opti,
		OptsType: m.OptsType(),
		SaltType: m.SaltType(),
		DgstSize: m.DgstSize(),
		DgstPos:  m.DgstPos(),
		User:     u,
	}
}

// Optimized reports whether the optimized compute path is active.
func (c *Config) Optimized() bool { return c.OptiType.Has(OptiOptimizedKernel) }

func DefaultPwMin(c *Config, optimized bool) uint32 {
	pwMin := uint32(PwMin)
	if c.User.PwMin > pwMin {
		pwMin = c.User.PwMin
	}
	return pwMin
}

func DefaultPwMax(c *Config, optimized bool) uint32 {
	pwMax := uint32(PwMax)
	if optimized {
		pwMax = PwMaxOld
		if c.OptsType&(OptsPtUTF16LE|OptsPtUTF16BE) != 0 {
			pwMax /= 2
		}
	}
	if c.User.PwMax > 0 && c.User.PwMax < pwMax {
		pwMax = c.User.PwMax
	}
	return pwMax
}

func DefaultSaltMin(c *Config, optimized bool) uint32 {
	if c.SaltType == SaltNone {
		return 0
	}
	return SaltMin
}

func DefaultSaltMax(c *Config, optimized bool) uint32 {
	if c.SaltType == SaltNone {
		return 0
	}
	if optimized {
		return SaltMaxOld
	}
	return SaltMax
}
