package logger

// Nop is a Logger that discards everything. Useful in tests.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

var _ Logger = (*Nop)(nil)

func (n *Nop) Debug(msg string, args ...any)    {}
func (n *Nop) Info(msg string, args ...any)     {}
func (n *Nop) Warn(msg string, args ...any)     {}
func (n *Nop) Error(msg string, args ...any)    {}
func (n *Nop) With(args ...any) Logger          { return n }
func (n *Nop) WithComponent(name string) Logger { return n }
