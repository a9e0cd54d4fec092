package dsstore

// ReadOption configures a Read call, following the same functional-options
// shape the teacher uses for Superblock (squashfs.Option).
type ReadOption func(*readConfig) error

type readConfig struct {
	diag         *diagHandler
	maxTreeDepth int
}

func defaultReadConfig() *readConfig {
	return &readConfig{maxTreeDepth: 1024}
}

// WithDiagnostics installs a callback invoked for every non-fatal anomaly
// encountered while reading (§5, §7). The callback must not panic; it may be
// called from within a single synchronous Read call only.
func WithDiagnostics(cb func(Diagnostic)) ReadOption {
	return func(c *readConfig) error {
		c.diag = &diagHandler{cb: cb}
		return nil
	}
}

// WithMaxTreeDepth overrides the traversal depth guard (default 1024, per
// §4.5's min(nodeCount, 1024) bound) used to reject pathologically deep or
// cyclic trees before they exhaust memory.
func WithMaxTreeDepth(depth int) ReadOption {
	return func(c *readConfig) error {
		if depth <= 0 {
			depth = 1024
		}
		c.maxTreeDepth = depth
		return nil
	}
}

// WriteOption configures a Write call, following the teacher's
// squashfs.WriterOption shape.
type WriteOption func(*writeConfig) error

type writeConfig struct {
	pageSize uint32
}

func defaultWriteConfig() *writeConfig {
	return &writeConfig{pageSize: pageSize}
}

// WithPageSize overrides the B-tree node page size. This exists for
// forward-compatibility testing only: the format's invariant is pageSize ==
// 4096 (§3), so any other value produces a container real readers will
// reject, which is exactly what exercising this option is for.
func WithPageSize(size uint32) WriteOption {
	return func(c *writeConfig) error {
		c.pageSize = size
		return nil
	}
}
