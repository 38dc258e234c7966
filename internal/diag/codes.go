package diag

import "fmt"

// Code identifies a diagnostic's category. Ranges follow the pipeline
// stage that raises them.
type Code uint16

const (
	UnknownCode Code = 0

	// Argument / driver errors.
	ArgConflictingTarget Code = 1000
	ArgUnreadableSource  Code = 1001
	ArgUnsupportedTarget Code = 1002
	ArgBadFlag           Code = 1003

	// Preprocess/lex/parse/type-check diagnostics from the external
	// frontend flow through this sink using the 2000-4999 range; the core does
	// not raise these itself but must be able to carry and format them.
	FrontendError Code = 2000

	// Internal invariant violations raised by IR construction.
	InternalInvariant Code = 9000

	// Link errors.
	LinkFailed Code = 9500
)

func (c Code) String() string {
	return fmt.Sprintf("C%04d", uint16(c))
}
