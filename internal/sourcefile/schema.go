package sourcefile

import (
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// schemaCUE describes a source file: an object mapping each key either to
// its value, or to an object holding the value under "string" plus any
// number of string-valued additional fields.
const schemaCUE = `
#Entry: string | {
	string: string
	[string]: string
}

#Document: [string]: #Entry
`

var (
	schemaOnce sync.Once
	cueCtx     *cue.Context
	documentV  cue.Value
	schemaErr  error
)

// cueMu serializes use of cueCtx, which is not safe for concurrent use.
var cueMu sync.Mutex

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		cueCtx = cuecontext.New()
		v := cueCtx.CompileString(schemaCUE)
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("sourcefile: compile schema: %w", err)
			return
		}
		documentV = v.LookupPath(cue.ParsePath("#Document"))
	})
	return cueCtx, documentV, schemaErr
}

// Validate checks decoded file data against the source file schema.
// data is the generic form produced by a YAML or JSON decoder. Safe for
// concurrent use.
func Validate(data any) error {
	ctx, schema, err := loadSchema()
	if err != nil {
		return err
	}

	cueMu.Lock()
	defer cueMu.Unlock()

	v := ctx.Encode(data)
	if err := v.Err(); err != nil {
		return &FormatError{Message: err.Error()}
	}

	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError reduces a CUE error list to its first error.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &FormatError{Message: err.Error()}
	}

	first := errs[0]
	key := ""
	for _, sel := range first.Path() {
		if !strings.HasPrefix(sel, "#") {
			key = sel
			break
		}
	}
	format, args := first.Msg()
	return &FormatError{Key: key, Message: fmt.Sprintf(format, args...)}
}
