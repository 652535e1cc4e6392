package cli

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/timelens/timelens/internal/attr"
	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/span"
)

//go:embed schema.cue
var fixtureSchema string

// LoadMode controls how errors are handled during fixture loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Fixture is a decoded trace fixture: the seed data for one database.
type Fixture struct {
	Trace    TraceFixture     `json:"trace"`
	Objects  []ObjectFixture  `json:"objects"`
	Values   []ValueFixture   `json:"values"`
	Comments []CommentFixture `json:"comments"`
}

// TraceFixture carries optional trace identity overrides.
type TraceFixture struct {
	Token string `json:"token"`
	Space string `json:"space"`
}

// SpanFixture is a half-open snap interval [Min, Max).
type SpanFixture struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Span converts the fixture interval to a span.Span.
func (s SpanFixture) Span() span.Span {
	return span.New(span.Snap(s.Min), span.Snap(s.Max))
}

// ObjectFixture describes one object row.
type ObjectFixture struct {
	Path string      `json:"path"`
	Role string      `json:"role"`
	Life SpanFixture `json:"life"`
}

// ValueFixture describes one attribute value interval.
type ValueFixture struct {
	Object string      `json:"object"`
	Key    string      `json:"key"`
	Span   SpanFixture `json:"span"`
	Kind   string      `json:"kind"`
	Value  string      `json:"value"`
}

// CommentFixture describes one address comment interval.
type CommentFixture struct {
	Address string      `json:"address"`
	Kind    int         `json:"kind"`
	Span    SpanFixture `json:"span"`
	Body    string      `json:"body"`
}

// LoadResult contains the results of loading fixtures from a directory.
type LoadResult struct {
	Fixture   *Fixture
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during fixture loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFixtures loads and validates CUE trace fixtures from a directory.
// The fixture value is unified with the embedded schema before decoding,
// then cross-checked: value rows must reference declared objects, paths
// must parse, and encoded values must round-trip through their kind.
func LoadFixtures(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixtures directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing fixtures directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	schema := ctx.CompileString(fixtureSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("compiling fixture schema: %v", err)}}
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaErrors(err, mode)
	}

	var fx Fixture
	if err := unified.Decode(&fx); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("decoding fixture: %v", err)}}
	}

	result := &LoadResult{Fixture: &fx, FileCount: len(cueFiles)}
	errs := checkFixture(&fx, mode)
	return result, errs
}

// schemaErrors expands a CUE validation error into positioned LoadErrors.
func schemaErrors(err error, mode LoadMode) []error {
	var errs []error
	for _, e := range cueerrors.Errors(err) {
		errs = append(errs, &LoadError{
			Code:    ErrCodeSchema,
			Message: e.Error(),
			Pos:     e.Position(),
		})
		if mode == LoadModeFailFast {
			break
		}
	}
	if len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeSchema, Message: err.Error()})
	}
	return errs
}

// checkFixture runs the semantic checks the schema cannot express.
func checkFixture(fx *Fixture, mode LoadMode) []error {
	var errs []error
	fail := func(code, format string, args ...any) bool {
		errs = append(errs, &LoadError{Code: code, Message: fmt.Sprintf(format, args...)})
		return mode == LoadModeFailFast
	}

	if len(fx.Objects) == 0 {
		fail(ErrCodeGeneric, "no objects declared in fixtures")
		return errs
	}

	known := make(map[string]bool, len(fx.Objects))
	for _, of := range fx.Objects {
		if _, err := path.Parse(of.Path); err != nil {
			if fail(ErrCodeBadPath, "object %q: %v", of.Path, err) {
				return errs
			}
			continue
		}
		if known[of.Path] {
			if fail(ErrCodeBadPath, "object %q declared twice", of.Path) {
				return errs
			}
		}
		known[of.Path] = true
	}

	for _, vf := range fx.Values {
		if !known[vf.Object] {
			if fail(ErrCodeUnknownObject, "value for undeclared object %q", vf.Object) {
				return errs
			}
		}
		if _, err := attr.Decode(vf.Kind, vf.Value); err != nil {
			if fail(ErrCodeBadValue, "value %s.%s: %v", vf.Object, vf.Key, err) {
				return errs
			}
		}
	}

	for _, cf := range fx.Comments {
		if _, err := attr.ParseAddress(cf.Address); err != nil {
			if fail(ErrCodeBadAddress, "comment address %q: %v", cf.Address, err) {
				return errs
			}
		}
	}

	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build/decode failed
	ErrCodeSchema      = "E007" // Fixture does not match schema

	// Fixture semantic errors
	ErrCodeBadPath       = "E101" // Object path unparseable or duplicated
	ErrCodeUnknownObject = "E102" // Value references undeclared object
	ErrCodeBadValue      = "E103" // Encoded value does not match its kind
	ErrCodeBadAddress    = "E104" // Comment address unparseable
)
