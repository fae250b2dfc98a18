package querydef

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// ErrUnsupportedFormat is returned by Load for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported definition format")

// Load reads a definition file, choosing the decoder by extension:
// .yaml/.yml, .json or .cue.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}

	var def *Definition
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		def, err = LoadYAML(bytes.NewReader(data))
	case ".json":
		def, err = LoadJSON(bytes.NewReader(data))
	case ".cue":
		def, err = LoadCUE(data, filepath.Base(path))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// LoadYAML decodes a YAML definition. Unknown keys are errors.
func LoadYAML(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return &def, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &def, nil
}

// LoadJSON decodes a JSON definition. Unknown keys are errors.
func LoadJSON(r io.Reader) (*Definition, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return &def, nil
}

// LoadCUE compiles src, unifies it with #Definition and decodes the result.
// The schema rejects unknown fields, unknown operators and negative limits
// before any builder call is made.
func LoadCUE(src []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile cue: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Definition")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate cue: %w", err)
	}

	data, err := unified.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export cue: %w", err)
	}
	return LoadJSON(bytes.NewReader(data))
}
