package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/vango-dev/pagenav/internal/errors"
)

// Format is a configuration document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// decode unmarshals data into v using the format of name. Parse failures
// come back as E102 errors positioned at the offending line when the
// decoder reports one.
func decode(name string, data []byte, v any) error {
	format, ok := FormatOf(name)
	if !ok {
		return errors.New("E104").
			WithFile(name).
			WithSuggestion("Rename the file to use .json, .yaml, .yml or .toml")
	}
	return decodeFormat(format, name, data, v)
}

func decodeFormat(format Format, name string, data []byte, v any) error {
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	}
	if err == nil {
		return nil
	}

	line, col := errorPosition(data, err)
	pe := errors.New("E102").Wrap(err)
	if line > 0 && isLocal(name) {
		pe.WithLocation(name, line, col)
	} else {
		pe.WithFile(name)
		pe.Location.Line, pe.Location.Column = line, col
	}
	return pe.WithSuggestion("Check that " + filepath.Base(name) + " is valid " + strings.ToUpper(string(format)))
}

// errorPosition extracts a 1-based line and column from a decoder error.
func errorPosition(data []byte, err error) (line, col int) {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tomlErr   *toml.DecodeError
		yamlErr   yaml.Error
	)
	switch {
	case stderrors.As(err, &syntaxErr):
		return offsetPosition(data, syntaxErr.Offset)
	case stderrors.As(err, &typeErr):
		return offsetPosition(data, typeErr.Offset)
	case stderrors.As(err, &tomlErr):
		return tomlErr.Position()
	case stderrors.As(err, &yamlErr):
		if tk := yamlErr.GetToken(); tk != nil && tk.Position != nil {
			return tk.Position.Line, tk.Position.Column
		}
	}
	return 0, 0
}

func offsetPosition(data []byte, offset int64) (line, col int) {
	if offset <= 0 || offset > int64(len(data)) {
		return 0, 0
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte{'\n'}) + 1
	col = int(offset) - bytes.LastIndexByte(prefix, '\n') - 1
	return line, col
}

func isLocal(name string) bool {
	return !strings.Contains(name, "://")
}
