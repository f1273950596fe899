package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	clierrors "github.com/salmonumbrella/utilisation-cli/internal/errors"
)

// DefaultPath is used when no source is configured.
const DefaultPath = "source-data.json"

// Loader supplies the full Source Record sequence.
type Loader interface {
	Load(ctx context.Context) ([]Record, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]Record, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) ([]Record, error) {
	return f(ctx)
}

// Static returns a Loader that always yields records.
func Static(records []Record) Loader {
	return LoaderFunc(func(context.Context) ([]Record, error) {
		return records, nil
	})
}

// FileLoader reads records from a JSON file. Path "-" reads Stdin.
type FileLoader struct {
	Path  string
	Stdin io.Reader
}

// NewFileLoader creates a FileLoader for path, reading "-" from os.Stdin.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path, Stdin: os.Stdin}
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := l.read()
	if err != nil {
		if clierrors.IsNotFound(err) {
			return nil, clierrors.SourceNotFoundError(l.Path, err)
		}
		return nil, clierrors.WrapUserError(clierrors.WrapSource(l.Path, err), "failed to read source", "")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := Decode(data)
	if err != nil {
		return nil, clierrors.WrapUserError(
			clierrors.WrapSource(l.Path, err),
			"invalid source data",
			"The source must be a JSON array of objects with an \"employees\" or \"externals\" entry",
		)
	}
	slog.Debug("loaded source", "path", l.Path, "records", len(records))
	return records, nil
}

func (l *FileLoader) read() ([]byte, error) {
	if l.Path == "-" {
		in := l.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.ReadAll(in)
	}
	return os.ReadFile(l.Path)
}

// Decode parses a JSON array of records. Entries that cannot be decoded are
// kept as empty records with Err set, so the result always has one record
// per array element.
func Decode(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if data[0] != '[' {
		return nil, fmt.Errorf("expected a JSON array, got %s", describeJSON(data[0]))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	records := make([]Record, len(raw))
	for i, item := range raw {
		records[i] = decodeRecord(item)
		if records[i].Err != nil {
			slog.Debug("skipping malformed record", "index", i, "error", records[i].Err)
		}
	}
	return records, nil
}

// decodeRecord decodes each alternative on its own, so a broken employees
// value never hides a usable externals value.
func decodeRecord(item json.RawMessage) Record {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] == 'n' {
		return Record{}
	}
	if item[0] != '{' {
		return Record{Err: fmt.Errorf("expected an object, got %s", describeJSON(item[0]))}
	}

	var parts struct {
		Employees json.RawMessage `json:"employees"`
		Externals json.RawMessage `json:"externals"`
	}
	if err := json.Unmarshal(item, &parts); err != nil {
		return Record{Err: err}
	}
	return Record{
		Employees: decodeWorker(parts.Employees),
		Externals: decodeWorker(parts.Externals),
	}
}

func decodeWorker(raw json.RawMessage) *Worker {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	w := &Worker{}
	if err := json.Unmarshal(raw, w); err != nil {
		slog.Debug("invalid worker", "error", err)
		return &Worker{Invalid: true}
	}
	return w
}

func describeJSON(first byte) string {
	switch first {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	default:
		return "a number"
	}
}
