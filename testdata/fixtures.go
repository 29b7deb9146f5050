// Package testdata holds recorded touch traces shared by package and
// end-to-end tests. Traces are JSONL, one tick per line, at the 17ms tick
// cadence of the pipeline.
package testdata

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed traces/*.jsonl
var tracesFS embed.FS

// OpenTrace opens a recorded trace by name, without the .jsonl extension.
func OpenTrace(name string) (fs.File, error) {
	f, err := tracesFS.Open(path.Join("traces", name+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", name, err)
	}
	return f, nil
}

// TraceNames lists every recorded trace.
func TraceNames() ([]string, error) {
	entries, err := tracesFS.ReadDir("traces")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".jsonl"))
	}
	return names, nil
}
