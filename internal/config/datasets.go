package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/basketmine/internal/dataset"
)

// ErrUnknownDataset is returned when a name is neither a registered dataset
// nor an existing file.
var ErrUnknownDataset = errors.New("unknown dataset")

// builtinOrder is the menu order of the interactive prompt.
var builtinOrder = []string{"grocery", "shopping", "cafe", "restaurant", "bookstore"}

// BuiltinDatasets returns the stock dataset registry: <name>transactions.csv
// for each of the five sample datasets.
func BuiltinDatasets() map[string]string {
	m := make(map[string]string, len(builtinOrder))
	for _, name := range builtinOrder {
		m[name] = name + "transactions.csv"
	}
	return m
}

// LoadDatasetFile reads the registry file at {dir}/datasets. Each line is
// name=path; blank lines and # comments are ignored. If the file does not
// exist, an empty map is returned without an error. Malformed lines are
// skipped.
func LoadDatasetFile(dir string) (map[string]string, error) {
	datasets := make(map[string]string)

	f, err := os.Open(filepath.Join(dir, "datasets"))
	if err != nil {
		if os.IsNotExist(err) {
			return datasets, nil
		}
		return datasets, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:idx]))
		path := strings.TrimSpace(line[idx+1:])
		if name == "" || path == "" {
			continue
		}
		datasets[name] = path
	}

	if err := scanner.Err(); err != nil {
		return datasets, err
	}
	return datasets, nil
}

// DatasetNames returns registered names: the built-in ones in menu order,
// then the rest alphabetically.
func (c *Config) DatasetNames() []string {
	names := make([]string, 0, len(c.Datasets))
	seen := make(map[string]bool)
	for _, name := range builtinOrder {
		if _, ok := c.Datasets[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}

	var extra []string
	for name := range c.Datasets {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// DatasetPath returns the file path registered for name.
func (c *Config) DatasetPath(name string) (string, bool) {
	p, ok := c.Datasets[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.DataDir, p)
	}
	return p, true
}

// ResolveDataset maps a command-line argument to a dataset name and path.
// An existing file wins over a registered name.
func (c *Config) ResolveDataset(arg string) (name, path string, err error) {
	if arg == "" {
		return "", "", fmt.Errorf("%w: no dataset given", ErrUnknownDataset)
	}
	if info, statErr := os.Stat(arg); statErr == nil && !info.IsDir() {
		return dataset.NameFromPath(arg), arg, nil
	}
	if p, ok := c.DatasetPath(arg); ok {
		return strings.ToLower(arg), p, nil
	}
	return "", "", fmt.Errorf("%w: %q (known: %s)", ErrUnknownDataset, arg, strings.Join(c.DatasetNames(), ", "))
}
