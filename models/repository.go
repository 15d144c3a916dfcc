// Package models reads processed AexPy results from the data directory.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stage names the processing step a result file belongs to.
type Stage string

// Result stages, each a directory under the data path.
const (
	StageDistributing Stage = "distributing"
	StageExtracting   Stage = "extracting"
	StageDiffing      Stage = "diffing"
	StageReporting    Stage = "reporting"
)

// pairSeparator joins two versions in the file name of a pairwise result.
const pairSeparator = "&"

var (
	// ErrNotFound is returned when no result file exists.
	ErrNotFound = errors.New("result not found")
	// ErrInvalidName is returned for names that could escape the data directory.
	ErrInvalidName = errors.New("invalid project or version name")
)

// Project lists what is available for one project.
type Project struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
	Pairs    []Pair   `json:"pairs"`
}

// Pair is an old/new version combination with a difference or report.
type Pair struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Repository serves result files rooted at Root.
type Repository struct {
	Root string
}

// NewRepository returns a Repository rooted at root.
func NewRepository(root string) *Repository {
	return &Repository{Root: root}
}

// ValidateName rejects empty names, names made only of dots and anything
// that is not a single path element.
func ValidateName(name string) error {
	if strings.Trim(name, ".") == "" || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (r *Repository) file(stage Stage, project, id string) (string, error) {
	if err := ValidateName(project); err != nil {
		return "", err
	}
	if err := ValidateName(id); err != nil {
		return "", err
	}
	return filepath.Join(r.Root, string(stage), project, id+".json"), nil
}

func (r *Repository) read(stage Stage, project, id string) (json.RawMessage, error) {
	path, err := r.file(stage, project, id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s %s/%s", ErrNotFound, stage, project, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s result: %w", stage, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s result %s/%s is not valid JSON", stage, project, id)
	}
	return data, nil
}

// Distribution returns the distribution result of a project version.
func (r *Repository) Distribution(project, version string) (json.RawMessage, error) {
	return r.read(StageDistributing, project, version)
}

// Description returns the extracted API description of a project version.
func (r *Repository) Description(project, version string) (json.RawMessage, error) {
	return r.read(StageExtracting, project, version)
}

// Difference returns the API difference between two versions.
func (r *Repository) Difference(project, old, new string) (json.RawMessage, error) {
	if err := validatePair(old, new); err != nil {
		return nil, err
	}
	return r.read(StageDiffing, project, old+pairSeparator+new)
}

// Report returns the compatibility report between two versions.
func (r *Repository) Report(project, old, new string) (json.RawMessage, error) {
	if err := validatePair(old, new); err != nil {
		return nil, err
	}
	return r.read(StageReporting, project, old+pairSeparator+new)
}

func validatePair(old, new string) error {
	if err := ValidateName(old); err != nil {
		return err
	}
	if err := ValidateName(new); err != nil {
		return err
	}
	if strings.Contains(old, pairSeparator) || strings.Contains(new, pairSeparator) {
		return fmt.Errorf("%w: version contains %q", ErrInvalidName, pairSeparator)
	}
	return nil
}

// Project collects the versions and version pairs available for project.
func (r *Repository) Project(project string) (*Project, error) {
	if err := ValidateName(project); err != nil {
		return nil, err
	}
	p := &Project{Name: project, Versions: []string{}, Pairs: []Pair{}}
	found := false

	versions := map[string]bool{}
	for _, stage := range []Stage{StageDistributing, StageExtracting} {
		ids, ok, err := r.list(stage, project)
		if err != nil {
			return nil, err
		}
		found = found || ok
		for _, id := range ids {
			versions[id] = true
		}
	}
	for v := range versions {
		p.Versions = append(p.Versions, v)
	}
	sort.Strings(p.Versions)

	pairs := map[Pair]bool{}
	for _, stage := range []Stage{StageDiffing, StageReporting} {
		ids, ok, err := r.list(stage, project)
		if err != nil {
			return nil, err
		}
		found = found || ok
		for _, id := range ids {
			old, new, ok := strings.Cut(id, pairSeparator)
			if !ok || old == "" || new == "" {
				continue
			}
			pairs[Pair{Old: old, New: new}] = true
		}
	}
	for pair := range pairs {
		p.Pairs = append(p.Pairs, pair)
	}
	sort.Slice(p.Pairs, func(i, j int) bool {
		if p.Pairs[i].Old != p.Pairs[j].Old {
			return p.Pairs[i].Old < p.Pairs[j].Old
		}
		return p.Pairs[i].New < p.Pairs[j].New
	})

	if !found {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, project)
	}
	return p, nil
}

// Projects lists every project with at least one result.
func (r *Repository) Projects() ([]string, error) {
	names := map[string]bool{}
	for _, stage := range []Stage{StageDistributing, StageExtracting, StageDiffing, StageReporting} {
		entries, err := os.ReadDir(filepath.Join(r.Root, string(stage)))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", stage, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				names[e.Name()] = true
			}
		}
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// list returns the result ids of a project in one stage and whether the
// project directory exists.
func (r *Repository) list(stage Stage, project string) ([]string, bool, error) {
	entries, err := os.ReadDir(filepath.Join(r.Root, string(stage), project))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("list %s/%s: %w", stage, project, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, true, nil
}
