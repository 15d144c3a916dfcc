package database

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"
)

// searchBatchSize bounds the number of operations per bleve batch
const searchBatchSize = 1000

// projectDocument is what gets indexed for each project
type projectDocument struct {
	Name string `json:"name"`
}

// SetupSearchDB sets up new bleve or opens existing
func SetupSearchDB(indexPath string) (bleve.Index, error) {
	Logger.Info("Creating bleve index mapping")
	mapping := bleve.NewIndexMapping()
	var index bleve.Index
	Logger.Info("Checking if bleve index exists", "path", indexPath)
	_, err := os.Stat(filepath.Clean(indexPath))
	if os.IsNotExist(err) {
		Logger.Info("Creating new bleve index")
		if err := os.MkdirAll(filepath.Dir(indexPath), os.ModePerm); err != nil {
			return nil, err
		}
		index, err = bleve.New(filepath.Clean(indexPath), mapping)
		if err != nil {
			Logger.Error("Failed to create bleve index", "error", err)
			return index, err
		}
		Logger.Info("New bleve index created successfully")
	} else {
		Logger.Info("Opening existing bleve index")
		index, err = bleve.Open(filepath.Clean(indexPath))
		if err != nil {
			Logger.Error("Failed to open bleve index", "error", err)
			return index, err
		}
		Logger.Info("Existing bleve index opened successfully")
	}
	return index, nil
}

// SetupMemorySearchDB returns an in-memory index, used by tests and dev mode
func SetupMemorySearchDB() (bleve.Index, error) {
	return bleve.NewMemOnly(bleve.NewIndexMapping())
}

// SyncSearchIndex indexes the projects in current and removes those only in previous
func SyncSearchIndex(index bleve.Index, previous, current []string) error {
	keep := make(map[string]bool, len(current))
	for _, name := range current {
		keep[name] = true
	}

	batch := index.NewBatch()
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if err := index.Batch(batch); err != nil {
			return err
		}
		batch.Reset()
		return nil
	}

	for _, name := range previous {
		if keep[name] {
			continue
		}
		batch.Delete(name)
		if batch.Size() >= searchBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	for _, name := range current {
		if err := batch.Index(name, projectDocument{Name: name}); err != nil {
			return err
		}
		if batch.Size() >= searchBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	Logger.Info("Search index synchronised", "projects", len(current))
	return nil
}

// SearchProjects returns project names matching term by prefix or by word
func SearchProjects(index bleve.Index, term string, limit int) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	prefix := bleve.NewPrefixQuery(strings.ToLower(term))
	prefix.SetField("name")
	match := bleve.NewMatchQuery(term)
	match.SetField("name")
	exact := bleve.NewTermQuery(strings.ToLower(term))
	exact.SetField("name")
	exact.SetBoost(2)

	request := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery([]query.Query{exact, prefix, match}...), limit, 0, false)
	results, err := index.Search(request)
	if err != nil {
		Logger.Error("Search failed", "term", term, "error", err)
		return nil, err
	}

	names := make([]string, 0, len(results.Hits))
	for _, hit := range results.Hits {
		names = append(names, hit.ID)
	}
	return names, nil
}
