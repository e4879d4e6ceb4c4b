package catalog

import (
	"sort"

	"github.com/vjranagit/curvecatalog/pkg/types"
)

// Index holds the in-memory view of the catalog: manifest records by ID,
// an inverted index over topic tags and sources, and the bipartite link
// graph between pipelines and dataframes. It is rebuilt from the store on
// open and kept current on every put.
type Index struct {
	dataframes map[string]*types.Dataframe
	pipelines  map[string]*types.Pipeline
	// Inverted index: tag (or source) -> dataframe IDs
	tagIndex    map[string][]string
	sourceIndex map[string][]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		dataframes:  make(map[string]*types.Dataframe),
		pipelines:   make(map[string]*types.Pipeline),
		tagIndex:    make(map[string][]string),
		sourceIndex: make(map[string][]string),
	}
}

// AddDataframe indexes a dataframe manifest, replacing any previous record
// with the same ID.
func (idx *Index) AddDataframe(df *types.Dataframe) {
	if old, exists := idx.dataframes[df.ID]; exists {
		idx.removeFromInverted(old)
	}

	idx.dataframes[df.ID] = df

	for _, tag := range df.TopicTags {
		idx.tagIndex[tag] = appendUnique(idx.tagIndex[tag], df.ID)
	}
	for _, src := range df.Sources {
		idx.sourceIndex[src] = appendUnique(idx.sourceIndex[src], df.ID)
	}
}

// AddPipeline indexes a pipeline manifest.
func (idx *Index) AddPipeline(pl *types.Pipeline) {
	idx.pipelines[pl.ID] = pl
}

// GetDataframe retrieves an indexed dataframe by ID.
func (idx *Index) GetDataframe(id string) (*types.Dataframe, bool) {
	df, ok := idx.dataframes[id]
	return df, ok
}

// GetPipeline retrieves an indexed pipeline by ID.
func (idx *Index) GetPipeline(id string) (*types.Pipeline, bool) {
	pl, ok := idx.pipelines[id]
	return pl, ok
}

// Dataframes returns all indexed dataframes sorted by ID.
func (idx *Index) Dataframes() []*types.Dataframe {
	out := make([]*types.Dataframe, 0, len(idx.dataframes))
	for _, df := range idx.dataframes {
		out = append(out, df)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Pipelines returns all indexed pipelines sorted by ID.
func (idx *Index) Pipelines() []*types.Pipeline {
	out := make([]*types.Pipeline, 0, len(idx.pipelines))
	for _, pl := range idx.pipelines {
		out = append(out, pl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByTags finds dataframe IDs carrying every given topic tag.
func (idx *Index) FindByTags(tags []string) []string {
	if len(tags) == 0 {
		result := make([]string, 0, len(idx.dataframes))
		for id := range idx.dataframes {
			result = append(result, id)
		}
		sort.Strings(result)
		return result
	}

	var result []string
	first := true

	for _, tag := range tags {
		ids, ok := idx.tagIndex[tag]
		if !ok {
			return nil
		}

		if first {
			result = append([]string(nil), ids...)
			first = false
		} else {
			result = intersect(result, ids)
		}

		if len(result) == 0 {
			return nil
		}
	}

	sort.Strings(result)
	return result
}

// FindBySource finds dataframe IDs pulled from the given data source.
func (idx *Index) FindBySource(source string) []string {
	ids := append([]string(nil), idx.sourceIndex[source]...)
	sort.Strings(ids)
	return ids
}

// DataframeCount returns the number of indexed dataframes.
func (idx *Index) DataframeCount() int {
	return len(idx.dataframes)
}

// PipelineCount returns the number of indexed pipelines.
func (idx *Index) PipelineCount() int {
	return len(idx.pipelines)
}

// Clear resets the index.
func (idx *Index) Clear() {
	idx.dataframes = make(map[string]*types.Dataframe)
	idx.pipelines = make(map[string]*types.Pipeline)
	idx.tagIndex = make(map[string][]string)
	idx.sourceIndex = make(map[string][]string)
}

// removeFromInverted drops a dataframe's entries from the inverted indexes.
func (idx *Index) removeFromInverted(df *types.Dataframe) {
	for _, tag := range df.TopicTags {
		idx.tagIndex[tag] = removeID(idx.tagIndex[tag], df.ID)
	}
	for _, src := range df.Sources {
		idx.sourceIndex[src] = removeID(idx.sourceIndex[src], df.ID)
	}
}

// appendUnique inserts id into a sorted ID list, keeping it sorted. The
// inverted-index lists stay sorted so lookups never have to mutate them.
func appendUnique(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// intersect finds common elements in two sorted ID slices. It must not
// mutate its inputs: b aliases a shared inverted-index list and lookups run
// under a read lock.
func intersect(a, b []string) []string {
	result := make([]string, 0)
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			i++
		} else if a[i] > b[j] {
			j++
		} else {
			result = append(result, a[i])
			i++
			j++
		}
	}

	return result
}
