package server

// AskInput defines the input parameters for the ask tool.
type AskInput struct {
	// Question is the user's question about the indexed site.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the indexed site content"`
}

// AskOutput contains the generated answer and its sources.
type AskOutput struct {
	// Answer is the generated response text.
	Answer string `json:"answer"`
	// Sources lists the reconstructed URLs of the chunks that informed
	// the answer, in retrieval order.
	Sources []string `json:"sources"`
}

// CrawlSiteInput defines the input parameters for the crawl_site tool.
type CrawlSiteInput struct {
	// URL is the seed URL to crawl.
	URL string `json:"url" jsonschema:"required,description=The seed URL whose site should be crawled and indexed"`
	// MaxDepth bounds the link-following depth; 0 uses the server default.
	MaxDepth int `json:"max_depth,omitempty" jsonschema:"minimum=0,maximum=5,description=How many links deep to follow from the seed"`
}

// CrawlSiteOutput contains the crawl and indexing statistics.
type CrawlSiteOutput struct {
	PagesVisited  int `json:"pages_visited"`
	PagesSaved    int `json:"pages_saved"`
	ChunksIndexed int `json:"chunks_indexed"`
	Failed        int `json:"failed"`
}

// IndexStatusInput defines the input parameters for the index_status tool.
// The tool takes no parameters.
type IndexStatusInput struct{}

// IndexStatusOutput reports the size of the index.
type IndexStatusOutput struct {
	// Points is the number of indexed chunks in the collection.
	Points uint64 `json:"points"`
}
