package models

// DocumentRef identifies one document as reported by the CMS corpus.
// ContentHash is derived from the file bytes, so identical uploads under
// different names collapse onto one hash.
type DocumentRef struct {
	ContentHash string `json:"content_hash"`
	Filename    string `json:"filename"`
}

// Section is a title-bounded span of extracted text. Sections only live
// between segmentation and splitting; they are never persisted.
type Section struct {
	Title   string
	Content string
}

// Chunk is the atomic unit of retrieval: one bounded span of a document's
// text together with its embedding, stored in pgvector.
type Chunk struct {
	ContentHash  string    `json:"content_hash"`
	DocumentName string    `json:"document_name"`
	Text         string    `json:"text"`
	Embedding    []float32 `json:"-"`
}

// SearchHit is one similarity-search result. Similarity is cosine
// similarity expressed as 1 - cosine distance.
type SearchHit struct {
	ContentHash string  `json:"content_hash"`
	Text        string  `json:"text"`
	Similarity  float64 `json:"similarity"`
}
