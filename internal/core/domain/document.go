package domain

import "time"

// DocumentStatus is the lifecycle state of a document in the pipeline.
type DocumentStatus string

// Document lifecycle statuses.
const (
	// StatusProcessing means the pipeline has not yet reached a verdict.
	StatusProcessing DocumentStatus = "processing"

	// StatusUnique means no duplicate was found by any detection method.
	StatusUnique DocumentStatus = "unique"

	// StatusExactDuplicate means another document has the same content hash.
	StatusExactDuplicate DocumentStatus = "exact_duplicate"

	// StatusContentDuplicate means TF-IDF cosine similarity against another
	// document met or exceeded the configured threshold.
	StatusContentDuplicate DocumentStatus = "content_duplicate"

	// StatusError means a pipeline stage failed terminally.
	// Document.ErrorStage names the failed stage.
	StatusError DocumentStatus = "error"

	// StatusOutlier means clustering assigned the document to no cluster.
	StatusOutlier DocumentStatus = "outlier"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusUnique, StatusExactDuplicate,
		StatusContentDuplicate, StatusError, StatusOutlier:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the pipeline will not advance this document.
func (s DocumentStatus) IsTerminal() bool {
	return s != StatusProcessing
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Pipeline stage names recorded on Document.ErrorStage and in stage logs.
const (
	StageTextExtraction     = "text_extraction"
	StageHashComputation    = "hash_computation"
	StageLSHCheck           = "lsh_check"
	StageTFIDFVectorization = "tfidf_vectorization"
	StageSimilaritySearch   = "similarity_search"
	StagePipelineCritical   = "pipeline_critical"
)

// OutlierLabel is the cluster label for documents outside every cluster.
const OutlierLabel = "outlier"

// Document represents an ingested document with its fingerprints and
// duplicate verdict. Documents are created when ingestion starts and are
// never physically deleted by the core; archival is an external concern.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original upload filename.
	Filename string

	// Status is the current lifecycle status.
	Status DocumentStatus

	// Content is the full extracted text. It is retained so the whole
	// corpus can be re-vectorized when the vocabulary is refitted.
	Content string

	// ContentHash is the SHA-256 of the normalised text.
	// Empty until the hash stage has run.
	ContentHash string

	// MinHash is the MinHash signature of the document text.
	// Nil until the LSH stage has run.
	MinHash []uint64

	// ClusterLabel is the cluster assignment ("cluster_3", "outlier").
	// Empty until a clustering run has included this document.
	ClusterLabel string

	// MatchedDocID references the matched document when Status is
	// exact_duplicate or content_duplicate.
	MatchedDocID string

	// Similarity is the cosine similarity to MatchedDocID.
	// Only meaningful for content_duplicate.
	Similarity float64

	// ErrorStage names the pipeline stage that failed when Status is error.
	ErrorStage string

	// PageCount is the number of extracted pages.
	PageCount int

	// CreatedAt is when ingestion started.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// DocumentContent is a lightweight ID-and-text pair used when refitting
// the vocabulary over the retained corpus.
type DocumentContent struct {
	ID      string
	Content string
}

// PageStatus is the review state of a page.
type PageStatus string

// Page review statuses. Reviewers may assign further free-form statuses;
// only pending is set by the pipeline itself.
const (
	// PageStatusPending means no reviewer decision has been made.
	PageStatusPending PageStatus = "pending"

	// PageStatusUnique means a reviewer confirmed the page as unique.
	PageStatusUnique PageStatus = "unique"

	// PageStatusArchive means a reviewer marked the page for archival.
	PageStatusArchive PageStatus = "to_archive"
)

// Page represents a single page of a document. A Document exclusively owns
// its Pages; deleting a document cascades to them.
type Page struct {
	// ID is the unique identifier for the page.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// PageNumber is the 1-based position within the document.
	// (DocumentID, PageNumber) is unique.
	PageNumber int

	// Hash is the SHA-256 of the normalised page text.
	Hash string

	// TextSnippet is a bounded-length excerpt of the page text.
	// Full page text is not retained after fingerprinting.
	TextSnippet string

	// MedicalConfidence is an externally-supplied score in [0,1].
	MedicalConfidence float64

	// Status is the current review status.
	Status PageStatus

	// ReviewNote records reviewer notes, including automatic-propagation
	// annotations.
	ReviewNote string

	// Reviewer identifies who made the last review decision.
	Reviewer string

	// CreatedAt is when the page was fingerprinted.
	CreatedAt time.Time

	// ReviewedAt is when the last review decision was made.
	ReviewedAt time.Time
}
