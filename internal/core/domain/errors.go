package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline stage errors.

	// ErrExtractionFailed indicates no text could be obtained from a
	// document. Terminal for the pipeline run; retries, if any, belong
	// to the extraction collaborator.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrHashComputation indicates the content hash could not be computed.
	ErrHashComputation = errors.New("hash computation failed")

	// ErrVectorizerNotFitted indicates the TF-IDF vectorizer has no fitted
	// vocabulary. Documents cannot complete the pipeline without a vector.
	ErrVectorizerNotFitted = errors.New("vectorizer not fitted")

	// ErrEmptyCorpus indicates a vocabulary fit was attempted on an empty
	// or all-empty-after-preprocessing corpus. Fitting a zero-term model
	// is never done silently.
	ErrEmptyCorpus = errors.New("corpus is empty after preprocessing")

	// ErrEmptyText indicates text was empty after preprocessing and could
	// not be vectorized. Distinct from a zero vector, which would mean
	// "legitimately dissimilar to everything".
	ErrEmptyText = errors.New("text empty after preprocessing")

	// ErrIndexUnavailable indicates the LSH snapshot is missing or corrupt.
	// The pipeline degrades to "no candidates" rather than failing.
	ErrIndexUnavailable = errors.New("LSH index unavailable")

	// ErrClusteringFailed indicates the clustering algorithm failed,
	// e.g. on zero-feature input.
	ErrClusteringFailed = errors.New("clustering failed")

	// ErrRefitInProgress indicates a vocabulary refit holds the vectorizer.
	// Callers should treat this as transient and retry.
	ErrRefitInProgress = errors.New("vocabulary refit in progress")

	// ErrTaskInProgress indicates an exclusive maintenance task is already
	// running.
	ErrTaskInProgress = errors.New("task already in progress")
)
