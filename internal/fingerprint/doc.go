// Package fingerprint computes content fingerprints for duplicate
// detection: normalised SHA-256 content hashes for exact matching and
// MinHash signatures for approximate Jaccard similarity.
//
// All functions are pure and deterministic: identical normalised text
// always yields identical fingerprints regardless of source document.
// The same normalisation is shared by document hashing, page hashing
// and TF-IDF preprocessing.
package fingerprint
