package similarity

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/archivemed/dedup-cli/internal/fingerprint"
)

// LSHIndex is a banded MinHash index over a corpus of signatures. It is
// an immutable snapshot: built once from all stored signatures and
// swapped in atomically, never mutated in place while queries run.
// Single-document inserts go to the signature store instead; a periodic
// rebuild task re-derives the index, so a freshly-inserted document does
// not appear in query results until the next rebuild.
type LSHIndex struct {
	threshold  float64
	numPerm    int
	bands      int
	rows       int
	buckets    []map[uint64][]string
	signatures map[string]fingerprint.Signature
}

// BuildLSH constructs an index snapshot from all known signatures.
// Degenerate (empty) signatures are skipped: a document with no
// meaningful signature must not bucket-collide with everything.
// O(N) in corpus size.
func BuildLSH(threshold float64, numPerm int, entries map[string]fingerprint.Signature) *LSHIndex {
	bands, rows := optimalBands(threshold, numPerm)

	idx := &LSHIndex{
		threshold:  threshold,
		numPerm:    numPerm,
		bands:      bands,
		rows:       rows,
		buckets:    make([]map[uint64][]string, bands),
		signatures: make(map[string]fingerprint.Signature, len(entries)),
	}
	for b := range idx.buckets {
		idx.buckets[b] = map[uint64][]string{}
	}

	// Deterministic bucket contents regardless of map iteration order.
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		sig := entries[id]
		if len(sig) != numPerm || sig.Empty() {
			continue
		}
		idx.signatures[id] = sig
		for b := 0; b < bands; b++ {
			key := bandHash(sig[b*rows : (b+1)*rows])
			idx.buckets[b][key] = append(idx.buckets[b][key], id)
		}
	}

	return idx
}

// Len returns the number of indexed signatures.
func (idx *LSHIndex) Len() int {
	return len(idx.signatures)
}

// Query returns the ids of indexed documents whose estimated Jaccard
// similarity with the query signature meets the index threshold.
// Candidates are gathered by band-bucket collision, then refined by
// signature agreement; results are sorted by id. Query results are
// candidates only, never a final duplicate verdict.
func (idx *LSHIndex) Query(sig fingerprint.Signature) []string {
	if len(sig) != idx.numPerm || sig.Empty() {
		return nil
	}

	candidates := map[string]struct{}{}
	for b := 0; b < idx.bands; b++ {
		key := bandHash(sig[b*idx.rows : (b+1)*idx.rows])
		for _, id := range idx.buckets[b][key] {
			candidates[id] = struct{}{}
		}
	}

	var matches []string
	for id := range candidates {
		if sig.Jaccard(idx.signatures[id]) >= idx.threshold {
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)
	return matches
}

// bandHash hashes one band of signature values into a bucket key.
func bandHash(rows []uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range rows {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * (7 - i)))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// optimalBands picks the band/row split minimising the combined false
// positive and false negative probability mass at the threshold, the
// same parameter search the datasketch library performs. The collision
// probability of a pair with Jaccard similarity s is 1 - (1 - s^r)^b.
func optimalBands(threshold float64, numPerm int) (bands, rows int) {
	const steps = 1000

	bestErr := -1.0
	for b := 1; b <= numPerm; b++ {
		r := numPerm / b
		if r == 0 {
			break
		}

		var fp, fn float64
		for i := 0; i < steps; i++ {
			s := (float64(i) + 0.5) / steps
			p := 1 - pow(1-pow(s, r), b)
			if s < threshold {
				fp += p / steps
			} else {
				fn += (1 - p) / steps
			}
		}

		if err := fp + fn; bestErr < 0 || err < bestErr {
			bestErr = err
			bands, rows = b, r
		}
	}
	return bands, rows
}

// pow is an integer-exponent power; faster and exact enough for the
// parameter search.
func pow(x float64, n int) float64 {
	result := 1.0
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			result *= x
		}
		x *= x
	}
	return result
}

// lshSnapshot is the serialised form of an LSH index. Signature values
// exceed float64 precision, so they are stored in their binary encoding
// rather than as JSON numbers.
type lshSnapshot struct {
	Threshold  float64             `json:"threshold"`
	NumPerm    int                 `json:"num_perm"`
	Bands      int                 `json:"bands"`
	Rows       int                 `json:"rows"`
	Buckets    []map[string][]string `json:"buckets"`
	Signatures map[string]string   `json:"signatures"`
}

// Encode serialises the index for snapshot storage.
func (idx *LSHIndex) Encode() ([]byte, error) {
	snap := lshSnapshot{
		Threshold:  idx.threshold,
		NumPerm:    idx.numPerm,
		Bands:      idx.bands,
		Rows:       idx.rows,
		Buckets:    make([]map[string][]string, len(idx.buckets)),
		Signatures: make(map[string]string, len(idx.signatures)),
	}
	for b, bucket := range idx.buckets {
		snap.Buckets[b] = make(map[string][]string, len(bucket))
		for key, ids := range bucket {
			snap.Buckets[b][strconv.FormatUint(key, 16)] = ids
		}
	}
	for id, sig := range idx.signatures {
		snap.Signatures[id] = base64.StdEncoding.EncodeToString(sig.Encode())
	}
	return json.Marshal(snap)
}

// DecodeLSHIndex deserialises an index snapshot. The snapshot is a
// cache: on decode failure callers discard it and rebuild from the
// persisted signatures.
func DecodeLSHIndex(data []byte) (*LSHIndex, error) {
	var snap lshSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding LSH snapshot: %w", err)
	}
	if snap.Bands != len(snap.Buckets) || snap.Bands*snap.Rows > snap.NumPerm {
		return nil, fmt.Errorf("LSH snapshot inconsistent: %d bands, %d buckets", snap.Bands, len(snap.Buckets))
	}

	idx := &LSHIndex{
		threshold:  snap.Threshold,
		numPerm:    snap.NumPerm,
		bands:      snap.Bands,
		rows:       snap.Rows,
		buckets:    make([]map[uint64][]string, len(snap.Buckets)),
		signatures: make(map[string]fingerprint.Signature, len(snap.Signatures)),
	}
	for b, bucket := range snap.Buckets {
		idx.buckets[b] = make(map[uint64][]string, len(bucket))
		for key, ids := range bucket {
			k, err := strconv.ParseUint(key, 16, 64)
			if err != nil {
				return nil, fmt.Errorf("decoding bucket key %q: %w", key, err)
			}
			idx.buckets[b][k] = ids
		}
	}
	for id, enc := range snap.Signatures {
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decoding signature for %s: %w", id, err)
		}
		sig, err := fingerprint.DecodeSignature(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding signature for %s: %w", id, err)
		}
		idx.signatures[id] = sig
	}
	return idx, nil
}
