package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// Domain prefixes keep keys of different record kinds from colliding.
const (
	DomainQuery = "docquery/query/v1"
	DomainPage  = "docquery/page/v1"
)

// hashWithDomain returns hex(SHA256(domain + 0x00 + data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryKey identifies a rendered query together with its parameter values
// and the paging options it runs with. Two specs that render the same text
// and bind equal values get the same key, however their values were typed
// (a uuid.UUID and its string form are equal).
func QueryKey(spec querybuilder.QuerySpec, opts querybuilder.QueryOptions) (string, error) {
	data, err := Marshal(map[string]any{
		"query":        spec.Query,
		"parameters":   spec.Parameters,
		"continuation": opts.ContinuationToken,
		"maxItemCount": opts.MaxItemCount,
	})
	if err != nil {
		return "", fmt.Errorf("QueryKey: %w", err)
	}
	return hashWithDomain(DomainQuery, data), nil
}

// PageHash fingerprints one page of results, for detecting drift between a
// recording and a fresh execution.
func PageHash(page querybuilder.FeedResponse) (string, error) {
	data, err := Marshal(page)
	if err != nil {
		return "", fmt.Errorf("PageHash: %w", err)
	}
	return hashWithDomain(DomainPage, data), nil
}

// MustQueryKey is like QueryKey but panics on error.
// Use only in tests or when the parameters are known to be encodable.
func MustQueryKey(spec querybuilder.QuerySpec, opts querybuilder.QueryOptions) string {
	key, err := QueryKey(spec, opts)
	if err != nil {
		panic(err)
	}
	return key
}
