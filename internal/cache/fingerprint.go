package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobmerge/internal/model"
)

// Kind namespaces fingerprints so different operations never collide.
type Kind string

const (
	KindMixed    Kind = "mixed"
	KindExternal Kind = "external"
	KindTrending Kind = "trending"
	KindDiscover Kind = "discover"
)

// TTL policy. Not request-controlled.
const (
	MixedTTL    = 30 * time.Minute
	ExternalTTL = 60 * time.Minute
	DiscoverTTL = 15 * time.Minute
)

// TTLFor returns how long results of kind stay fresh.
func TTLFor(kind Kind) time.Duration {
	switch kind {
	case KindMixed:
		return MixedTTL
	case KindExternal, KindTrending:
		return ExternalTTL
	case KindDiscover:
		return DiscoverTTL
	default:
		return MixedTTL
	}
}

// Fingerprint derives the cache key for a parameter set. Values are trimmed
// and lowercased, "all" is treated as unset, and keys are encoded in sorted
// order, so requests that differ only in casing or parameter order share a
// key.
func Fingerprint(kind Kind, params url.Values) string {
	canon := make(url.Values, len(params))
	for k, vs := range params {
		for _, v := range vs {
			canon.Add(strings.ToLower(k), canonical(v))
		}
	}
	sum := sha256.Sum256([]byte(canon.Encode()))
	return string(kind) + ":" + hex.EncodeToString(sum[:])
}

// SearchFingerprint covers every SearchRequest field that affects the result.
func SearchFingerprint(req model.SearchRequest) string {
	return Fingerprint(KindMixed, url.Values{
		"keyword":       {req.Keyword},
		"location":      {req.Location},
		"jobType":       {req.JobType},
		"scope":         {string(req.Scope)},
		"page":          {strconv.Itoa(req.Page)},
		"pageSize":      {strconv.Itoa(req.PageSize)},
		"includeRemote": {strconv.FormatBool(req.IncludeRemote)},
	})
}

func canonical(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "all" {
		return ""
	}
	return v
}
