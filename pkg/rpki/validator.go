package rpki

import (
	"net/netip"

	arc "github.com/hashicorp/golang-lru/arc/v2"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
)

// validationCacheSize bounds the ARC cache of validation outcomes. The
// cache is a pure performance optimization: every entry is reconstructible
// from the trie, so eviction can never change simulation results.
const validationCacheSize = 16384

type trieNode struct {
	roas     []ROA
	children [2]*trieNode
}

type cacheKey struct {
	prefix netip.Prefix
	origin asgraph.ASN
}

// Validator evaluates route-origin validity against a set of ROAs. ROAs are
// stored in a binary trie keyed on prefix bits so a lookup only inspects
// ROAs covering the announced prefix. Concurrent lookups are safe once all
// ROAs have been added.
type Validator struct {
	root  trieNode
	cache *arc.ARCCache[cacheKey, Validity]
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	cache, err := arc.NewARC[cacheKey, Validity](validationCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &Validator{cache: cache}
}

// Reset drops all ROAs so the validator can serve the next trial.
func (v *Validator) Reset() {
	v.root = trieNode{}
	v.cache.Purge()
}

// AddROA registers a ROA. Not safe to call concurrently with Outcome.
func (v *Validator) AddROA(roa ROA) {
	node := &v.root
	addr := roa.Prefix.Addr().AsSlice()
	for i := 0; i < roa.Prefix.Bits(); i++ {
		bit := (addr[i/8] >> (7 - i%8)) & 1
		if node.children[bit] == nil {
			node.children[bit] = &trieNode{}
		}
		node = node.children[bit]
	}
	node.roas = append(node.roas, roa)
	v.cache.Purge()
}

// Outcome returns the origin-validation state for the announced
// (prefix, origin) pair: the best validity over all covering ROAs, or
// Unknown when no ROA covers the prefix.
func (v *Validator) Outcome(prefix netip.Prefix, origin asgraph.ASN) Validity {
	key := cacheKey{prefix: prefix, origin: origin}
	if cached, ok := v.cache.Get(key); ok {
		return cached
	}

	best := Unknown
	found := false

	node := &v.root
	addr := prefix.Addr().AsSlice()
	for i := 0; ; i++ {
		for _, roa := range node.roas {
			if !roa.Covers(prefix) {
				continue
			}
			validity := roa.Validity(prefix, origin)
			if !found || validity < best {
				best = validity
			}
			found = true
		}
		if i >= prefix.Bits() {
			break
		}
		bit := (addr[i/8] >> (7 - i%8)) & 1
		if node.children[bit] == nil {
			break
		}
		node = node.children[bit]
	}

	if !found {
		best = Unknown
	}
	v.cache.Add(key, best)
	return best
}
