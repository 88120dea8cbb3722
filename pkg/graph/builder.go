package graph

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Builder collects search keys and compiles them into a compressed trie.
// Keys are uppercased; when two records claim the same key the first wins.
type Builder struct {
	keys       *patricia.Trie
	count      int
	collisions int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{keys: patricia.NewTrie()}
}

// Insert indexes rec under key. It reports false when the key was empty or
// already taken.
func (b *Builder) Insert(key string, rec catalog.Record) bool {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" || rec.IsZero() {
		return false
	}
	if !b.keys.Insert(patricia.Prefix(key), rec) {
		b.collisions++
		log.Debugf("Key %q already indexed, keeping first record", key)
		return false
	}
	b.count++
	return true
}

// Add indexes rec under every key from catalog.SearchKeys and returns how
// many were new.
func (b *Builder) Add(rec catalog.Record) int {
	added := 0
	for _, key := range catalog.SearchKeys(rec) {
		if b.Insert(key, rec) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct keys.
func (b *Builder) Len() int { return b.count }

type builderEntry struct {
	key string
	rec catalog.Record
}

// Build compiles the collected keys. Children are ordered by label and node
// keys are arena indexes, the root being "0".
func (b *Builder) Build() *Store {
	entries := make([]builderEntry, 0, b.count)
	_ = b.keys.Visit(func(p patricia.Prefix, item patricia.Item) error {
		rec, ok := item.(catalog.Record)
		if !ok {
			log.Errorf("Unknown item type: %T for key %s", item, p)
			return nil
		}
		entries = append(entries, builderEntry{key: string(p), rec: rec})
		return nil
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	nodes := []Node{{key: RootKey}}
	attach(&nodes, 0, entries, 0)

	log.Debugf("Built graph: keys=[%d] nodes=[%d] collisions=[%d]", len(entries), len(nodes), b.collisions)
	return newStore(nodes, 0)
}

// attach adds one child of parent per distinct leading rune in entries
// (sorted, all longer than depth), labelling each with the longest prefix the
// group shares.
func attach(nodes *[]Node, parent NodeID, entries []builderEntry, depth int) {
	for i := 0; i < len(entries); {
		first, width := utf8.DecodeRuneInString(entries[i].key[depth:])
		j := i + 1
		for j < len(entries) {
			r, _ := utf8.DecodeRuneInString(entries[j].key[depth:])
			if r != first {
				break
			}
			j++
		}
		group := entries[i:j]

		end := commonPrefixEnd(group[0].key, group[len(group)-1].key, depth)
		if end < depth+width {
			end = depth + width
		}

		id := NodeID(len(*nodes))
		*nodes = append(*nodes, Node{key: strconv.Itoa(int(id)), Label: group[0].key[depth:end]})
		(*nodes)[parent].children = append((*nodes)[parent].children, id)

		rest := group
		if len(group[0].key) == end {
			rec := group[0].rec
			(*nodes)[id].Record = &rec
			rest = group[1:]
		}
		attach(nodes, id, rest, end)
		i = j
	}
}

// commonPrefixEnd returns the end offset of the prefix a and b share beyond
// depth, backed off to a rune boundary.
func commonPrefixEnd(a, b string, depth int) int {
	end := depth
	for end < len(a) && end < len(b) && a[end] == b[end] {
		end++
	}
	for end > depth && end < len(a) && !utf8.RuneStart(a[end]) {
		end--
	}
	return end
}
