package sink

import "strings"

// attrClass tags where a single attribute key routes its value.
type attrClass int

const (
	// attrIgnored means the key does not carry the marker prefix; the
	// attribute never reaches the store.
	attrIgnored attrClass = iota
	// attrRowKey means the key is exactly the marker prefix; its value is
	// the row key for the whole event.
	attrRowKey
	// attrQualified means the key spells out family:qualifier after the
	// prefix.
	attrQualified
	// attrBare means the key carries the prefix but no usable family split;
	// the remainder can only land under a system family.
	attrBare
)

// attrRoute is the parsed destination of one attribute key.
type attrRoute struct {
	class     attrClass
	family    string // set only for attrQualified
	qualifier string // qualifier for attrQualified, whole remainder for attrBare
}

// routeAttrKey classifies key against the marker prefix. A qualified route
// needs a ':' with non-empty text on both sides of its first occurrence;
// any other remainder is bare, colon included.
func routeAttrKey(key, prefix string) attrRoute {
	if !strings.HasPrefix(key, prefix) {
		return attrRoute{class: attrIgnored}
	}
	if len(key) == len(prefix) {
		return attrRoute{class: attrRowKey}
	}

	rest := key[len(prefix):]
	family, qualifier, found := strings.Cut(rest, ":")
	if found && family != "" && qualifier != "" {
		return attrRoute{class: attrQualified, family: family, qualifier: qualifier}
	}
	return attrRoute{class: attrBare, qualifier: rest}
}
