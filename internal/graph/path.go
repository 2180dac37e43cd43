package graph

import "strings"

// Reference helpers shared by the resolvers and the ingest decoders.
// Filings refer to concepts as "schema.xsd#us-gaap_Revenues", "us-gaap:Revenues"
// or plain "Revenues"; these reduce a reference to the part that names the concept.

// LastPath returns the part of ref after the last delimiter. The delimiters are
// tried in order "_", "#", "/", ":" and the first one present wins.
// E.g. "us-gaap-2017.xsd#us-gaap_Revenues" → "Revenues", "iso4217:USD" → "USD".
func LastPath(ref string) string {
	for _, delim := range []string{"_", "#", "/", ":"} {
		if i := strings.LastIndex(ref, delim); i >= 0 {
			return ref[i+1:]
		}
	}
	return ref
}

// LastPathDelim returns the part of ref after the last occurrence of delim,
// or ref itself when delim does not occur.
func LastPathDelim(ref, delim string) string {
	if i := strings.LastIndex(ref, delim); i >= 0 {
		return ref[i+len(delim):]
	}
	return ref
}

// LocalName strips a namespace prefix ("us-gaap:Revenues" → "Revenues").
func LocalName(qname string) string {
	return LastPathDelim(qname, ":")
}
