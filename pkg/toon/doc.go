// Package toon implements the TOON wire format, a token-efficient text
// notation for structured data aimed at LLM prompts.
//
// The format trades JSON's punctuation for indentation and declared
// lengths. Objects are key: value lines, arrays carry their length up
// front, and uniform arrays of flat objects collapse into a tabular
// form that names its columns once:
//
//	users: [2,]{id,name}:
//	  1,Alice
//	  2,Bob
//	active: true
//
// Decode builds a Value tree from wire text, Encode renders one back
// deterministically, and the two round-trip: any decoded tree encodes
// to a form that decodes to a semantically equal tree. FromJSON and
// ToJSON bridge to JSON, inferring tabular shape where it pays off.
// Values inside a document are addressed with paths ("$.users[0]") and
// manipulated through Document or the package-level operations.
package toon
