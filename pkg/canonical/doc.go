// Package canonical builds the deterministic textual form of tool arguments and the
// cache keys derived from it. Two argument maps that differ only in key order or in
// top-level null entries produce the same canonical form.
package canonical
