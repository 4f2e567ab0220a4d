package core

import "strings"

// unescapeToken reverses RFC 6901 segment escaping: '~1' -> '/' then
// '~0' -> '~'. Order matters and is the mirror image of the escaping
// done in ToPointer.
func unescapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

// pointerGet dereferences an RFC 6901 pointer against root, returning
// nil if any segment is missing or traverses a non-container.
func pointerGet(root interface{}, pointer string) interface{} {
	if pointer == "" {
		return root
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil
	}
	cur := root
	for _, tok := range strings.Split(pointer[1:], "/") {
		cur = step(cur, unescapeToken(tok))
		if cur == nil {
			return nil
		}
	}
	return cur
}
