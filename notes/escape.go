package notes

import (
	"fmt"
	"strings"
)

// EscapeForEcho makes s safe to place between single quotes in an
// `echo -e '...'` command. Every byte other than ASCII letters, digits,
// space and ,.?!:_<>- becomes \xHH with lowercase hex digits.
func EscapeForEcho(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if echoSafe(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, `\x%02x`, c)
	}
	return b.String()
}

func echoSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte(",.?!:_<> -", c) >= 0
}

// EchoPipe returns a shell fragment that writes s to stdout.
func EchoPipe(s string) string {
	return "echo -e '" + EscapeForEcho(s) + "'"
}
