package mud

import "strings"

// SplitArgs tokenizes a line of player input. Quoted runs (single or
// double) form one token with the quotes stripped; everything else
// splits on whitespace. An unterminated quote runs to end of line.
func SplitArgs(line string) []string {
	var args []string
	var cur strings.Builder
	var quote rune
	inToken := false

	flush := func() {
		if inToken {
			args = append(args, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			flush()
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return args
}

// quotedMessage reports whether the whole line is one quoted token,
// the shortcut for the say command.
func quotedMessage(line string, args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	line = strings.TrimSpace(line)
	if len(line) < 2 {
		return "", false
	}
	first, last := line[0], line[len(line)-1]
	if (first == '\'' || first == '"') && last == first {
		return line[1 : len(line)-1], true
	}
	return "", false
}
