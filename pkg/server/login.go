package server

import "strings"

// ParseConnect parses a login-screen command into (command, user, password).
// Handles: "connect name password", "create name password", and quoted
// names for characters with spaces: `connect "Swamp Witch" secret`.
func ParseConnect(msg string) (command, user, password string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", "", ""
	}

	parts := strings.SplitN(msg, " ", 2)
	command = strings.ToLower(parts[0])
	if len(parts) < 2 {
		return command, "", ""
	}

	rest := strings.TrimSpace(parts[1])
	if rest == "" {
		return command, "", ""
	}

	if rest[0] == '"' {
		end := strings.Index(rest[1:], "\"")
		if end >= 0 {
			user = rest[1 : end+1]
			password = strings.TrimSpace(rest[end+2:])
			return
		}
	}

	parts = strings.SplitN(rest, " ", 2)
	user = parts[0]
	if len(parts) > 1 {
		password = strings.TrimSpace(parts[1])
	}
	return
}

// WelcomeText is the default welcome screen shown to new connections
// when no connect.txt file is configured.
const WelcomeText = `
  ____                           __  __ _   _ ____
 / ___|_      ____ _ _ __ ___  _|  \/  | | | |  _ \
 \___ \ \ /\ / / _` + "`" + ` | '_ ` + "`" + ` _ \| |\/| | | | | | | |
  ___) \ V  V / (_| | | | | | | |  | | |_| | |_| |
 |____/ \_/\_/ \__,_|_| |_| |_|_|  |_|\___/|____/

"connect <name> <password>" to connect to your existing character.
"create <name> <password> [class]" to create a new character.
"WHO" to see who is connected.
"QUIT" to disconnect.
`
