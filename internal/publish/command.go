// Package publish pushes boards to screens over MQTT and Redis, and accepts
// operator commands back.
package publish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Command is an operator instruction for a mosque screen.
type Command string

const (
	CommandDismiss Command = "dismiss"
	CommandReload  Command = "reload"
)

// ParseCommand accepts either a bare word or {"command": "..."}.
func ParseCommand(payload []byte) (Command, error) {
	payload = bytes.TrimSpace(payload)
	word := string(payload)
	if len(payload) > 0 && payload[0] == '{' {
		var msg struct {
			Command string `json:"command"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return "", fmt.Errorf("invalid command payload: %w", err)
		}
		word = msg.Command
	}

	switch c := Command(strings.ToLower(strings.TrimSpace(word))); c {
	case CommandDismiss, CommandReload:
		return c, nil
	default:
		return "", fmt.Errorf("unknown command %q", word)
	}
}
