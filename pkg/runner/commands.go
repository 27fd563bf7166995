package runner

import "strings"

// Command is a slash command typed by the visitor.
type Command string

const (
	CommandNone    Command = ""
	CommandConsent Command = "consent"
	CommandPrivacy Command = "privacy"
	CommandApp     Command = "app"
	CommandWeb     Command = "web"
	CommandOpen    Command = "open"
	CommandClose   Command = "close"
	CommandHelp    Command = "help"
	CommandQuit    Command = "quit"
	CommandUnknown Command = "unknown"
)

var commands = map[string]Command{
	"consent": CommandConsent,
	"privacy": CommandPrivacy,
	"app":     CommandApp,
	"web":     CommandWeb,
	"open":    CommandOpen,
	"close":   CommandClose,
	"help":    CommandHelp,
	"quit":    CommandQuit,
	"exit":    CommandQuit,
}

// ParseCommand classifies line. Plain text is CommandNone and answers the pending
// question. The bare words "quit" and "exit" also leave.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	if line == "quit" || line == "exit" {
		return CommandQuit
	}
	name, ok := strings.CutPrefix(line, "/")
	if !ok {
		return CommandNone
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return CommandUnknown
	}
	if cmd, ok := commands[strings.ToLower(fields[0])]; ok {
		return cmd
	}
	return CommandUnknown
}

const helpText = `Commands:
  /consent  toggle the privacy consent
  /privacy  show the privacy policy
  /app      pick the app channel
  /web      pick the web channel
  /open     open the chat
  /close    close the chat
  /quit     leave`
