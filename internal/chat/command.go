package chat

import "strings"

// ServicePrefix marks a line as a service lookup. The match is case-sensitive.
const ServicePrefix = "/service "

// Command is the parsed form of one input line: CommandExit,
// CommandServiceQuery or CommandPlainChat.
type Command interface {
	isCommand()
}

// CommandExit ends the conversation.
type CommandExit struct{}

// CommandServiceQuery asks the retrieval pipeline about Query.
type CommandServiceQuery struct {
	Query string
}

// CommandPlainChat continues the streamed conversation with Text.
type CommandPlainChat struct {
	Text string
}

func (CommandExit) isCommand()         {}
func (CommandServiceQuery) isCommand() {}
func (CommandPlainChat) isCommand()    {}

// Classify maps a raw input line to a Command. Rules apply in order: exit or
// quit in any case, then the /service prefix, then plain chat.
func Classify(line string) Command {
	word := strings.ToLower(strings.TrimSpace(line))
	if word == "exit" || word == "quit" {
		return CommandExit{}
	}
	if query, ok := strings.CutPrefix(line, ServicePrefix); ok {
		return CommandServiceQuery{Query: strings.TrimSpace(query)}
	}
	return CommandPlainChat{Text: line}
}
