// Package cli parses voxide command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun       Command = "run"
	CommandActivate  Command = "activate"
	CommandCancel    Command = "cancel"
	CommandStatus    Command = "status"
	CommandMic       Command = "mic"
	CommandSay       Command = "say"
	CommandInterpret Command = "interpret"
	CommandDevices   Command = "devices"
	CommandHistory   Command = "history"
	CommandDoctor    Command = "doctor"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

// arity bounds the trailing arguments each command accepts. Max -1 means
// unbounded, for commands that take free text.
type arity struct {
	min int
	max int
}

var commandArity = map[Command]arity{
	CommandRun:       {min: 0, max: 1},
	CommandActivate:  {min: 0, max: 0},
	CommandCancel:    {min: 0, max: 0},
	CommandStatus:    {min: 0, max: 0},
	CommandMic:       {min: 1, max: 1},
	CommandSay:       {min: 1, max: -1},
	CommandInterpret: {min: 1, max: -1},
	CommandDevices:   {min: 0, max: 0},
	CommandHistory:   {min: 0, max: 2},
	CommandDoctor:    {min: 0, max: 0},
	CommandVersion:   {min: 0, max: 0},
	CommandHelp:      {min: 0, max: 0},
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	Verbose    bool
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	i := 0
	for ; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--verbose":
			parsed.Verbose = true
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := commandArity[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			parsed.Args = args[i+1:]
			if err := validateArgs(cmd, parsed.Args); err != nil {
				return Parsed{}, err
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

func validateArgs(cmd Command, args []string) error {
	bounds := commandArity[cmd]
	if len(args) < bounds.min {
		return fmt.Errorf("command %q requires an argument", cmd)
	}
	if bounds.max >= 0 && len(args) > bounds.max {
		return fmt.Errorf("unexpected arguments after command %q", cmd)
	}

	switch cmd {
	case CommandMic:
		if args[0] != "on" && args[0] != "off" {
			return fmt.Errorf("mic takes %q or %q, got %q", "on", "off", args[0])
		}
	case CommandHistory:
		if len(args) > 0 && args[0] != "export" {
			return fmt.Errorf("unknown history subcommand: %s", args[0])
		}
		if len(args) == 1 {
			return errors.New("history export requires a destination path")
		}
	}

	return nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--verbose] <command>

Commands:
  run [FILE]            Own the voice session daemon, optionally opening FILE
  activate              Start listening for one utterance
  cancel                Discard the in-flight utterance
  status                Print current session state
  mic on|off            Enable or disable the microphone session
  say TEXT              Inject TEXT as a spoken utterance
  interpret TEXT        Print the action TEXT resolves to, without a session
  devices               List available input devices
  history               List recent utterances
  history export PATH   Write the full journal as compressed JSONL to PATH
  doctor                Run configuration and environment checks
  version               Print version information
  help                  Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/voxide/config.toml)
  --verbose       Include debug records in the log
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
