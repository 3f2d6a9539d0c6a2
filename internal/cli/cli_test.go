package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/voxide.toml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/voxide.toml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantArgs []string
		wantHelp bool
		wantPath string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:     "run without file",
			args:     []string{"run"},
			wantCmd:  CommandRun,
			wantArgs: []string{},
		},
		{
			name:     "run with file",
			args:     []string{"run", "main.py"},
			wantCmd:  CommandRun,
			wantArgs: []string{"main.py"},
		},
		{
			name:    "run with two files",
			args:    []string{"run", "a.py", "b.py"},
			wantErr: "unexpected arguments",
		},
		{
			name:     "mic on",
			args:     []string{"mic", "on"},
			wantCmd:  CommandMic,
			wantArgs: []string{"on"},
		},
		{
			name:    "mic without argument",
			args:    []string{"mic"},
			wantErr: "requires an argument",
		},
		{
			name:    "mic with bad argument",
			args:    []string{"mic", "sideways"},
			wantErr: "mic takes",
		},
		{
			name:     "say with free text",
			args:     []string{"say", "save", "the", "document"},
			wantCmd:  CommandSay,
			wantArgs: []string{"save", "the", "document"},
		},
		{
			name:    "say without text",
			args:    []string{"say"},
			wantErr: "requires an argument",
		},
		{
			name:     "interpret with free text",
			args:     []string{"interpret", "go", "to", "line", "start"},
			wantCmd:  CommandInterpret,
			wantArgs: []string{"go", "to", "line", "start"},
		},
		{
			name:     "history bare",
			args:     []string{"history"},
			wantCmd:  CommandHistory,
			wantArgs: []string{},
		},
		{
			name:     "history export with path",
			args:     []string{"history", "export", "/tmp/journal.jsonl.zst"},
			wantCmd:  CommandHistory,
			wantArgs: []string{"export", "/tmp/journal.jsonl.zst"},
		},
		{
			name:    "history export without path",
			args:    []string{"history", "export"},
			wantErr: "requires a destination path",
		},
		{
			name:    "history unknown subcommand",
			args:    []string{"history", "prune"},
			wantErr: "unknown history subcommand",
		},
		{
			name:     "valid cancel with config",
			args:     []string{"--config", "/tmp/cfg", "cancel"},
			wantCmd:  CommandCancel,
			wantArgs: []string{},
			wantPath: "/tmp/cfg",
		},
		{
			name:     "verbose flag",
			args:     []string{"--verbose", "status"},
			wantCmd:  CommandStatus,
			wantArgs: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
			if tc.wantArgs != nil {
				require.Equal(t, tc.wantArgs, parsed.Args)
			}
		})
	}
}

func TestParseVerboseSetsFlag(t *testing.T) {
	parsed, err := Parse([]string{"--verbose", "run"})
	require.NoError(t, err)
	require.True(t, parsed.Verbose)
	require.Equal(t, CommandRun, parsed.Command)
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("voxide")
	require.Contains(t, text, "run [FILE]")
	require.Contains(t, text, "activate")
	require.Contains(t, text, "mic on|off")
	require.Contains(t, text, "say TEXT")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
}
