package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
)

const shellHelp = `statements end with ;
  encode [edge] <name> <json props>;
  decode [edge] <name> <hex row>;
  versions <hex row>;
  schemas;
  help;`

type ShellCommand struct {
	VI bool `help:"Enable VI mode."`
}

func (c *ShellCommand) Run(env *Env) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.WithStack(err)
	}

	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:            filepath.Join(home, env.Config.HistoryFile),
		DisableAutoSaveHistory: true,
		VimMode:                c.VI,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	defer rl.Close()
	for {
		// Gather multi-line statement terminated by a ;
		rl.SetPrompt("rowtool> ")
		cmd := []string{}
		for {
			line, err := rl.Readline()
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			if err != nil {
				return errors.WithStack(err)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			cmd = append(cmd, line)
			if strings.HasSuffix(line, ";") {
				break
			}
			rl.SetPrompt("         ")
		}
		statement := strings.Join(cmd, " ")
		_ = rl.SaveHistory(statement)

		if err := env.Exec(statement); err != nil {
			fmt.Fprintf(env.Out, "error: %v\n", err)
		}
	}
}

// Exec runs one shell statement. Errors are the statement's own and leave the shell running.
func (e *Env) Exec(statement string) error {
	statement = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(statement), ";"))
	verb, rest := splitWord(statement)
	switch strings.ToLower(verb) {
	case "":
		return nil
	case "help":
		fmt.Fprintln(e.Out, shellHelp)
		return nil
	case "schemas":
		return e.Schemas()
	case "versions":
		return e.Versions(rest)
	case "encode", "decode":
		kind := meta.KindTag
		name, arg := splitWord(rest)
		if strings.EqualFold(name, "edge") {
			kind = meta.KindEdge
			name, arg = splitWord(arg)
		}
		if strings.EqualFold(verb, "decode") {
			if name == "" || arg == "" {
				return errors.New("usage: decode [edge] <name> <hex row>")
			}
			return e.Decode(kind, name, arg)
		}
		if name == "" || arg == "" {
			return errors.New("usage: encode [edge] <name> <json props>")
		}
		row, err := e.Encode(kind, name, arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.Out, row)
		return nil
	}
	return errors.Errorf("unknown statement %q, try help;", verb)
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
