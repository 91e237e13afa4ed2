// Package browse implements an interactive shell for exploring a
// converted configuration document.
package browse

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/fung04/ucsconv/pkg/config"
	"github.com/fung04/ucsconv/pkg/store"
)

// Shell is an interactive browser over one document.
type Shell struct {
	doc *store.Document
}

// NewShell creates a shell for the given document.
func NewShell(doc *store.Document) *Shell {
	return &Shell{doc: doc}
}

// Run reads commands until EOF or quit.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.doc.Name + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    newCompleter(s.doc.Tree),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		out, err := s.Eval(line)
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprint(rl.Stdout(), out)
	}
}

// Eval executes one command line and returns its output.
func (s *Shell) Eval(line string) (string, error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "groups":
		return s.groups(), nil
	case "ls":
		return s.ls(args)
	case "show":
		return s.show(args)
	case "refs":
		return s.refs(args)
	case "search":
		return s.search(args)
	case "help":
		return helpText, nil
	default:
		return "", fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

const helpText = `Commands:
  groups                 list object groups
  ls [group]             list object names in a group
  show <group> [name]    print an object (or whole group) as JSON
  refs <path>            find values referencing the given object path
  search <substring>     find objects whose name contains the substring
  quit                   leave the shell
`

func (s *Shell) groups() string {
	var b strings.Builder
	for _, g := range s.doc.Tree.Groups() {
		fmt.Fprintf(&b, "%-40s %d\n", g.Type, len(g.Objects))
	}
	return b.String()
}

func (s *Shell) ls(args []string) (string, error) {
	if len(args) == 0 {
		return s.groups(), nil
	}
	g, err := s.findGroup(strings.Join(args, " "))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, o := range g.Objects {
		name := o.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintln(&b, name)
	}
	return b.String(), nil
}

func (s *Shell) show(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: show <group> [name]")
	}

	// The trailing argument may be an object name within the group.
	g, err := s.findGroup(strings.Join(args, " "))
	if err == nil {
		sub := &config.Tree{Objects: g.Objects}
		return marshalIndent(sub)
	}
	if len(args) < 2 {
		return "", err
	}

	name := args[len(args)-1]
	g, err = s.findGroup(strings.Join(args[:len(args)-1], " "))
	if err != nil {
		return "", err
	}
	for _, o := range g.Objects {
		if o.Name == name {
			sub := &config.Tree{Objects: []*config.Object{o}}
			return marshalIndent(sub)
		}
	}
	return "", fmt.Errorf("no object %q in group %q", name, g.Type)
}

func (s *Shell) refs(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: refs </Partition/name>")
	}
	target := args[0]

	var b strings.Builder
	for _, o := range s.doc.Tree.Objects {
		walkRefs(o.Props, nil, func(path []string, sc config.Scalar) {
			if sc.Text != target {
				return
			}
			owner := o.Type()
			if o.Name != "" {
				owner += " " + o.Name
			}
			fmt.Fprintf(&b, "%s: %s\n", owner, strings.Join(path, "."))
		})
	}
	if b.Len() == 0 {
		return fmt.Sprintf("no references to %s\n", target), nil
	}
	return b.String(), nil
}

func (s *Shell) search(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: search <substring>")
	}
	var matches []string
	for _, o := range s.doc.Tree.Objects {
		if strings.Contains(o.Name, args[0]) {
			matches = append(matches, o.Type()+" "+o.Name)
		}
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return "no matches\n", nil
	}
	return strings.Join(matches, "\n") + "\n", nil
}

func (s *Shell) findGroup(typ string) (config.Group, error) {
	for _, g := range s.doc.Tree.Groups() {
		if g.Type == typ {
			return g, nil
		}
	}
	return config.Group{}, fmt.Errorf("no group %q", typ)
}

// walkRefs visits every reference-tagged scalar below b, passing the
// key path from the object root.
func walkRefs(b *config.Block, path []string, fn func([]string, config.Scalar)) {
	for _, e := range b.Entries {
		walkRefValue(e.Value, append(path, e.Key), fn)
	}
}

func walkRefValue(v config.Value, path []string, fn func([]string, config.Scalar)) {
	switch v := v.(type) {
	case config.Scalar:
		if v.Kind == config.ScalarReference {
			fn(path, v)
		}
	case config.List:
		for _, item := range v {
			walkRefValue(item, path, fn)
		}
	case *config.Block:
		walkRefs(v, path, fn)
	}
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
