package browse

import (
	"sort"
	"strings"

	"github.com/fung04/ucsconv/pkg/config"
)

// completer offers command names, group types and object names as
// readline tab completions.
type completer struct {
	commands []string
	groups   []string
	names    map[string][]string
}

func newCompleter(tree *config.Tree) *completer {
	c := &completer{
		commands: []string{"groups", "ls", "show", "refs", "search", "help", "quit", "exit"},
		names:    make(map[string][]string),
	}
	for _, g := range tree.Groups() {
		c.groups = append(c.groups, g.Type)
		for _, o := range g.Objects {
			if o.Name != "" {
				c.names[g.Type] = append(c.names[g.Type], o.Name)
			}
		}
	}
	return c
}

// Do implements readline.AutoCompleter.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	candidates := c.candidates(prefix)

	// readline wants the remainder of each candidate past the last word.
	last := lastWord(prefix)
	var out [][]rune
	for _, cand := range candidates {
		out = append(out, []rune(cand[len(last):]+" "))
	}
	return out, len(last)
}

func (c *completer) candidates(prefix string) []string {
	words := strings.Fields(prefix)
	partialLast := len(prefix) > 0 && !strings.HasSuffix(prefix, " ")

	if len(words) == 0 || (len(words) == 1 && partialLast) {
		return filterPrefix(c.commands, lastWord(prefix))
	}

	switch words[0] {
	case "ls", "show":
		return c.completeGroupish(words[1:], lastWord(prefix), words[0] == "show")
	default:
		return nil
	}
}

// completeGroupish completes multi-word group types and, for show,
// object names within a completed group.
func (c *completer) completeGroupish(args []string, last string, withNames bool) []string {
	done := args
	if last != "" {
		done = args[:len(args)-1]
	}
	typed := strings.Join(done, " ")

	var out []string
	for _, g := range c.groups {
		rest, ok := trimGroupPrefix(g, typed)
		if !ok {
			continue
		}
		if rest != "" {
			// Next word of the group type.
			word := strings.Fields(rest)[0]
			if strings.HasPrefix(word, last) {
				out = append(out, word)
			}
		} else if withNames {
			out = append(out, filterPrefix(c.names[g], last)...)
		}
	}
	sort.Strings(out)
	return dedup(out)
}

// trimGroupPrefix reports whether typed is a word-boundary prefix of
// group and returns the remaining words.
func trimGroupPrefix(group, typed string) (string, bool) {
	if typed == "" {
		return group, true
	}
	if group == typed {
		return "", true
	}
	if strings.HasPrefix(group, typed+" ") {
		return group[len(typed)+1:], true
	}
	return "", false
}

func lastWord(s string) string {
	if strings.HasSuffix(s, " ") || s == "" {
		return ""
	}
	fields := strings.Fields(s)
	return fields[len(fields)-1]
}

func filterPrefix(items []string, prefix string) []string {
	var out []string
	for _, it := range items {
		if strings.HasPrefix(it, prefix) {
			out = append(out, it)
		}
	}
	return out
}

func dedup(items []string) []string {
	var out []string
	for i, it := range items {
		if i == 0 || it != items[i-1] {
			out = append(out, it)
		}
	}
	return out
}
