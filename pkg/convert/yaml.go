package convert

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fung04/ucsconv/pkg/config"
)

// encodeYAML renders a normalized tree as YAML with the same grouping
// rules as the JSON output. yaml.Node is used directly because the
// document's key order is significant and plain maps would lose it.
func encodeYAML(tree *config.Tree) ([]byte, error) {
	root := mappingNode()
	for _, g := range tree.Groups() {
		root.Content = append(root.Content, scalarNode(g.Type), groupNode(g))
	}
	return yaml.Marshal(root)
}

func groupNode(g config.Group) *yaml.Node {
	if len(g.Objects) == 1 && g.Objects[0].Name == "" {
		return objectBodyNode(g.Objects[0])
	}

	if g.Keyed() {
		n := mappingNode()
		for _, o := range g.Objects {
			n.Content = append(n.Content, scalarNode(o.Name), objectBodyNode(o))
		}
		return n
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, o := range g.Objects {
		rec := mappingNode()
		rec.Content = append(rec.Content,
			scalarNode("name"), scalarNode(o.Name),
			scalarNode("properties"), objectBodyNode(o))
		seq.Content = append(seq.Content, rec)
	}
	return seq
}

func objectBodyNode(o *config.Object) *yaml.Node {
	if o.Raw != "" {
		n := scalarNode(o.Raw)
		n.Style = yaml.LiteralStyle
		return n
	}
	return blockNode(o.Props)
}

func blockNode(b *config.Block) *yaml.Node {
	n := mappingNode()
	for _, e := range b.Entries {
		n.Content = append(n.Content, scalarNode(e.Key), valueNode(e.Value))
	}
	return n
}

func valueNode(v config.Value) *yaml.Node {
	switch v := v.(type) {
	case config.Scalar:
		switch v.Kind {
		case config.ScalarBool:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.Text}
		case config.ScalarNumber:
			tag := "!!int"
			if strings.Contains(v.Text, ".") {
				tag = "!!float"
			}
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Text}
		default:
			return scalarNode(v.Text)
		}
	case config.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			n.Content = append(n.Content, valueNode(item))
		}
		return n
	case *config.Block:
		return blockNode(v)
	default:
		return scalarNode("")
	}
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
