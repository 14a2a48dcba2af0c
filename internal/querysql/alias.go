package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/dbnav/internal/result"
)

// Alias prefixes.
const (
	aliasNode    = "node:"
	aliasRNode   = "rnode:"
	aliasDisplay = "display:"
)

// encodeAlias flattens a column's provenance into a SQL column alias.
func encodeAlias(col result.Column) string {
	switch col.Kind {
	case result.KindNode:
		return aliasNode + col.NodeID
	case result.KindRNode:
		return aliasRNode + col.RNodeID
	default:
		return fmt.Sprintf("%s%d:%s:%s", aliasDisplay, len(col.NodeID), col.NodeID, col.MVAID)
	}
}

// decodeAlias recovers provenance from an alias. Names are not part of the
// alias; the caller fills them from the compiled statement.
func decodeAlias(alias string) (result.Column, error) {
	switch {
	case strings.HasPrefix(alias, aliasNode):
		return result.Column{Kind: result.KindNode, NodeID: alias[len(aliasNode):]}, nil
	case strings.HasPrefix(alias, aliasRNode):
		return result.Column{Kind: result.KindRNode, RNodeID: alias[len(aliasRNode):]}, nil
	case strings.HasPrefix(alias, aliasDisplay):
		rest := alias[len(aliasDisplay):]
		n, tail, ok := strings.Cut(rest, ":")
		if !ok {
			return result.Column{}, fmt.Errorf("display alias %q: missing length", alias)
		}
		size, err := strconv.Atoi(n)
		if err != nil || size < 0 || size+1 > len(tail) || tail[size] != ':' {
			return result.Column{}, fmt.Errorf("display alias %q: bad node length", alias)
		}
		return result.Column{Kind: result.KindDisplay, NodeID: tail[:size], MVAID: tail[size+1:]}, nil
	default:
		return result.Column{}, fmt.Errorf("unrecognized column alias %q", alias)
	}
}
