package graph

import (
	"sort"

	"github.com/Paintersrp/citegraph/internal/paper"
)

type ConnectionDirection string

const (
	Outgoing ConnectionDirection = "outgoing"
	Incoming ConnectionDirection = "incoming"
)

type Connection struct {
	Relationship paper.Relationship  `json:"relationship"`
	Other        paper.Paper         `json:"other_paper"`
	Direction    ConnectionDirection `json:"direction"`
}

// ResolveConnections lists every relationship incident to target, sorted by
// strength and then by the other paper's year, both descending. Connections
// whose other endpoint is not a known paper are dropped.
func ResolveConnections(
	target string,
	papers []paper.Paper,
	rels []paper.Relationship,
) []Connection {
	return resolveConnections(target, paper.Index(papers), rels)
}

func resolveConnections(
	target string,
	byID map[string]paper.Paper,
	rels []paper.Relationship,
) []Connection {
	connections := make([]Connection, 0)
	for _, rel := range rels {
		if rel.From == target {
			if other, ok := byID[rel.To]; ok {
				connections = append(connections, Connection{
					Relationship: rel,
					Other:        other,
					Direction:    Outgoing,
				})
			}
		}
		if rel.To == target {
			if other, ok := byID[rel.From]; ok {
				connections = append(connections, Connection{
					Relationship: rel,
					Other:        other,
					Direction:    Incoming,
				})
			}
		}
	}

	sort.SliceStable(connections, func(i, j int) bool {
		a, b := connections[i], connections[j]
		if a.Relationship.Strength != b.Relationship.Strength {
			return a.Relationship.Strength > b.Relationship.Strength
		}
		return a.Other.Year > b.Other.Year
	})
	return connections
}

// Split separates connections by direction, keeping their order.
func Split(connections []Connection) (outgoing, incoming []Connection) {
	for _, c := range connections {
		if c.Direction == Outgoing {
			outgoing = append(outgoing, c)
		} else {
			incoming = append(incoming, c)
		}
	}
	return outgoing, incoming
}
