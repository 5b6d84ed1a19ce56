package pkguid

import (
	"math/rand/v2"

	"github.com/bwmarrin/snowflake"
)

// epoch2026 is 2026-01-01T00:00:00Z in milliseconds.
const epoch2026 = 1767225600000

// maxNodeID is the largest node number the default 10 node bits allow.
const maxNodeID = 1<<10 - 1

// Snowflake hands out short time-ordered ids for request correlation.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake picks a random node number so that replicas started together
// rarely collide.
func NewSnowflake() (*Snowflake, error) {
	return newSnowflake(randomNodeID())
}

func newSnowflake(nodeID int64) (*Snowflake, error) {
	snowflake.Epoch = epoch2026

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Snowflake{node: node}, nil
}

func randomNodeID() int64 {
	return rand.Int64N(maxNodeID + 1)
}

func (s *Snowflake) Generate() string {
	return s.node.Generate().String()
}
