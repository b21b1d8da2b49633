package node

import "fmt"

// Port derives the listen port for a 1-based instance index by appending the
// index to the configured prefix: prefix 809, instance 2, port 8092.
func Port(prefix string, index int) string {
	return fmt.Sprintf("%s%d", prefix, index)
}
