package framework

import (
	"fmt"
	"strings"
)

// Chromosome is a placement matrix with one row per service and one column
// per node. Chromosome[s][n] is true when service s has a replica on node n.
type Chromosome [][]bool

// NewChromosome returns an empty services x nodes placement matrix.
func NewChromosome(services, nodes int) Chromosome {
	c := make(Chromosome, services)
	for s := range c {
		c[s] = make([]bool, nodes)
	}
	return c
}

// Services returns the number of rows.
func (c Chromosome) Services() int {
	return len(c)
}

// Nodes returns the number of columns.
func (c Chromosome) Nodes() int {
	if len(c) == 0 {
		return 0
	}
	return len(c[0])
}

// Clone returns a deep copy.
func (c Chromosome) Clone() Chromosome {
	out := make(Chromosome, len(c))
	for s, row := range c {
		out[s] = append([]bool(nil), row...)
	}
	return out
}

// Equal reports whether both matrices have the same shape and bits.
func (c Chromosome) Equal(o Chromosome) bool {
	if len(c) != len(o) {
		return false
	}
	for s := range c {
		if len(c[s]) != len(o[s]) {
			return false
		}
		for n := range c[s] {
			if c[s][n] != o[s][n] {
				return false
			}
		}
	}
	return true
}

// Replicas returns how many nodes host service s.
func (c Chromosome) Replicas(s int) int {
	count := 0
	for _, deployed := range c[s] {
		if deployed {
			count++
		}
	}
	return count
}

// NodeLoad sums, per node, the demands of the services placed there.
func (c Chromosome) NodeLoad(demands []float64) []float64 {
	load := make([]float64, c.Nodes())
	for s, row := range c {
		for n, deployed := range row {
			if deployed {
				load[n] += demands[s]
			}
		}
	}
	return load
}

// String renders the matrix as rows of 0/1, one service per line.
func (c Chromosome) String() string {
	var b strings.Builder
	for s, row := range c {
		if s > 0 {
			b.WriteByte('\n')
		}
		for _, deployed := range row {
			if deployed {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	return b.String()
}

// ParseChromosome is the inverse of String. It is mostly useful in tests.
func ParseChromosome(rows ...string) (Chromosome, error) {
	c := make(Chromosome, len(rows))
	for s, row := range rows {
		if s > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", s, len(row), len(rows[0]))
		}
		c[s] = make([]bool, len(row))
		for n, ch := range row {
			switch ch {
			case '1':
				c[s][n] = true
			case '0':
			default:
				return nil, fmt.Errorf("row %d: unexpected character %q", s, ch)
			}
		}
	}
	return c, nil
}
