// Modul: store_types.go
// Beschreibung: Datentypen der Run-History.

package store

import (
	"errors"
	"time"

	"github.com/attnviz/attnviz/attention"
)

var ErrRunNotFound = errors.New("run not found")

// Run ist ein verarbeiteter Input mit seinen Attention-Gewichten
type Run struct {
	ID             string
	Input          string
	Tokens         []string
	Weights        attention.Tensor
	DModel         int
	NHead          int
	HeadDim        int
	DimFeedforward int
	CreatedAt      time.Time
}

// Summary ist die Kurzform eines Runs fuer Listen
type Summary struct {
	ID        string
	Input     string
	Tokens    int
	Heads     int
	CreatedAt time.Time
}
