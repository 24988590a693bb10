// config.go - Dimensionen und Hyperparameter des Encoder-Layers
package transformer

import (
	"errors"
	"fmt"

	"github.com/attnviz/attnviz/envconfig"
)

var ErrInvalidConfig = errors.New("invalid model config")

// Config beschreibt einen einzelnen Encoder-Layer
type Config struct {
	DModel         int
	NHead          int
	DimFeedforward int
	Dropout        float64
	Seed           uint64
}

// DefaultConfig matches the demo model: 64 wide, 4 heads, 128 wide
// feed-forward, 10% dropout.
func DefaultConfig() Config {
	return Config{DModel: 64, NHead: 4, DimFeedforward: 128, Dropout: 0.1}
}

// ConfigFromEnvironment reads ATTNVIZ_D_MODEL, ATTNVIZ_NHEAD,
// ATTNVIZ_DIM_FEEDFORWARD, ATTNVIZ_DROPOUT and ATTNVIZ_SEED.
func ConfigFromEnvironment() Config {
	return Config{
		DModel:         int(envconfig.DModel()),
		NHead:          int(envconfig.NumHeads()),
		DimFeedforward: int(envconfig.DimFeedforward()),
		Dropout:        envconfig.Dropout(),
		Seed:           envconfig.Seed(),
	}
}

// HeadDim is the width of a single head.
func (c Config) HeadDim() int {
	if c.NHead == 0 {
		return 0
	}
	return c.DModel / c.NHead
}

// Validate prueft, ob sich d_model gleichmaessig auf die Heads verteilen laesst
func (c Config) Validate() error {
	switch {
	case c.DModel <= 0:
		return fmt.Errorf("%w: d_model must be positive, got %d", ErrInvalidConfig, c.DModel)
	case c.NHead <= 0:
		return fmt.Errorf("%w: nhead must be positive, got %d", ErrInvalidConfig, c.NHead)
	case c.DimFeedforward <= 0:
		return fmt.Errorf("%w: dim_feedforward must be positive, got %d", ErrInvalidConfig, c.DimFeedforward)
	case c.DModel%c.NHead != 0:
		return fmt.Errorf("%w: d_model %d is not divisible by nhead %d", ErrInvalidConfig, c.DModel, c.NHead)
	case c.Dropout < 0 || c.Dropout >= 1:
		return fmt.Errorf("%w: dropout must be in [0, 1), got %v", ErrInvalidConfig, c.Dropout)
	}
	return nil
}
