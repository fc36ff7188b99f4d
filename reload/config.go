package reload

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/signadot/ncnf/ir"
)

const DefaultDebounce = 100 * time.Millisecond

var configValidate = validator.New()

type Config struct {
	// Path of the configuration file.
	Path string `validate:"required,filepath"`
	// Debounce delays a reload until the file has been quiet this long.
	// Zero means DefaultDebounce.
	Debounce   time.Duration `validate:"gte=0,lte=1m"`
	Relaxed    bool
	NoRules    bool
	NoEmbedded bool
	// Validator is an external validator command, see package asyncval.
	Validator string
}

func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: reload config: %w", ir.ErrInvalid, err)
	}
	return nil
}

func (c *Config) debounce() time.Duration {
	if c.Debounce == 0 {
		return DefaultDebounce
	}
	return c.Debounce
}
