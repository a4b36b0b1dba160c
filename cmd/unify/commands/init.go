package commands

import (
	"fmt"
	"os"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

const starterConfig = `# unify site configuration
source: .
output:
  directory: dist
  clean: false
build:
  fail_fast: false
  concurrency: 4
  cache: true
serve:
  port: 3000
  live_reload: true
logging:
  level: info
  format: text
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if !i.Force {
		if _, err := os.Stat(root.Config); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", root.Config)
		}
	}
	if err := os.WriteFile(root.Config, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", root.Config)
	return nil
}
