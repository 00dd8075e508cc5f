package cli

import (
	"context"
	"fmt"

	"github.com/bobbuildtool/bob/internal/bobinfo"
)

// VersionCmd implements `bob version`.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(bobinfo.VersionString())
	return nil
}
