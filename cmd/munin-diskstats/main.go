// munin-diskstats reports filesystem usage and per-device disk I/O to munin.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/gomunin/internal/plugins/disk"
	"github.com/hupe1980/gomunin/pkg/munin"
)

func main() {
	p, err := disk.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(munin.Execute(p))
}
