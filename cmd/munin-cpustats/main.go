// munin-cpustats reports CPU utilization percentages to munin.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/gomunin/internal/plugins/cpu"
	"github.com/hupe1980/gomunin/pkg/munin"
)

func main() {
	p, err := cpu.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(munin.Execute(p))
}
