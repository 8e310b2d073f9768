// munin-netstats reports per-interface network traffic to munin.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/gomunin/internal/plugins/net"
	"github.com/hupe1980/gomunin/pkg/munin"
)

func main() {
	p, err := net.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(munin.Execute(p))
}
