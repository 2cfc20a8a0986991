// Command datastar serves a demo Datastar event stream and follows remote ones.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
