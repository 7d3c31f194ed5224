// Command evkv-server runs the single-threaded, non-blocking, event-driven
// key-value server described in spec.md. It binds the fixed address
// 0.0.0.0:1234 and runs until killed; there is no shutdown protocol in-scope.
package main

import (
	"os"

	"code.hybscloud.com/evkv"
)

func main() {
	srv := evkv.New()
	if err := srv.Run(); err != nil {
		os.Exit(1)
	}
}
