// Command evkv-client is a one-shot protocol driver for evkv. It connects,
// sends a single command, prints the response (if any), and exits. It is
// an external collaborator per spec.md §1, not part of the server, and
// is grounded in original_source/tcp_client.cpp's connect/send/recv
// shape rather than the server's event loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"code.hybscloud.com/evkv"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:1234", "server address")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: evkv-client [-addr host:port] <verb> [args...]")
		os.Exit(2)
	}

	c, err := evkv.Dial(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "evkv-client:", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := c.SendCommand(args...); err != nil {
		fmt.Fprintln(os.Stderr, "evkv-client:", err)
		os.Exit(1)
	}

	// close carries no response; every other verb always gets exactly one.
	if args[0] == "close" {
		return
	}

	status, payload, err := c.ReadResponse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "evkv-client:", err)
		os.Exit(1)
	}

	switch status {
	case evkv.StatusOK:
		fmt.Printf("OK %s\n", payload)
	case evkv.StatusNo:
		fmt.Println("NO")
	default:
		fmt.Println("ERR")
		os.Exit(1)
	}
}
