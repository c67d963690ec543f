// Command cachesim builds a cache hierarchy, drives it with random traffic,
// and reports what the caches did.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
