// Command viewctl derives and exports product views from the command line.
package main

import "github.com/JonMunkholm/productview/internal/cli"

func main() {
	cli.Execute()
}
