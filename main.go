package main

import "media-catalog/cmd"

func main() {
	cmd.Execute()
}
