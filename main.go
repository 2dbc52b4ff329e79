package main

import "collection-reconciler/cmd"

func main() {
	cmd.Execute()
}
