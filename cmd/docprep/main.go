package main

import "github.com/scanforge/docprep/cmd/docprep/cmd"

func main() {
	cmd.Execute()
}
